// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package derive computes the values an article carries alongside its body:
// plain text, word count, read time and excerpt. Everything here is a pure
// function of the content string.
package derive

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed behind ReadTime.
const WordsPerMinute = 200

// ExcerptLength is the default excerpt size in characters.
const ExcerptLength = 200

var (
	htmlTag     = regexp.MustCompile(`<[^>]+>`)
	mdImage     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdBlockMark = regexp.MustCompile(`(?m)^[ \t]{0,3}(#{1,6}|>+|[-*+]|\d+[.)])[ \t]+`)
	mdFence     = regexp.MustCompile("(?m)^[ \t]*(```|~~~).*$")
	mdInline    = regexp.MustCompile("[*_~`]+")
	whitespace  = regexp.MustCompile(`\s+`)
)

// StripMarkup removes HTML tags and Markdown syntax, leaving the words a
// reader would see. Runs of whitespace collapse to a single space.
func StripMarkup(content string) string {
	s := htmlTag.ReplaceAllString(content, " ")
	s = mdImage.ReplaceAllString(s, "$1")
	s = mdLink.ReplaceAllString(s, "$1")
	s = mdFence.ReplaceAllString(s, "")
	s = mdBlockMark.ReplaceAllString(s, "")
	s = mdInline.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// WordCount counts whitespace-separated words after stripping markup.
func WordCount(content string) int {
	return len(strings.Fields(StripMarkup(content)))
}

// ReadTime returns the estimated reading time in whole minutes, never less
// than one.
func ReadTime(content string) int {
	return max(1, WordCount(content)/WordsPerMinute)
}

// Truncate shortens text to at most limit characters, cutting at the last
// word boundary and appending "...". Text that fits is returned unchanged.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// Excerpt returns explicit when it is non-blank, otherwise a plain-text
// summary of content of at most ExcerptLength characters.
func Excerpt(explicit, content string) string {
	if e := strings.TrimSpace(explicit); e != "" {
		return e
	}
	return Truncate(StripMarkup(content), ExcerptLength)
}
