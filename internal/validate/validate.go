// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validate holds the shape checks for user input. Every check
// returns an empty string when the value is acceptable, or a message that
// can be shown next to the offending form field.
package validate

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits for user-supplied fields.
const (
	MaxEmailLen    = 100
	MinPasswordLen = 8
	MinNameLen     = 2
	MaxNameLen     = 100
	MinTitleLen    = 3
	MaxTitleLen    = 200
	MinContentLen  = 10
	MaxContentLen  = 100_000
	MaxExcerptLen  = 500
	MinCommentLen  = 2
	MaxCommentLen  = 1000
	MaxURLLen      = 200
	MinSlugLen     = 3
	MaxSlugLen     = 100
	MaxBioLen      = 500
	MaxCaptionLen  = 200
	MaxTermNameLen = 50
	MaxDescLen     = 500
)

var (
	emailPattern = regexp.MustCompile(`(?i)^[\w+\-.]+@[a-z\d\-]+(\.[a-z\d\-]+)*\.[a-z]+$`)
	specialChars = `!@#$%^&*(),.?":{}|<>`
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
)

func length(s string) int { return utf8.RuneCountInString(s) }

// Email checks address syntax and length.
func Email(email string) string {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return "Email is required."
	case length(email) > MaxEmailLen:
		return "Email is too long (max 100 characters)."
	case !emailPattern.MatchString(email):
		return "Enter a valid email address."
	}
	return ""
}

// Password requires at least 8 characters, a digit and a special character.
func Password(pw string) string {
	if length(pw) < MinPasswordLen {
		return "Password must be at least 8 characters."
	}
	if !strings.ContainsFunc(pw, unicode.IsDigit) {
		return "Password must contain at least one number."
	}
	if !strings.ContainsAny(pw, specialChars) {
		return "Password must contain at least one special character."
	}
	return ""
}

// Name checks a person's display name.
func Name(name string) string {
	name = strings.TrimSpace(name)
	if length(name) < MinNameLen || length(name) > MaxNameLen {
		return "Name must be between 2 and 100 characters."
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return "Name may only contain letters, spaces, hyphens and apostrophes."
		}
	}
	return ""
}

// Title checks an article title.
func Title(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if length(title) < MinTitleLen || length(title) > MaxTitleLen {
		return "Title must be between 3 and 200 characters."
	}
	return ""
}

// Content checks an article body.
func Content(body string) string {
	body = strings.TrimSpace(body)
	if length(body) < MinContentLen {
		return "Content must be at least 10 characters."
	}
	if length(body) > MaxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	return ""
}

// Excerpt checks an optional article summary.
func Excerpt(excerpt string) string {
	if length(excerpt) > MaxExcerptLen {
		return "Excerpt is too long (max 500 characters)."
	}
	return ""
}

// Comment checks comment text.
func Comment(text string) string {
	text = strings.TrimSpace(text)
	if length(text) < MinCommentLen || length(text) > MaxCommentLen {
		return "Comment must be between 2 and 1000 characters."
	}
	return ""
}

// URL accepts an empty value or an absolute http(s) URL.
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if length(raw) > MaxURLLen {
		return "URL is too long (max 200 characters)."
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "Enter a full URL starting with http:// or https://."
	}
	return ""
}

// Slug checks a hand-entered slug.
func Slug(s string) string {
	if length(s) < MinSlugLen || length(s) > MaxSlugLen {
		return "Slug must be between 3 and 100 characters."
	}
	if !slugPattern.MatchString(s) {
		return "Slug may only contain lowercase letters, digits and hyphens."
	}
	return ""
}

// TermName checks a category or tag name.
func TermName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if length(name) > MaxTermNameLen {
		return "Name is too long (max 50 characters)."
	}
	return ""
}

// MaxLen returns a message when s exceeds limit characters.
func MaxLen(label, s string, limit int) string {
	if length(s) > limit {
		return label + " is too long."
	}
	return ""
}
