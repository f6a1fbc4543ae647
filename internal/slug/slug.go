// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TimestampLayout is the suffix format appended when a slug is taken.
const TimestampLayout = "20060102150405"

var (
	// nonAlphanumeric matches runs of anything that isn't a-z or 0-9.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// apostrophes are dropped so "How's" becomes "hows", not "how-s".
	apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "")
)

// Generate creates a URL-friendly slug from the given string.
// Accents are folded ("Crème brûlée" → "creme-brulee") and letters with no
// ASCII form are dropped. The result may be empty.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		// Letters without an ASCII form are dropped rather than split on.
		if r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsNumber(r)) {
			continue
		}
		b.WriteRune(r)
	}
	result := strings.ToLower(apostrophes.Replace(b.String()))
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// WithTimestamp appends the UTC time as -YYYYMMDDHHMMSS to base.
func WithTimestamp(base string, t time.Time) string {
	return base + "-" + t.UTC().Format(TimestampLayout)
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique returns base when it is free. Otherwise it tries base with a
// timestamp suffix, then the timestamped slug with -2, -3 and so on.
func Unique(ctx context.Context, base string, now time.Time, exists ExistsFunc) (string, error) {
	taken, err := exists(ctx, base)
	if err != nil || !taken {
		return base, err
	}

	stamped := WithTimestamp(base, now)
	candidate := stamped
	for n := 2; ; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = stamped + "-" + strconv.Itoa(n)
	}
}
