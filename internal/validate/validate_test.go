// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package validate

import (
	"strings"
	"testing"
)

type check struct {
	name  string
	input string
	ok    bool
}

func run(t *testing.T, fn func(string) string, tests []check) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := fn(tt.input)
			if tt.ok && msg != "" {
				t.Errorf("unexpected error for %q: %s", tt.input, msg)
			}
			if !tt.ok && msg == "" {
				t.Errorf("expected an error for %q, got none", tt.input)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	run(t, Email, []check{
		{"plain", "ada@example.com", true},
		{"plus and dots", "ada.l+blog@mail.example.co.uk", true},
		{"upper case", "Ada@Example.COM", true},
		{"empty", "", false},
		{"no at", "ada.example.com", false},
		{"no tld", "ada@example", false},
		{"space", "ada @example.com", false},
		{"too long", strings.Repeat("a", 95) + "@x.com", false},
	})
}

func TestPassword(t *testing.T) {
	run(t, Password, []check{
		{"strong", "s3cret!pass", true},
		{"too short", "a1!", false},
		{"no digit", "password!", false},
		{"no special", "password1", false},
	})
}

func TestName(t *testing.T) {
	run(t, Name, []check{
		{"simple", "Ada Lovelace", true},
		{"apostrophe", "Miles O'Brien", true},
		{"hyphen", "Jean-Luc", true},
		{"accented", "Zoë Ærø", true},
		{"one letter", "A", false},
		{"digits", "R2D2", false},
		{"too long", strings.Repeat("a", 101), false},
	})
}

func TestTitle(t *testing.T) {
	run(t, Title, []check{
		{"valid", "Go Generics", true},
		{"empty", "   ", false},
		{"too short", "Go", false},
		{"max", strings.Repeat("a", 200), true},
		{"too long", strings.Repeat("a", 201), false},
	})
}

func TestContent(t *testing.T) {
	run(t, Content, []check{
		{"valid", "Ten chars!", true},
		{"too short", "short", false},
		{"whitespace padded", "   short   ", false},
	})
}

func TestComment(t *testing.T) {
	run(t, Comment, []check{
		{"valid", "Nice post", true},
		{"one char", "k", false},
		{"max", strings.Repeat("a", 1000), true},
		{"too long", strings.Repeat("a", 1001), false},
	})
}

func TestURL(t *testing.T) {
	run(t, URL, []check{
		{"empty allowed", "", true},
		{"https", "https://github.com/ada", true},
		{"http", "http://example.com/path?q=1", true},
		{"no scheme", "github.com/ada", false},
		{"javascript", "javascript:alert(1)", false},
		{"too long", "https://example.com/" + strings.Repeat("a", 200), false},
	})
}

func TestSlug(t *testing.T) {
	run(t, Slug, []check{
		{"valid", "my-post-2", true},
		{"upper", "My-Post", false},
		{"space", "my post", false},
		{"short", "ab", false},
	})
}
