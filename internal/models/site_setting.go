// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"strings"
	"time"
)

// Setting keys the application reads.
const (
	SettingSiteTitle         = "site_title"
	SettingSiteDescription   = "site_description"
	SettingPostsPerPage      = "posts_per_page"
	SettingEnableComments    = "enable_comments"
	SettingModeratedComments = "moderated_comments"
	SettingGitHubURL         = "github_url"
	SettingLinkedInURL       = "linkedin_url"
	SettingTwitterURL        = "twitter_url"
)

// SettingKind tells the settings form how to validate a value.
type SettingKind string

const (
	SettingText SettingKind = "text"
	SettingBool SettingKind = "bool"
	SettingInt  SettingKind = "int"
	SettingURL  SettingKind = "url"
)

// SiteSetting represents a single configuration key-value pair.
type SiteSetting struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	Description string      `json:"description"`
	Kind        SettingKind `json:"kind"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// DefaultSettings lists every known setting with its default value. The
// initial migration seeds the same rows.
var DefaultSettings = []SiteSetting{
	{Key: SettingSiteTitle, Value: "Inkwell", Description: "Site title", Kind: SettingText},
	{Key: SettingSiteDescription, Value: "Articles, notes and discussions", Description: "Site description", Kind: SettingText},
	{Key: SettingPostsPerPage, Value: "10", Description: "Articles per page", Kind: SettingInt},
	{Key: SettingEnableComments, Value: "true", Description: "Allow readers to comment", Kind: SettingBool},
	{Key: SettingModeratedComments, Value: "false", Description: "Hold new comments for approval", Kind: SettingBool},
	{Key: SettingGitHubURL, Value: "", Description: "GitHub profile URL", Kind: SettingURL},
	{Key: SettingLinkedInURL, Value: "", Description: "LinkedIn profile URL", Kind: SettingURL},
	{Key: SettingTwitterURL, Value: "", Description: "Twitter profile URL", Kind: SettingURL},
}

// DefaultSetting returns the definition of a known key.
func DefaultSetting(key string) (SiteSetting, bool) {
	for _, s := range DefaultSettings {
		if s.Key == key {
			return s, true
		}
	}
	return SiteSetting{}, false
}

// SiteSettings is a read-only snapshot of all settings, taken once per
// request so every decision in that request sees the same values.
type SiteSettings map[string]string

// Get returns the value for a key, or the fallback if the key doesn't exist.
func (s SiteSettings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Bool parses a boolean setting. Unparseable values yield the fallback.
func (s SiteSettings) Bool(key string, fallback bool) bool {
	v, ok := s[key]
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

// Int parses an integer setting. Unparseable values yield the fallback.
func (s SiteSettings) Int(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s[key]))
	if err != nil {
		return fallback
	}
	return n
}

// CommentsEnabled reports whether new comments are accepted.
func (s SiteSettings) CommentsEnabled() bool {
	return s.Bool(SettingEnableComments, true)
}

// CommentsModerated reports whether new comments start unapproved.
func (s SiteSettings) CommentsModerated() bool {
	return s.Bool(SettingModeratedComments, false)
}

// PostsPerPage returns the listing page size, clamped to 1..50.
func (s SiteSettings) PostsPerPage() int {
	return min(max(s.Int(SettingPostsPerPage, 10), 1), 50)
}

// SiteTitle returns the configured site name.
func (s SiteSettings) SiteTitle() string {
	return s.Get(SettingSiteTitle, "Inkwell")
}
