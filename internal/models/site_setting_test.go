// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestSiteSettingsBool(t *testing.T) {
	s := SiteSettings{
		SettingEnableComments:    "false",
		SettingModeratedComments: "TRUE",
		"weird":                  "maybe",
	}
	if s.CommentsEnabled() {
		t.Error("CommentsEnabled() = true")
	}
	if !s.CommentsModerated() {
		t.Error("CommentsModerated() = false")
	}
	if !s.Bool("weird", true) || s.Bool("weird", false) {
		t.Error("unparseable value should yield fallback")
	}
}

func TestSiteSettingsDefaultsWhenMissing(t *testing.T) {
	var s SiteSettings
	if !s.CommentsEnabled() {
		t.Error("comments should default to enabled")
	}
	if s.CommentsModerated() {
		t.Error("moderation should default to off")
	}
	if got := s.PostsPerPage(); got != 10 {
		t.Errorf("PostsPerPage() = %d, want 10", got)
	}
	if got := s.SiteTitle(); got != "Inkwell" {
		t.Errorf("SiteTitle() = %q", got)
	}
}

func TestPostsPerPageClamped(t *testing.T) {
	tests := map[string]int{"0": 1, "-4": 1, "7": 7, "500": 50, "abc": 10}
	for raw, want := range tests {
		s := SiteSettings{SettingPostsPerPage: raw}
		if got := s.PostsPerPage(); got != want {
			t.Errorf("PostsPerPage(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestDefaultSetting(t *testing.T) {
	def, ok := DefaultSetting(SettingEnableComments)
	if !ok || def.Kind != SettingBool || def.Value != "true" {
		t.Errorf("DefaultSetting(enable_comments) = %+v, %v", def, ok)
	}
	if _, ok := DefaultSetting("favourite_colour"); ok {
		t.Error("unknown key reported as known")
	}
}
