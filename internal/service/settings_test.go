// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

type memSettings struct {
	values map[string]string
	err    error
}

func (m *memSettings) All(context.Context) (models.SiteSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := models.SiteSettings{}
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memSettings) List(context.Context) ([]models.SiteSetting, error) {
	var out []models.SiteSetting
	for k, v := range m.values {
		out = append(out, models.SiteSetting{Key: k, Value: v, UpdatedAt: fixedNow})
	}
	return out, nil
}

func (m *memSettings) SetMany(_ context.Context, values map[string]string) error {
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func TestSettingsSnapshot(t *testing.T) {
	repo := &memSettings{values: map[string]string{models.SettingSiteTitle: "My Blog"}}
	svc := NewSettingService(repo, nil)

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.SiteTitle() != "My Blog" {
		t.Errorf("title = %q", snap.SiteTitle())
	}
	if !snap.CommentsEnabled() || snap.CommentsModerated() || snap.PostsPerPage() != 10 {
		t.Errorf("defaults not applied: %v", snap)
	}

	// The snapshot is a copy: later writes do not change it.
	repo.values[models.SettingSiteTitle] = "Changed"
	if snap.SiteTitle() != "My Blog" {
		t.Error("snapshot changed after a write")
	}

	repo.err = errors.New("db down")
	if _, err := svc.Snapshot(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestSettingsUpdate(t *testing.T) {
	repo := &memSettings{values: map[string]string{}}
	activity := &memActivity{}
	svc := NewSettingService(repo, activity)
	ctx := context.Background()
	admin := newUser(roles.Admin)

	err := svc.Update(ctx, admin, map[string]string{
		models.SettingEnableComments:    "off",
		models.SettingModeratedComments: "1",
		models.SettingPostsPerPage:      " 25 ",
		models.SettingGitHubURL:         "https://github.com/inkwell",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := map[string]string{
		models.SettingEnableComments:    "false",
		models.SettingModeratedComments: "true",
		models.SettingPostsPerPage:      "25",
		models.SettingGitHubURL:         "https://github.com/inkwell",
	}
	for k, v := range want {
		if repo.values[k] != v {
			t.Errorf("%s = %q, want %q", k, repo.values[k], v)
		}
	}
	if got := activity.last(); got.EntityType != "settings" || got.EntityID != "" {
		t.Errorf("activity = %+v", got)
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{models.SettingEnableComments, "maybe"},
		{models.SettingPostsPerPage, "ten"},
		{models.SettingPostsPerPage, "0"},
		{models.SettingPostsPerPage, "51"},
		{models.SettingTwitterURL, "twitter.com/me"},
		{models.SettingSiteTitle, "   "},
		{"theme", "dark"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			repo := &memSettings{values: map[string]string{}}
			svc := NewSettingService(repo, nil)
			err := svc.Update(context.Background(), newUser(roles.Admin), map[string]string{tt.key: tt.value})
			assertField(t, err, tt.key)
			if len(repo.values) != 0 {
				t.Error("nothing should be written")
			}
		})
	}
}

func TestSettingsRequireAdmin(t *testing.T) {
	svc := NewSettingService(&memSettings{values: map[string]string{}}, nil)
	ctx := context.Background()

	err := svc.Update(ctx, newUser(roles.Contributor), map[string]string{models.SettingSiteTitle: "Mine"})
	assertKind(t, err, apperr.ErrPermissionDenied)

	_, err = svc.List(ctx, nil)
	assertKind(t, err, apperr.ErrAuthenticationRequired)
}

func TestSettingsListKeepsDefaultOrder(t *testing.T) {
	svc := NewSettingService(&memSettings{values: map[string]string{models.SettingPostsPerPage: "7"}}, nil)

	list, err := svc.List(context.Background(), newUser(roles.Admin))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != len(models.DefaultSettings) {
		t.Fatalf("got %d settings", len(list))
	}
	for i, s := range list {
		if s.Key != models.DefaultSettings[i].Key {
			t.Errorf("position %d = %q", i, s.Key)
		}
		if s.Key == models.SettingPostsPerPage && (s.Value != "7" || !s.UpdatedAt.Equal(fixedNow)) {
			t.Errorf("posts_per_page = %+v", s)
		}
	}
	if models.DefaultSettings[2].Value != "10" {
		t.Error("List must not mutate the defaults")
	}
}

func TestPublicSettings(t *testing.T) {
	pub := PublicSettings(models.SiteSettings{
		models.SettingSiteTitle:         "Blog",
		models.SettingModeratedComments: "true",
	})
	if pub[models.SettingSiteTitle] != "Blog" {
		t.Errorf("title = %q", pub[models.SettingSiteTitle])
	}
	if _, ok := pub[models.SettingModeratedComments]; ok {
		t.Error("moderation flag is not public")
	}
}
