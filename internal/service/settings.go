// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
	"inkwell/internal/validate"
)

// SettingRepository is the persistence the settings service needs.
type SettingRepository interface {
	All(ctx context.Context) (models.SiteSettings, error)
	List(ctx context.Context) ([]models.SiteSetting, error)
	SetMany(ctx context.Context, settings map[string]string) error
}

// SettingService reads and edits site settings.
type SettingService struct {
	settings SettingRepository
	activity ActivityRecorder
}

// NewSettingService wires the settings service. activity may be nil.
func NewSettingService(settings SettingRepository, activity ActivityRecorder) *SettingService {
	if activity == nil {
		activity = nopRecorder{}
	}
	return &SettingService{settings: settings, activity: activity}
}

// Snapshot returns every setting, with defaults filled in for keys that
// have no stored row. The map is a fresh copy for the caller.
func (s *SettingService) Snapshot(ctx context.Context) (models.SiteSettings, error) {
	stored, err := s.settings.All(ctx)
	if err != nil {
		return nil, err
	}
	snap := make(models.SiteSettings, len(models.DefaultSettings)+len(stored))
	for _, d := range models.DefaultSettings {
		snap[d.Key] = d.Value
	}
	for k, v := range stored {
		snap[k] = v
	}
	return snap, nil
}

// List returns the known settings with their current values, in the
// order of models.DefaultSettings.
func (s *SettingService) List(ctx context.Context, actor *models.User) ([]models.SiteSetting, error) {
	if err := require(actor, roles.CanManageSettings); err != nil {
		return nil, err
	}
	rows, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.SiteSetting, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r
	}
	out := make([]models.SiteSetting, 0, len(models.DefaultSettings))
	for _, d := range models.DefaultSettings {
		if r, ok := byKey[d.Key]; ok {
			d.Value = r.Value
			d.UpdatedAt = r.UpdatedAt
		}
		out = append(out, d)
	}
	return out, nil
}

// normalizeSetting validates value for the kind of setting def and
// returns its canonical form.
func normalizeSetting(def models.SiteSetting, value string) (string, string) {
	value = strings.TrimSpace(value)
	switch def.Kind {
	case models.SettingBool:
		switch strings.ToLower(value) {
		case "true", "1", "on", "yes":
			return "true", ""
		case "false", "0", "off", "no", "":
			return "false", ""
		}
		return "", "Must be true or false."
	case models.SettingInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", "Must be a whole number."
		}
		if def.Key == models.SettingPostsPerPage && (n < 1 || n > 50) {
			return "", "Must be between 1 and 50."
		}
		return strconv.Itoa(n), ""
	case models.SettingURL:
		return value, validate.URL(value)
	default:
		if def.Key == models.SettingSiteTitle && value == "" {
			return "", "Site title is required."
		}
		return value, validate.MaxLen(def.Description, value, 200)
	}
}

// Update validates and saves several settings at once. Unknown keys are
// rejected; nothing is written unless every value is valid.
func (s *SettingService) Update(ctx context.Context, actor *models.User, values map[string]string) error {
	if err := require(actor, roles.CanManageSettings); err != nil {
		return err
	}
	ve := &apperr.ValidationError{}
	clean := make(map[string]string, len(values))
	for k, v := range values {
		def, ok := models.DefaultSetting(k)
		if !ok {
			ve.Add(k, "Unknown setting.")
			continue
		}
		norm, msg := normalizeSetting(def, v)
		if msg != "" {
			ve.Add(k, msg)
			continue
		}
		clean[k] = norm
	}
	if err := ve.Err(); err != nil {
		return err
	}
	if len(clean) == 0 {
		return nil
	}
	if err := s.settings.SetMany(ctx, clean); err != nil {
		return err
	}
	keys := make([]string, 0, len(clean))
	for k := range clean {
		keys = append(keys, k)
	}
	record(ctx, s.activity, actor, "update", "settings", uuid.Nil, strings.Join(keys, ", "))
	return nil
}

// PublicSettings is the subset of settings exposed without signing in.
func PublicSettings(s models.SiteSettings) map[string]string {
	out := make(map[string]string)
	for _, k := range []string{
		models.SettingSiteTitle,
		models.SettingSiteDescription,
		models.SettingPostsPerPage,
		models.SettingEnableComments,
		models.SettingGitHubURL,
		models.SettingLinkedInURL,
		models.SettingTwitterURL,
	} {
		out[k] = s[k]
	}
	return out
}
