// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

const settingsKey contextKey = "settings"

// SettingsSource produces a settings snapshot.
type SettingsSource interface {
	Snapshot(ctx context.Context) (models.SiteSettings, error)
}

func defaultSettings() models.SiteSettings {
	s := make(models.SiteSettings, len(models.DefaultSettings))
	for _, d := range models.DefaultSettings {
		s[d.Key] = d.Value
	}
	return s
}

// LoadSettings reads the site settings once per request. Every handler in
// the request sees the same snapshot even if an admin saves new values
// meanwhile. When the store is down the defaults are used.
func LoadSettings(src SettingsSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, err := src.Snapshot(r.Context())
			if err != nil {
				slog.Warn("settings snapshot failed, using defaults", "error", err)
				snap = defaultSettings()
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), settingsKey, snap)))
		})
	}
}

// SettingsFromCtx returns the request's settings snapshot, or the
// defaults when LoadSettings did not run.
func SettingsFromCtx(ctx context.Context) models.SiteSettings {
	if s, ok := ctx.Value(settingsKey).(models.SiteSettings); ok {
		return s
	}
	return defaultSettings()
}

// ClientInfo records the caller's address and user agent for the audit log.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := service.WithClient(r.Context(), clientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
