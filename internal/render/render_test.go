// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return rn
}

func TestNew(t *testing.T) {
	rn := newRenderer(t)

	for _, name := range []string{
		"home", "article", "author", "contact", "error",
		"login", "login_totp", "register", "forgot_password", "reset_password",
		"profile", "contributor_dashboard", "articles", "article_form", "media", "comments",
		"admin_dashboard", "users", "user_form", "categories", "tags", "settings",
	} {
		if !rn.Has(name) {
			t.Errorf("expected template %q to be parsed", name)
		}
	}
	for _, name := range []string{"base", "auth", "_partials"} {
		if rn.Has(name) {
			t.Errorf("%q should not be registered as a page", name)
		}
	}
}

func TestPageRendering(t *testing.T) {
	rn := newRenderer(t)
	admin := &models.User{ID: uuid.New(), Name: "Ada", Role: roles.Admin, IsActive: true}

	tests := []struct {
		name     string
		user     *models.User
		htmx     bool
		contains []string
		absent   []string
	}{
		{"visitor full page", nil, false,
			[]string{"<!DOCTYPE html>", "<title>Contact · Inkwell</title>", "Sign in", `name="csrf_token"`},
			[]string{"Admin</a>"}},
		{"admin full page", admin, false,
			[]string{"Ada</a>", `href="/admin"`, "Sign out"},
			[]string{">Sign in<"}},
		{"htmx partial", nil, true,
			[]string{`action="/contact"`},
			[]string{"<!DOCTYPE html>", "site-header"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/contact", nil)
			if tt.user != nil {
				req = req.WithContext(middleware.WithUser(req.Context(), tt.user))
			}
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rr := httptest.NewRecorder()
			rn.Page(rr, req, "contact", &PageData{
				Title: "Contact",
				Data:  map[string]any{"Form": struct{ Name, Email, Subject, Message string }{}},
			})

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rr.Body.String()
			for _, s := range tt.contains {
				if !strings.Contains(body, s) {
					t.Errorf("body should contain %q", s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(body, s) {
					t.Errorf("body should not contain %q", s)
				}
			}
		})
	}
}

func TestAuthLayout(t *testing.T) {
	rn := newRenderer(t)
	rr := httptest.NewRecorder()
	rn.Page(rr, httptest.NewRequest(http.MethodGet, "/login", nil), "login", &PageData{
		Title: "Sign in",
		Data:  map[string]any{"Next": "/profile"},
	})
	body := rr.Body.String()
	if !strings.Contains(body, `class="auth"`) {
		t.Error("login should use the auth layout")
	}
	if strings.Contains(body, "site-header") {
		t.Error("auth layout should not include the site header")
	}
	if !strings.Contains(body, `value="/profile"`) {
		t.Error("next target missing")
	}
}

func TestMissingTemplate(t *testing.T) {
	rn := newRenderer(t)
	rr := httptest.NewRecorder()
	rn.Page(rr, httptest.NewRequest(http.MethodGet, "/", nil), "nope", &PageData{})
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestErrorPage(t *testing.T) {
	rn := newRenderer(t)
	rr := httptest.NewRecorder()
	rn.Error(rr, httptest.NewRequest(http.MethodGet, "/admin", nil), http.StatusForbidden, "Permission denied")
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Permission denied") {
		t.Error("message missing from error page")
	}
}

func TestSettingsInjection(t *testing.T) {
	rn := newRenderer(t)
	req := httptest.NewRequest(http.MethodGet, "/contact", nil)
	snap := models.SiteSettings{models.SettingSiteTitle: "Field Notes"}

	var got string
	h := middleware.LoadSettings(staticSource(snap))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rr := httptest.NewRecorder()
		rn.Page(rr, r, "error", &PageData{Data: map[string]any{"Status": 404, "Message": "Not found"}})
		got = rr.Body.String()
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(got, "<title>Field Notes</title>") {
		t.Errorf("site title not rendered from settings snapshot")
	}
}

func TestFlashRoundTrip(t *testing.T) {
	rn := newRenderer(t)

	set := httptest.NewRecorder()
	SetFlash(set, "success", "Article saved.")
	cookies := set.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/contributor", nil)
	req.AddCookie(cookies[0])
	rr := httptest.NewRecorder()
	rn.Page(rr, req, "error", &PageData{Data: map[string]any{"Status": 200, "Message": ""}})

	body := rr.Body.String()
	if !strings.Contains(body, `flash-success`) || !strings.Contains(body, "Article saved.") {
		t.Error("flash not rendered")
	}
	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("flash cookie should be cleared after display")
	}
}

func TestTakeFlashRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "%%%"})
	if _, ok := takeFlash(httptest.NewRecorder(), req); ok {
		t.Error("garbage cookie should not produce a flash")
	}
}

type staticSource models.SiteSettings

func (s staticSource) Snapshot(_ context.Context) (models.SiteSettings, error) {
	return models.SiteSettings(s), nil
}
