// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site, the
// contributor panel and the admin panel. It supports full-page and HTMX
// partial rendering, automatically detecting the request type via the
// HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string              // Page title for <title> tag
	Section   string              // Active navigation section (e.g., "dashboard", "articles")
	User      *models.User        // Signed-in user (nil for visitors)
	Settings  models.SiteSettings // Settings snapshot of this request
	CSRFToken string              // CSRF token for forms and HTMX headers
	Errors    map[string]string   // Field errors of a rejected form
	Data      map[string]any      // Page-specific data
	Flashes   []Flash             // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// authTemplates render inside the narrow auth layout instead of base.html.
var authTemplates = map[string]bool{
	"login":           true,
	"login_totp":      true,
	"register":        true,
	"forgot_password": true,
	"reset_password":  true,
}

// layouts are the shared wrappers, not pages of their own.
var layouts = map[string]bool{
	"base.html": true,
	"auth.html": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with its layout.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
			"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
				return ptr != nil && *ptr == val
			},
			"date": func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return t.Format("Jan 2, 2006")
			},
			"day": func(t *time.Time) string {
				if t == nil {
					return ""
				}
				return t.Format("Jan 2, 2006")
			},
			"datePtr": func(t *time.Time) string {
				if t == nil {
					return "never"
				}
				return t.Format("Jan 2, 2006 15:04")
			},
			// can reports whether u holds the named permission.
			"can": func(u *models.User, p string) bool {
				return u.Can(roles.Permission(p))
			},
			"hasTag": func(a *models.Article, id uuid.UUID) bool {
				return a != nil && a.HasTag(id)
			},
			"query": url.QueryEscape,
			"upper": strings.ToUpper,
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || layouts[name] || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		layout := "base.html"
		if authTemplates[tmplName] {
			layout = "auth.html"
		}
		tmpl, err := template.New(layout).Funcs(r.funcMap).ParseFS(
			templateFS, "templates/"+layout, "templates/_partials.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Has reports whether a page template named name exists.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders a full page or an HTMX partial with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders a full page or, for HTMX requests, only the
// "content" block. The request's user, settings, CSRF token and pending
// flash are injected into data.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = &PageData{}
	}

	ctx := r.Context()
	data.CSRFToken = middleware.CSRFTokenFromCtx(ctx)
	if data.User == nil {
		data.User = middleware.UserFromCtx(ctx)
	}
	if data.Settings == nil {
		data.Settings = middleware.SettingsFromCtx(ctx)
	}
	if f, ok := takeFlash(w, r); ok {
		data.Flashes = append(data.Flashes, f)
	}

	execName := "base.html"
	if authTemplates[name] {
		execName = "auth.html"
	}
	if isHTMX(r) {
		execName = "content"
	}

	// Render into a buffer so a template error does not leave a half-written
	// page behind a 200 status.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Error renders the error page with status and a client-safe message.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	rn.PageStatus(w, r, status, "error", &PageData{
		Title: http.StatusText(status),
		Data:  map[string]any{"Status": status, "Message": msg},
	})
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
