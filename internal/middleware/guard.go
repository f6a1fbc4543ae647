// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"inkwell/internal/access"
	"inkwell/internal/apperr"
	"inkwell/internal/roles"
	"inkwell/internal/token"
)

// Responder writes the response for a request a guard turned away.
type Responder interface {
	Deny(w http.ResponseWriter, r *http.Request, err error)
}

// denial maps a guard failure to a status and client-safe message. Bad
// and expired tokens are indistinguishable to the client.
func denial(err error) (int, string) {
	if errors.Is(err, token.ErrInvalidToken) {
		return http.StatusUnauthorized, "invalid or expired token"
	}
	return apperr.Status(err), apperr.Message(err)
}

// BrowserResponder sends anonymous visitors to the login page and shows
// everyone else an error page.
type BrowserResponder struct {
	LoginPath string
	// Error renders an error page. http.Error is used when nil.
	Error func(w http.ResponseWriter, r *http.Request, status int, msg string)
}

// Deny implements Responder.
func (b BrowserResponder) Deny(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := denial(err)
	if status == http.StatusUnauthorized {
		login := b.LoginPath
		if login == "" {
			login = "/login"
		}
		http.Redirect(w, r, login+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}
	if b.Error != nil {
		b.Error(w, r, status, msg)
		return
	}
	http.Error(w, msg, status)
}

// APIResponder answers with a JSON error body.
type APIResponder struct{}

// Deny implements Responder.
func (APIResponder) Deny(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := denial(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Require admits requests whose user satisfies req. A rejected bearer
// token is reported as such even though the request has no user.
func Require(req access.Requirement, resp Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromCtx(r.Context())
			if u == nil {
				if err := authErrFromCtx(r.Context()); err != nil {
					resp.Deny(w, r, err)
					return
				}
			}
			if err := req(u); err != nil {
				resp.Deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated admits any signed-in user.
func RequireAuthenticated(resp Responder) func(http.Handler) http.Handler {
	return Require(access.Authenticated(), resp)
}

// RequireRole admits users holding role (admins always pass).
func RequireRole(role roles.Role, resp Responder) func(http.Handler) http.Handler {
	return Require(access.Role(role), resp)
}

// RequireAdmin admits administrators only.
func RequireAdmin(resp Responder) func(http.Handler) http.Handler {
	return Require(access.Admin(), resp)
}

// RequirePermission admits users whose role grants p.
func RequirePermission(p roles.Permission, resp Responder) func(http.Handler) http.Handler {
	return Require(access.Permission(p), resp)
}
