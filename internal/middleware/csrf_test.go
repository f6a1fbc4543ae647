// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfHandler(secure bool, seen *string) http.Handler {
	return NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = GetCSRFToken(r)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

// csrfCookie performs a GET and returns the issued token cookie.
func csrfCookie(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("CSRF cookie not set")
	return nil
}

func TestCSRFCookieFlags(t *testing.T) {
	for _, secure := range []bool{true, false} {
		c := csrfCookie(t, csrfHandler(secure, nil))
		if c.Secure != secure {
			t.Errorf("Secure = %v, want %v", c.Secure, secure)
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("SameSite = %v", c.SameSite)
		}
		if len(c.Value) != 2*csrfTokenLength {
			t.Errorf("token length = %d", len(c.Value))
		}
	}
}

func TestCSRFTokenAvailableOnFirstRequest(t *testing.T) {
	var seen string
	h := csrfHandler(false, &seen)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/register", nil))
	if seen == "" {
		t.Fatal("token must be available before the cookie round-trips")
	}
	var issued string
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			issued = c.Value
		}
	}
	if seen != issued {
		t.Errorf("context token %q != cookie %q", seen, issued)
	}

	// An existing cookie is reused rather than rotated.
	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "existing"})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "existing" || len(rr.Result().Cookies()) != 0 {
		t.Errorf("token = %q, cookies = %d", seen, len(rr.Result().Cookies()))
	}
}

func TestCSRFValidation(t *testing.T) {
	h := csrfHandler(false, nil)
	cookie := csrfCookie(t, h)

	tests := []struct {
		name   string
		method string
		header string
		form   string
		want   int
	}{
		{"get passes", http.MethodGet, "", "", http.StatusOK},
		{"head passes", http.MethodHead, "", "", http.StatusOK},
		{"options passes", http.MethodOptions, "", "", http.StatusOK},
		{"post without token", http.MethodPost, "", "", http.StatusForbidden},
		{"post wrong token", http.MethodPost, "nope", "", http.StatusForbidden},
		{"post header token", http.MethodPost, cookie.Value, "", http.StatusOK},
		{"post form token", http.MethodPost, "", cookie.Value, http.StatusOK},
		{"put without token", http.MethodPut, "", "", http.StatusForbidden},
		{"patch without token", http.MethodPatch, "", "", http.StatusForbidden},
		{"delete header token", http.MethodDelete, cookie.Value, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.form != "" {
				body = strings.NewReader(url.Values{CSRFFormField: {tt.form}}.Encode())
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, "/comments", body)
			if tt.form != "" {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			req.AddCookie(cookie)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestCSRFTokenFromCtxEmpty(t *testing.T) {
	if got := CSRFTokenFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("got %q", got)
	}
}
