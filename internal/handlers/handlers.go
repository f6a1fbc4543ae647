// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP endpoints: public pages, sign-in
// and account pages, the contributor and admin panels, and the JSON API.
// Handlers parse input, call a service with the request's user and turn
// the result or error into a response.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/service"
)

// Services bundles the application services the handlers call.
type Services struct {
	Articles   *service.ArticleService
	Comments   *service.CommentService
	Categories *service.CategoryService
	Tags       *service.TagService
	Users      *service.UserService
	Settings   *service.SettingService
	Media      *service.MediaService
	Dashboard  *service.DashboardService
	Contact    *service.ContactService
}

// fail turns a service error into a browser response: anonymous callers
// are sent to the login page, everything else gets the error page.
// Unclassified and storage errors are logged once here.
func fail(rn *render.Renderer, w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	if status == http.StatusUnauthorized && !service.IsInvalidCredentials(err) {
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}
	rn.Error(w, r, status, apperr.Message(err))
}

// fieldErrors returns the per-field messages of a validation error, or
// nil for any other error.
func fieldErrors(err error) map[string]string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return ve.Map()
	}
	return nil
}

// idParam parses a UUID route parameter.
func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.NotFound("page")
	}
	return id, nil
}

// pageParam reads the 1-based ?page= query parameter.
func pageParam(r *http.Request) int {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// Pager holds the links of a paginated listing.
type Pager struct {
	Page  int
	Pages int
	Prev  string
	Next  string
}

// pagerFor builds pagination links that keep the request's other query
// parameters.
func pagerFor[T any](r *http.Request, p models.Page[T]) *Pager {
	link := func(n int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		return r.URL.Path + "?" + q.Encode()
	}
	pg := &Pager{Page: p.Page, Pages: p.TotalPages()}
	if p.HasPrev() {
		pg.Prev = link(p.PrevPage())
	}
	if p.HasNext() {
		pg.Next = link(p.NextPage())
	}
	return pg
}

// safeNext returns next when it is a local path, otherwise fallback. It
// keeps login and form redirects from leaving the site.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// checked reports whether a checkbox field was submitted as on.
func checked(r *http.Request, key string) bool {
	switch r.PostFormValue(key) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// optionalUUID parses an optional form UUID. A blank value is nil; a
// malformed one is a validation error on field.
func optionalUUID(raw, field string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Invalid(field, fmt.Sprintf("%q is not a valid id.", raw))
	}
	return &id, nil
}

// uuidList parses a list of form UUIDs, ignoring blanks.
func uuidList(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := optionalUUID(s, field)
		if err != nil {
			return nil, err
		}
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return ids, nil
}

// isConflict reports a uniqueness or reference conflict.
func isConflict(err error) bool {
	return errors.Is(err, apperr.ErrConflict)
}

// flashMessage is the client-safe text of err, or the first field
// message of a validation error.
func flashMessage(err error) string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		return ve.Fields[0].Message
	}
	return apperr.Message(err)
}

func queryEscape(s string) string {
	return url.QueryEscape(s)
}
