// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
	userKey    contextKey = "user"
	authErrKey contextKey = "auth_error"
)

// UserLookup loads accounts by id.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Resolver finds the user behind a request. It returns (nil, nil) when
// the request carries no credential it understands.
type Resolver interface {
	Resolve(r *http.Request) (*models.User, error)
}

// LoadSession retrieves the session from Valkey and stores it in the
// request context. It does not enforce authentication.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session lookup failed", "error", err)
			}
			if data != nil {
				r = r.WithContext(context.WithValue(r.Context(), SessionKey, data))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// SessionResolver identifies browser users from the session loaded by
// LoadSession. Sessions still waiting for a one-time code identify nobody.
type SessionResolver struct {
	Users UserLookup
}

// Resolve implements Resolver.
func (s SessionResolver) Resolve(r *http.Request) (*models.User, error) {
	data := SessionFromCtx(r.Context())
	if data == nil || data.TOTPPending || data.UserID == uuid.Nil {
		return nil, nil
	}
	return activeUser(r.Context(), s.Users, data.UserID)
}

// TokenResolver identifies API clients from an "Authorization: Bearer"
// header. A malformed, tampered or expired token yields
// token.ErrInvalidToken.
type TokenResolver struct {
	Tokens *token.Manager
	Users  UserLookup
}

// Resolve implements Resolver.
func (t TokenResolver) Resolve(r *http.Request) (*models.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return nil, token.ErrInvalidToken
	}
	subject, err := t.Tokens.Verify(strings.TrimSpace(raw), token.PurposeAPI)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, token.ErrInvalidToken
	}
	return activeUser(r.Context(), t.Users, id)
}

// activeUser loads id and drops deactivated or deleted accounts.
func activeUser(ctx context.Context, users UserLookup, id uuid.UUID) (*models.User, error) {
	u, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil || !u.IsActive {
		return nil, nil
	}
	return u, nil
}

// Identify asks each resolver in turn for the current user and binds the
// first match into the request context. An invalid bearer token is kept
// so guards can report it; other resolver failures are logged and the
// request continues anonymously.
func Identify(resolvers ...Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			for _, res := range resolvers {
				u, err := res.Resolve(r)
				if errors.Is(err, token.ErrInvalidToken) {
					ctx = context.WithValue(ctx, authErrKey, err)
					continue
				}
				if err != nil {
					slog.Warn("identify request", "error", err)
					continue
				}
				if u != nil {
					ctx = WithUser(ctx, u)
					break
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns ctx carrying u as the current user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromCtx returns the user bound by Identify, or nil for anonymous
// requests.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func authErrFromCtx(ctx context.Context) error {
	err, _ := ctx.Value(authErrKey).(error)
	return err
}
