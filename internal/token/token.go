// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package token issues and verifies signed, expiring tokens. Each token is
// bound to a Purpose: a password-reset token is never accepted as an API
// credential and vice versa, because every purpose signs with its own key
// derived from the application secret.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for malformed, tampered, wrong-purpose or
	// expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrExpiredToken is returned for well-signed tokens past their expiry.
	// It wraps ErrInvalidToken so callers may treat both the same.
	ErrExpiredToken = fmt.Errorf("token expired: %w", ErrInvalidToken)
)

// Purpose scopes a token to one use.
type Purpose string

const (
	PurposeAPI           Purpose = "api"
	PurposePasswordReset Purpose = "password-reset"
)

const issuer = "inkwell"

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"purpose"`
}

// Manager signs and verifies HS256 tokens.
type Manager struct {
	secret []byte
	now    func() time.Time
}

// NewManager creates a Manager for the given application secret.
func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret), now: time.Now}
}

// key derives the per-purpose signing key.
func (m *Manager) key(p Purpose) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(p))
	return mac.Sum(nil)
}

// Issue signs a token for subject valid for ttl. It returns the token and
// its expiry time.
func (m *Manager) Issue(subject string, p Purpose, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{string(p)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Purpose: p,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key(p))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks a token for purpose p and returns its subject.
func (m *Manager) Verify(tokenString string, p Purpose) (string, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.key(p), nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(string(p)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !tok.Valid || claims.Purpose != p || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
