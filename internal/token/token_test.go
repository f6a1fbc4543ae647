// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret")
	tok, exp, err := m.Issue("user-1", PurposeAPI, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 59*time.Minute {
		t.Errorf("expiry %v too early", exp)
	}
	sub, err := m.Verify(tok, PurposeAPI)
	if err != nil || sub != "user-1" {
		t.Fatalf("Verify = %q, %v", sub, err)
	}
}

func TestVerifyRejectsWrongPurpose(t *testing.T) {
	m := NewManager("test-secret")
	tok, _, _ := m.Issue("user-1", PurposePasswordReset, time.Hour)
	if _, err := m.Verify(tok, PurposeAPI); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	tok, _, _ := NewManager("one").Issue("user-1", PurposeAPI, time.Hour)
	if _, err := NewManager("two").Verify(tok, PurposeAPI); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("test-secret")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	tok, _, _ := m.Issue("user-1", PurposePasswordReset, time.Hour)

	m.now = func() time.Time { return base.Add(61 * time.Minute) }
	_, err := m.Verify(tok, PurposePasswordReset)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
	// Expired and invalid collapse to the same outcome for callers.
	if !errors.Is(err, ErrInvalidToken) {
		t.Error("ErrExpiredToken should wrap ErrInvalidToken")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	m := NewManager("test-secret")
	tok, _, _ := m.Issue("user-1", PurposeAPI, time.Hour)
	parts := strings.Split(tok, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := m.Verify(strings.Join(parts, "."), PurposeAPI); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v", err)
	}
	if _, err := m.Verify("not-a-token", PurposeAPI); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v", err)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{string(PurposeAPI)},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Purpose: PurposeAPI,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager("test-secret").Verify(tok, PurposeAPI); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
