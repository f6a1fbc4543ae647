// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	s := &UserStore{}
	u := &models.User{PasswordHash: string(hash)}
	if !s.CheckPassword(u, "s3cret!pw") {
		t.Error("correct password rejected")
	}
	if s.CheckPassword(u, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Errorf("normalizeEmail() = %q", got)
	}
}

func TestUserStoreIntegration(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserStore(db)
	users.cost = bcrypt.MinCost

	u := testUser(t, db, "user-store@test.local", roles.Viewer)

	found, err := users.FindByEmail(ctx, "USER-STORE@test.local")
	if err != nil || found == nil || found.ID != u.ID {
		t.Fatalf("FindByEmail: %v, %v", found, err)
	}
	if !found.IsActive || found.Role != roles.Viewer {
		t.Errorf("found = %+v", found)
	}

	dup := &models.User{Name: "Dup", Email: u.Email, Role: roles.Viewer, IsActive: true}
	if err := users.Create(ctx, dup, "pa55word!"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate email error = %v, want conflict", err)
	}

	found.Role = roles.Contributor
	found.Bio = "Writes about Go."
	if err := users.Update(ctx, found); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := users.SetPassword(ctx, u.ID, "n3w-pass!"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := users.TouchLogin(ctx, u.ID, time.Now()); err != nil {
		t.Fatalf("TouchLogin: %v", err)
	}

	reloaded, _ := users.FindByID(ctx, u.ID)
	if reloaded.Role != roles.Contributor || reloaded.Bio != "Writes about Go." {
		t.Errorf("reloaded = %+v", reloaded)
	}
	if !users.CheckPassword(reloaded, "n3w-pass!") {
		t.Error("new password rejected")
	}
	if reloaded.LastLoginAt == nil {
		t.Error("LastLoginAt not set")
	}

	if err := users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gone, _ := users.FindByID(ctx, u.ID); gone != nil {
		t.Error("user still present after delete")
	}
}
