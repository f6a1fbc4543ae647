// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"

	"inkwell/internal/roles"
)

// User represents a site account. Role decides what the user may do; see
// package roles for the permission table.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize the hash
	Role         roles.Role `json:"role"`
	IsActive     bool       `json:"is_active"`
	Bio          string     `json:"bio"`
	Avatar       string     `json:"avatar"`
	Website      string     `json:"website"`
	Twitter      string     `json:"twitter"`
	LinkedIn     string     `json:"linkedin"`
	GitHub       string     `json:"github"`
	TOTPSecret   *string    `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool       `json:"totp_enabled"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == roles.Admin
}

// Can reports whether the user holds permission p. A nil or deactivated
// user holds nothing.
func (u *User) Can(p roles.Permission) bool {
	return u != nil && u.IsActive && roles.Has(u.Role, p)
}

// Is reports whether the user is the account with the given id.
func (u *User) Is(id uuid.UUID) bool {
	return u != nil && u.ID == id
}

// Initial returns the first letter of the name, used for avatar fallbacks.
func (u *User) Initial() string {
	for _, r := range u.Name {
		return string(r)
	}
	return "?"
}
