// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

func user(r roles.Role) *models.User {
	return &models.User{ID: uuid.New(), Role: r, IsActive: true}
}

func TestRequirements(t *testing.T) {
	inactive := user(roles.Admin)
	inactive.IsActive = false

	tests := []struct {
		name string
		req  Requirement
		user *models.User
		want error
	}{
		{"authenticated/anonymous", Authenticated(), nil, apperr.ErrAuthenticationRequired},
		{"authenticated/viewer", Authenticated(), user(roles.Viewer), nil},
		{"authenticated/inactive", Authenticated(), inactive, apperr.ErrPermissionDenied},

		{"role/anonymous", Role(roles.Contributor), nil, apperr.ErrAuthenticationRequired},
		{"role/viewer", Role(roles.Contributor), user(roles.Viewer), apperr.ErrPermissionDenied},
		{"role/contributor", Role(roles.Contributor), user(roles.Contributor), nil},
		{"role/admin", Role(roles.Contributor), user(roles.Admin), nil},
		{"role/inactive admin", Role(roles.Contributor), inactive, apperr.ErrPermissionDenied},

		{"admin/contributor", Admin(), user(roles.Contributor), apperr.ErrPermissionDenied},
		{"admin/admin", Admin(), user(roles.Admin), nil},
		{"admin/anonymous", Admin(), nil, apperr.ErrAuthenticationRequired},

		{"permission/viewer comment", Permission(roles.CanComment), user(roles.Viewer), nil},
		{"permission/viewer create", Permission(roles.CanCreateArticles), user(roles.Viewer), apperr.ErrPermissionDenied},
		{"permission/contributor upload", Permission(roles.CanUploadFiles), user(roles.Contributor), nil},
		{"permission/admin anything", Permission(roles.CanManageSettings), user(roles.Admin), nil},
		{"permission/anonymous", Permission(roles.CanComment), nil, apperr.ErrAuthenticationRequired},

		{"all/pass", All(Authenticated(), Permission(roles.CanComment)), user(roles.Viewer), nil},
		{"all/second fails", All(Authenticated(), Role(roles.Admin)), user(roles.Viewer), apperr.ErrPermissionDenied},
		{"all/empty", All(), nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req(tt.user)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRequirementStatus(t *testing.T) {
	if got := apperr.Status(Authenticated()(nil)); got != 401 {
		t.Errorf("anonymous status = %d, want 401", got)
	}
	if got := apperr.Status(Admin()(user(roles.Viewer))); got != 403 {
		t.Errorf("denied status = %d, want 403", got)
	}
}
