// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package access holds the requirements a route places on the current
// user. A Requirement only looks at the user it is given; how that user
// was resolved (session cookie or bearer token) is the middleware's job.
package access

import (
	"fmt"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

// Requirement checks a resolved user. It returns nil when the user may
// proceed, apperr.ErrAuthenticationRequired when nobody is signed in and
// an error wrapping apperr.ErrPermissionDenied otherwise.
type Requirement func(u *models.User) error

func signedIn(u *models.User) error {
	if u == nil {
		return apperr.ErrAuthenticationRequired
	}
	if !u.IsActive {
		return apperr.Denied("this account has been deactivated")
	}
	return nil
}

// Authenticated admits any active user.
func Authenticated() Requirement {
	return signedIn
}

// Role admits users holding role r. Admins satisfy every role.
func Role(r roles.Role) Requirement {
	return func(u *models.User) error {
		if err := signedIn(u); err != nil {
			return err
		}
		if u.Role != r && !u.IsAdmin() {
			return apperr.Denied(fmt.Sprintf("this page requires the %s role", r))
		}
		return nil
	}
}

// Admin admits administrators only.
func Admin() Requirement {
	return Role(roles.Admin)
}

// Permission admits users whose role grants p.
func Permission(p roles.Permission) Requirement {
	return func(u *models.User) error {
		if err := signedIn(u); err != nil {
			return err
		}
		if !u.Can(p) {
			return apperr.ErrPermissionDenied
		}
		return nil
	}
}

// All admits users that satisfy every requirement, checked in order.
func All(reqs ...Requirement) Requirement {
	return func(u *models.User) error {
		for _, req := range reqs {
			if err := req(u); err != nil {
				return err
			}
		}
		return nil
	}
}
