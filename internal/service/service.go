// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service implements the operations behind every page and API
// endpoint. Each operation takes the acting user (nil for anonymous),
// checks permissions and input before writing, and returns errors from
// the apperr taxonomy.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

// ActivityRecorder appends to the audit trail. Implementations must not
// fail the calling operation.
type ActivityRecorder interface {
	Log(ctx context.Context, e models.ActivityLog)
}

type nopRecorder struct{}

func (nopRecorder) Log(context.Context, models.ActivityLog) {}

type clientKey struct{}

type clientInfo struct {
	ip        string
	userAgent string
}

// WithClient attaches the caller's address and user agent to ctx so audit
// entries can record them.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

// ClientFromCtx returns the address and user agent set by WithClient.
func ClientFromCtx(ctx context.Context) (ip, userAgent string) {
	ci, _ := ctx.Value(clientKey{}).(clientInfo)
	return ci.ip, ci.userAgent
}

func record(ctx context.Context, rec ActivityRecorder, actor *models.User, action, entityType string, entityID uuid.UUID, desc string) {
	if rec == nil {
		return
	}
	e := models.ActivityLog{
		Action:      action,
		EntityType:  entityType,
		Description: desc,
	}
	if entityID != uuid.Nil {
		e.EntityID = entityID.String()
	}
	if actor != nil {
		id := actor.ID
		e.UserID = &id
	}
	e.IPAddress, e.UserAgent = ClientFromCtx(ctx)
	rec.Log(ctx, e)
}

// requireUser fails with ErrAuthenticationRequired for anonymous callers.
func requireUser(actor *models.User) error {
	if actor == nil {
		return apperr.ErrAuthenticationRequired
	}
	if !actor.IsActive {
		return apperr.Denied("this account has been deactivated")
	}
	return nil
}

// require checks that actor is signed in and holds p.
func require(actor *models.User, p roles.Permission) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.Can(p) {
		return apperr.ErrPermissionDenied
	}
	return nil
}

// clock is overridden in tests.
type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
