// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// activity.go records who changed what, for the admin dashboard's audit
// trail. Writing an entry is best-effort: a failure is logged and the
// operation that triggered it still succeeds.
package store

import (
	"context"
	"database/sql"
	"log/slog"

	"inkwell/internal/models"
)

// ActivityStore handles the activity log.
type ActivityStore struct {
	db *sql.DB
}

// NewActivityStore creates a new ActivityStore.
func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Log records an activity entry.
func (s *ActivityStore) Log(ctx context.Context, e models.ActivityLog) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (user_id, action, entity_type, entity_id, description, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.UserID, e.Action, e.EntityType, e.EntityID, e.Description, e.IPAddress, e.UserAgent)
	if err != nil {
		// The audit trail is best-effort.
		slog.Warn("failed to record activity",
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"error", err,
		)
		return
	}
	slog.Debug("activity recorded", "action", e.Action, "entity_type", e.EntityType, "entity_id", e.EntityID)
}

// Recent returns the newest entries, limited to the specified count.
func (s *ActivityStore) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.user_id, l.action, l.entity_type, l.entity_id, l.description,
		       l.ip_address, l.user_agent, l.created_at, COALESCE(u.name, '')
		FROM activity_logs l
		LEFT JOIN users u ON u.id = l.user_id
		ORDER BY l.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, classify("query activity log", err)
	}
	defer rows.Close()

	var entries []models.ActivityLog
	for rows.Next() {
		var e models.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID,
			&e.Description, &e.IPAddress, &e.UserAgent, &e.CreatedAt, &e.UserName); err != nil {
			return nil, classify("scan activity log", err)
		}
		entries = append(entries, e)
	}
	return entries, classify("query activity log", rows.Err())
}
