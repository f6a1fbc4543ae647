// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// MediaStore handles all media-related database operations.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `id, filename, original_name, content_type, size_bytes,
	storage_key, thumb_key, alt_text, caption, uploader_id, created_at`

// scanMedia scans a media row from the result set.
func scanMedia(row scanner) (*models.Media, error) {
	var m models.Media
	err := row.Scan(
		&m.ID, &m.Filename, &m.OriginalName, &m.ContentType, &m.SizeBytes,
		&m.StorageKey, &m.ThumbKey, &m.AltText, &m.Caption, &m.UploaderID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media record. The generated id and timestamp are
// written back into m.
func (s *MediaStore) Create(ctx context.Context, m *models.Media) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO media (filename, original_name, content_type, size_bytes,
			storage_key, thumb_key, alt_text, caption, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		m.Filename, m.OriginalName, m.ContentType, m.SizeBytes,
		m.StorageKey, m.ThumbKey, m.AltText, m.Caption, m.UploaderID,
	).Scan(&m.ID, &m.CreatedAt)
	return classify("create media", err)
}

// FindByID retrieves a single media record by its UUID.
func (s *MediaStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	m, err := scanMedia(s.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find media by id", err)
	}
	return m, nil
}

// List returns media items ordered by creation date, with pagination.
// A non-nil uploader restricts the listing to that user's files.
func (s *MediaStore) List(ctx context.Context, uploader *uuid.UUID, limit, offset int) ([]models.Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE $1::uuid IS NULL OR uploader_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, uploader, limit, offset)
	if err != nil {
		return nil, classify("list media", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, classify("scan media", err)
		}
		items = append(items, *m)
	}
	return items, classify("list media", rows.Err())
}

// Delete removes a media record and returns it so the caller can clean
// up the stored objects. Returns nil if nothing was deleted.
func (s *MediaStore) Delete(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	m, err := scanMedia(s.db.QueryRowContext(ctx,
		`DELETE FROM media WHERE id = $1 RETURNING `+mediaColumns, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("delete media", err)
	}
	return m, nil
}
