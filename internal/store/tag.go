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

// TagStore manages tags and reports how many articles use each.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// List returns all tags ordered by name, with article counts.
func (s *TagStore) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(at.article_id)
		FROM tags t
		LEFT JOIN article_tags at ON at.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, classify("list tags", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.ArticleCount); err != nil {
			return nil, classify("scan tag", err)
		}
		items = append(items, t)
	}
	return items, classify("list tags", rows.Err())
}

// FindByIDs returns the tags among ids that exist.
func (s *TagStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at FROM tags WHERE id = ANY($1::uuid[]) ORDER BY name`,
		uuidStrings(ids))
	if err != nil {
		return nil, classify("find tags", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, classify("scan tag", err)
		}
		items = append(items, t)
	}
	return items, classify("find tags", rows.Err())
}

// FindByID returns a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM tags WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find tag", err)
	}
	return &t, nil
}

// SlugExists reports whether any tag already uses slug.
func (s *TagStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tags WHERE slug = $1)`, slug).Scan(&exists)
	return exists, classify("check tag slug", err)
}

// Create inserts a new tag.
func (s *TagStore) Create(ctx context.Context, t *models.Tag) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id, created_at`,
		t.Name, t.Slug,
	).Scan(&t.ID, &t.CreatedAt)
	return classify("create tag", err)
}

// Delete removes a tag and its article links.
func (s *TagStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	return classify("delete tag", err)
}
