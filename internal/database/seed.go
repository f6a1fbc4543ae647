// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/derive"
	"inkwell/internal/roles"
	"inkwell/internal/slug"
)

// SeedOptions controls the development seed.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

type seedUser struct {
	name, email, password string
	role                  roles.Role
}

// welcomeBody is the body of the seeded article.
const welcomeBody = `## Welcome

This site runs on Inkwell. Contributors write articles as drafts and publish
them when they are ready; readers comment, and admins keep the conversation
tidy.

- Sign in as the contributor to write something.
- Sign in as the admin to manage users, categories and settings.
`

// Seed populates an empty database with demo accounts for every role, a
// few categories and tags, and one published article. It does nothing once
// any user exists.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	users := []seedUser{
		{"Site Admin", opts.AdminEmail, opts.AdminPassword, roles.Admin},
		{"Casey Contributor", "contributor@inkwell.local", "contrib123!", roles.Contributor},
		{"Vic Viewer", "viewer@inkwell.local", "viewer123!", roles.Viewer},
	}
	ids := make(map[roles.Role]string, len(users))
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed bcrypt: %w", err)
		}
		var id string
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (name, email, password_hash, role)
			VALUES ($1, $2, $3, $4) RETURNING id
		`, u.name, strings.ToLower(u.email), string(hash), string(u.role)).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert user %s: %w", u.email, err)
		}
		ids[u.role] = id
	}

	var categoryID string
	for i, name := range []string{"Technology", "Programming", "Lifestyle"} {
		var id string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id`,
			name, slug.Generate(name),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", name, err)
		}
		if i == 1 {
			categoryID = id
		}
	}

	var tagIDs []string
	for _, name := range []string{"Go", "Web", "Tutorial"} {
		var id string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id`,
			name, slug.Generate(name),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert tag %s: %w", name, err)
		}
		tagIDs = append(tagIDs, id)
	}

	title := "Hello from Inkwell"
	var articleID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, content, status, read_time, published_at, author_id, category_id)
		VALUES ($1, $2, $3, 'published', $4, $5, $6, $7) RETURNING id
	`, title, slug.Generate(title), welcomeBody, derive.ReadTime(welcomeBody),
		time.Now().UTC(), ids[roles.Admin], categoryID,
	).Scan(&articleID)
	if err != nil {
		return fmt.Errorf("seed insert article: %w", err)
	}
	for _, tagID := range tagIDs[:2] {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)`, articleID, tagID,
		); err != nil {
			return fmt.Errorf("seed tag article: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo accounts",
		"admin", opts.AdminEmail,
		"contributor", "contributor@inkwell.local",
		"viewer", "viewer@inkwell.local",
	)
	return nil
}
