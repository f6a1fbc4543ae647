// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
	// cost is the bcrypt work factor; tests lower it.
	cost int
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, cost: bcrypt.DefaultCost}
}

const userColumns = `id, name, email, password_hash, role, is_active, bio, avatar,
	website, twitter, linkedin, github, totp_secret, totp_enabled,
	last_login_at, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.Bio, &u.Avatar,
		&u.Website, &u.Twitter, &u.LinkedIn, &u.GitHub, &u.TOTPSecret, &u.TOTPEnabled,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail retrieves a user by email address, case-insensitively.
// Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email)))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find user by email", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find user by id", err)
	}
	return u, nil
}

// List returns one page of users, newest first, and the total count.
func (s *UserStore) List(ctx context.Context, page, perPage int) ([]models.User, int, error) {
	page, perPage = clampPage(page, perPage, 100)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, classify("count users", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, classify("list users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, classify("scan user", err)
		}
		users = append(users, *u)
	}
	return users, total, classify("list users", rows.Err())
}

// Create inserts a new user with a bcrypt-hashed password. The generated
// id and timestamps are written back into u.
func (s *UserStore) Create(ctx context.Context, u *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return classify("hash password", err)
	}
	u.Email = normalizeEmail(u.Email)
	u.PasswordHash = string(hash)

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, is_active, bio, avatar,
		                   website, twitter, linkedin, github)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.PasswordHash, u.Role, u.IsActive, u.Bio, u.Avatar,
		u.Website, u.Twitter, u.LinkedIn, u.GitHub,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return classify("create user", err)
}

// Update saves the profile, role and activation fields of u.
func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	err := s.db.QueryRowContext(ctx, `
		UPDATE users SET name = $1, email = $2, role = $3, is_active = $4, bio = $5,
		       avatar = $6, website = $7, twitter = $8, linkedin = $9, github = $10,
		       updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at
	`, u.Name, u.Email, u.Role, u.IsActive, u.Bio, u.Avatar,
		u.Website, u.Twitter, u.LinkedIn, u.GitHub, u.ID,
	).Scan(&u.UpdatedAt)
	return classify("update user", err)
}

// SetPassword replaces the user's password hash.
func (s *UserStore) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return classify("hash password", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, string(hash), id)
	return classify("set password", err)
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// TouchLogin records a successful sign-in.
func (s *UserStore) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	return classify("touch login", err)
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
func (s *UserStore) SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = $1, updated_at = NOW() WHERE id = $2`, secret, id)
	return classify("set totp secret", err)
}

// EnableTOTP marks 2FA as active for a user (after successful code verification).
func (s *UserStore) EnableTOTP(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return classify("enable totp", err)
}

// ResetTOTP clears the TOTP secret and disables 2FA for a user.
func (s *UserStore) ResetTOTP(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = NULL, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return classify("reset totp", err)
}

// Delete removes a user by ID. The schema refuses the delete while the user
// still authors articles; that surfaces as a conflict.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return classify("delete user", err)
}

// Counts returns the number of users and how many joined since the given time.
func (s *UserStore) Counts(ctx context.Context, since time.Time) (total, recent int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1) FROM users
	`, since).Scan(&total, &recent)
	return total, recent, classify("count users", err)
}

// Recent returns the newest accounts.
func (s *UserStore) Recent(ctx context.Context, limit int) ([]models.User, error) {
	users, _, err := s.List(ctx, 1, limit)
	return users, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
