// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CommentStore handles comment persistence. Threading is assembled by the
// caller from the flat, creation-ordered lists returned here.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentSelect = `
	SELECT cm.id, cm.content, cm.is_approved, cm.user_id, cm.article_id, cm.parent_id,
	       cm.created_at, cm.updated_at, u.name, u.avatar, a.title, a.slug
	FROM comments cm
	JOIN users u ON u.id = cm.user_id
	JOIN articles a ON a.id = cm.article_id`

func scanComment(row scanner) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(
		&c.ID, &c.Content, &c.IsApproved, &c.UserID, &c.ArticleID, &c.ParentID,
		&c.CreatedAt, &c.UpdatedAt, &c.AuthorName, &c.AuthorAvatar, &c.ArticleTitle, &c.ArticleSlug,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByID returns a comment. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find comment", err)
	}
	return c, nil
}

// Create inserts a comment.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (content, is_approved, user_id, article_id, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, c.Content, c.IsApproved, c.UserID, c.ArticleID, c.ParentID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return classify("create comment", err)
}

// UpdateContent replaces a comment's text.
func (s *CommentStore) UpdateContent(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowContext(ctx,
		`UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`,
		c.Content, c.ID,
	).Scan(&c.UpdatedAt)
	return classify("update comment", err)
}

// SetApproval approves or unapproves a comment.
func (s *CommentStore) SetApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE comments SET is_approved = $1, updated_at = NOW() WHERE id = $2`, approved, id)
	return classify("set comment approval", err)
}

// Delete removes a comment and its replies.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return classify("delete comment", err)
}

// ListByArticle returns every comment of an article in creation order,
// optionally including unapproved ones.
func (s *CommentStore) ListByArticle(ctx context.Context, articleID uuid.UUID, includeUnapproved bool) ([]models.Comment, error) {
	query := commentSelect + ` WHERE cm.article_id = $1`
	if !includeUnapproved {
		query += ` AND cm.is_approved`
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY cm.created_at, cm.id`, articleID)
	if err != nil {
		return nil, classify("list article comments", err)
	}
	defer rows.Close()
	return collectComments(rows)
}

// List returns one page of comments matching f, newest first, and the total.
func (s *CommentStore) List(ctx context.Context, f models.CommentFilter) ([]models.Comment, int, error) {
	page, perPage := clampPage(f.Page, f.PerPage, 100)

	var conds []string
	var args []any
	if f.ArticleID != nil {
		args = append(args, *f.ArticleID)
		conds = append(conds, fmt.Sprintf("cm.article_id = $%d", len(args)))
	}
	if f.AuthorOf != nil {
		args = append(args, *f.AuthorOf)
		conds = append(conds, fmt.Sprintf("a.author_id = $%d", len(args)))
	}
	if f.Approved != nil {
		args = append(args, *f.Approved)
		conds = append(conds, fmt.Sprintf("cm.is_approved = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM comments cm JOIN articles a ON a.id = cm.article_id` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, classify("count comments", err)
	}

	args = append(args, perPage, (page-1)*perPage)
	query := commentSelect + where + fmt.Sprintf(
		` ORDER BY cm.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classify("list comments", err)
	}
	defer rows.Close()

	items, err := collectComments(rows)
	return items, total, err
}

func collectComments(rows *sql.Rows) ([]models.Comment, error) {
	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, classify("scan comment", err)
		}
		items = append(items, *c)
	}
	return items, classify("list comments", rows.Err())
}

// Counts fills the comment figures of the admin dashboard.
func (s *CommentStore) Counts(ctx context.Context, st *models.DashboardStats) error {
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_approved) FROM comments
	`).Scan(&st.Comments, &st.Pending)
	return classify("count comments", err)
}
