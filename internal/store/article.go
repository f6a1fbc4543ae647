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

// ArticleStore handles all article-related database operations. Writes that
// touch both the article row and its tag links run in one transaction.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleSelect = `
	SELECT a.id, a.title, a.slug, a.content, a.excerpt, a.featured_image, a.image_caption,
	       a.status, a.is_featured, a.views, a.read_time, a.published_at,
	       a.author_id, a.category_id, a.created_at, a.updated_at,
	       u.name, COALESCE(c.name, ''), COALESCE(c.slug, ''),
	       (SELECT COUNT(*) FROM comments cm WHERE cm.article_id = a.id AND cm.is_approved)
	FROM articles a
	JOIN users u ON u.id = a.author_id
	LEFT JOIN categories c ON c.id = a.category_id`

func scanArticle(row scanner) (*models.Article, error) {
	a := &models.Article{}
	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Content, &a.Excerpt, &a.FeaturedImage, &a.ImageCaption,
		&a.Status, &a.IsFeatured, &a.Views, &a.ReadTime, &a.PublishedAt,
		&a.AuthorID, &a.CategoryID, &a.CreatedAt, &a.UpdatedAt,
		&a.AuthorName, &a.CategoryName, &a.CategorySlug, &a.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByID retrieves an article with its tags. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	return s.findOne(ctx, "find article by id", articleSelect+` WHERE a.id = $1`, id)
}

// FindBySlug retrieves an article of any status by slug. Visibility rules
// are applied by the caller. Returns nil if not found.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.findOne(ctx, "find article by slug", articleSelect+` WHERE a.slug = $1`, slug)
}

func (s *ArticleStore) findOne(ctx context.Context, op, query string, arg any) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx, query, arg))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}
	tags, err := s.loadTags(ctx, []uuid.UUID{a.ID})
	if err != nil {
		return nil, err
	}
	a.Tags = tags[a.ID]
	return a, nil
}

// SlugExists reports whether any article already uses slug.
func (s *ArticleStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	return exists, classify("check article slug", err)
}

// Create inserts the article and its tag links. The generated id and
// timestamps are written back into a.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin create article", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, content, excerpt, featured_image, image_caption,
		                      status, is_featured, read_time, published_at, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, views, created_at, updated_at
	`, a.Title, a.Slug, a.Content, a.Excerpt, a.FeaturedImage, a.ImageCaption,
		a.Status, a.IsFeatured, a.ReadTime, a.PublishedAt, a.AuthorID, a.CategoryID,
	).Scan(&a.ID, &a.Views, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return classify("create article", err)
	}

	if err := replaceTags(ctx, tx, a.ID, a.TagIDs()); err != nil {
		return err
	}
	return classify("commit create article", tx.Commit())
}

// Update saves every editable column and replaces the tag links. Slug and
// views are never written here.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin update article", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE articles SET title = $1, content = $2, excerpt = $3, featured_image = $4,
		       image_caption = $5, status = $6, is_featured = $7, read_time = $8,
		       published_at = $9, category_id = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at
	`, a.Title, a.Content, a.Excerpt, a.FeaturedImage, a.ImageCaption,
		a.Status, a.IsFeatured, a.ReadTime, a.PublishedAt, a.CategoryID, a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return classify("update article", err)
	}

	if err := replaceTags(ctx, tx, a.ID, a.TagIDs()); err != nil {
		return err
	}
	return classify("commit update article", tx.Commit())
}

func replaceTags(ctx context.Context, tx *sql.Tx, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return classify("clear article tags", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			articleID, tagID,
		); err != nil {
			return classify("link article tag", err)
		}
	}
	return nil
}

// Delete removes an article. Comments and tag links cascade.
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	return classify("delete article", err)
}

// IncrementViews adds one to the article's view counter.
func (s *ArticleStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE articles SET views = views + 1 WHERE id = $1`, id)
	return classify("increment views", err)
}

// buildArticleWhere turns a filter into a WHERE clause and its arguments.
func buildArticleWhere(f models.ArticleFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("a.status = $%d", f.Status)
	}
	if f.AuthorID != nil {
		add("a.author_id = $%d", *f.AuthorID)
	}
	if f.CategorySlug != "" {
		add("c.slug = $%d", f.CategorySlug)
	}
	if f.TagSlug != "" {
		add(`EXISTS (SELECT 1 FROM article_tags at JOIN tags t ON t.id = at.tag_id
		             WHERE at.article_id = a.id AND t.slug = $%d)`, f.TagSlug)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		add("(a.title ILIKE $%[1]d OR a.content ILIKE $%[1]d OR a.excerpt ILIKE $%[1]d)", "%"+escapeLike(q)+"%")
	}
	if f.FeaturedOnly {
		conds = append(conds, "a.is_featured")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// List returns one page of articles matching f, newest publication first
// (drafts by last update), plus the total number of matches.
func (s *ArticleStore) List(ctx context.Context, f models.ArticleFilter) ([]models.Article, int, error) {
	f.Page, f.PerPage = clampPage(f.Page, f.PerPage, 50)
	where, args := buildArticleWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM articles a LEFT JOIN categories c ON c.id = a.category_id` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, classify("count articles", err)
	}

	args = append(args, f.PerPage, f.Offset())
	query := articleSelect + where + fmt.Sprintf(
		` ORDER BY COALESCE(a.published_at, a.updated_at) DESC, a.created_at DESC LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classify("list articles", err)
	}
	defer rows.Close()

	var items []models.Article
	var ids []uuid.UUID
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, classify("scan article", err)
		}
		items = append(items, *a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("list articles", err)
	}

	tags, err := s.loadTags(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].Tags = tags[items[i].ID]
	}
	return items, total, nil
}

// loadTags fetches the tags of several articles in one query.
func (s *ArticleStore) loadTags(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.Tag, error) {
	out := make(map[uuid.UUID][]models.Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT at.article_id, t.id, t.name, t.slug, t.created_at
		FROM article_tags at JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = ANY($1::uuid[])
		ORDER BY t.name
	`, uuidStrings(ids))
	if err != nil {
		return nil, classify("load article tags", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&articleID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, classify("scan article tag", err)
		}
		out[articleID] = append(out[articleID], t)
	}
	return out, classify("load article tags", rows.Err())
}

// CountByAuthor returns how many articles a user has written.
func (s *ArticleStore) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE author_id = $1`, authorID).Scan(&n)
	return n, classify("count articles by author", err)
}

// CountByCategory returns how many articles reference a category.
func (s *ArticleStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE category_id = $1`, categoryID).Scan(&n)
	return n, classify("count articles by category", err)
}

// Stats fills the article figures of the admin dashboard.
func (s *ArticleStore) Stats(ctx context.Context, st *models.DashboardStats) error {
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'published'),
		       COUNT(*) FILTER (WHERE status = 'draft'),
		       COALESCE(SUM(views), 0)
		FROM articles
	`).Scan(&st.Articles, &st.Published, &st.Drafts, &st.TotalViews)
	return classify("article stats", err)
}

// AuthorStats returns the figures of a contributor's dashboard.
func (s *ArticleStore) AuthorStats(ctx context.Context, authorID uuid.UUID) (models.AuthorStats, error) {
	var st models.AuthorStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'published'),
		       COUNT(*) FILTER (WHERE status = 'draft'),
		       COALESCE(SUM(views), 0),
		       (SELECT COUNT(*) FROM comments cm JOIN articles ar ON ar.id = cm.article_id
		        WHERE ar.author_id = $1)
		FROM articles WHERE author_id = $1
	`, authorID).Scan(&st.Articles, &st.Published, &st.Drafts, &st.TotalViews, &st.Comments)
	return st, classify("author stats", err)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
