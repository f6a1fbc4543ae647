// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/derive"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	return s == ArticleDraft || s == ArticlePublished
}

// Article is a blog post. Slug is assigned once at creation and never
// changes; PublishedAt is set on the first transition to published and
// never reset.
type Article struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Content       string        `json:"content"`
	Excerpt       string        `json:"excerpt"` // Hand-written summary; may be empty
	FeaturedImage string        `json:"featured_image"`
	ImageCaption  string        `json:"image_caption"`
	Status        ArticleStatus `json:"status"`
	IsFeatured    bool          `json:"is_featured"`
	Views         int           `json:"views"`
	ReadTime      int           `json:"read_time"`
	PublishedAt   *time.Time    `json:"published_at,omitempty"`
	AuthorID      uuid.UUID     `json:"author_id"`
	CategoryID    *uuid.UUID    `json:"category_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Populated by joins, not stored on the articles row.
	AuthorName   string `json:"author_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	CategorySlug string `json:"category_slug,omitempty"`
	CommentCount int    `json:"comment_count"`
	Tags         []Tag  `json:"tags"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticlePublished
}

// IsDraft returns true if the article is in draft status.
func (a *Article) IsDraft() bool {
	return a.Status == ArticleDraft
}

// SetContent replaces the body and recomputes the read time. Every write
// of Content goes through here so ReadTime never goes stale.
func (a *Article) SetContent(content string) {
	a.Content = content
	a.ReadTime = derive.ReadTime(content)
}

// Summary returns the hand-written excerpt, or one derived from the body.
func (a *Article) Summary() string {
	return derive.Excerpt(a.Excerpt, a.Content)
}

// TransitionTo moves the article to status. An empty status keeps the
// current one. Published articles cannot go back to draft. PublishedAt is
// stamped only if it has never been set.
func (a *Article) TransitionTo(status ArticleStatus, now time.Time) error {
	if status == "" {
		status = a.Status
	}
	if status == "" {
		status = ArticleDraft
	}
	if !status.Valid() {
		return apperr.Invalid("status", "Status must be draft or published.")
	}
	if a.Status == ArticlePublished && status == ArticleDraft {
		return apperr.Invalid("status", "A published article cannot return to draft.")
	}
	if status == ArticlePublished && a.PublishedAt == nil {
		t := now.UTC()
		a.PublishedAt = &t
	}
	a.Status = status
	return nil
}

// TagIDs returns the ids of the attached tags.
func (a *Article) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(a.Tags))
	for i, t := range a.Tags {
		ids[i] = t.ID
	}
	return ids
}

// HasTag reports whether a tag with id is attached.
func (a *Article) HasTag(id uuid.UUID) bool {
	for _, t := range a.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// ArticleFilter narrows an article listing. Zero values mean "any", except
// Status which callers set explicitly.
type ArticleFilter struct {
	Status       ArticleStatus
	AuthorID     *uuid.UUID
	CategorySlug string
	TagSlug      string
	Search       string
	FeaturedOnly bool
	Page         int
	PerPage      int
}

// Offset returns the SQL offset for the filter's page.
func (f ArticleFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}
