// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reader's response to an article. Replies point at a
// top-level comment of the same article through ParentID.
type Comment struct {
	ID         uuid.UUID  `json:"id"`
	Content    string     `json:"content"`
	IsApproved bool       `json:"is_approved"`
	UserID     uuid.UUID  `json:"user_id"`
	ArticleID  uuid.UUID  `json:"article_id"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Joined fields.
	AuthorName   string `json:"author_name,omitempty"`
	AuthorAvatar string `json:"author_avatar,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`
	ArticleSlug  string `json:"article_slug,omitempty"`

	// Replies is filled for top-level comments when a thread is loaded.
	Replies []Comment `json:"replies,omitempty"`
}

// IsReply returns true if the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// CommentFilter selects comments for moderation listings.
type CommentFilter struct {
	ArticleID *uuid.UUID
	AuthorOf  *uuid.UUID // comments on articles written by this user
	Approved  *bool
	Page      int
	PerPage   int
}
