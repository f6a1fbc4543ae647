// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
	"inkwell/internal/validate"
)

// CommentRepository is the persistence the comment service needs.
type CommentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	UpdateContent(ctx context.Context, c *models.Comment) error
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByArticle(ctx context.Context, articleID uuid.UUID, includeUnapproved bool) ([]models.Comment, error)
	List(ctx context.Context, f models.CommentFilter) ([]models.Comment, int, error)
}

// ArticleFinder resolves an article id.
type ArticleFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
}

// CommentInput is a new comment or reply.
type CommentInput struct {
	ArticleID uuid.UUID
	ParentID  *uuid.UUID
	Content   string
}

// CommentService handles discussion threads and moderation.
type CommentService struct {
	comments CommentRepository
	articles ArticleFinder
	activity ActivityRecorder
}

// NewCommentService wires the comment service. activity may be nil.
func NewCommentService(comments CommentRepository, articles ArticleFinder, activity ActivityRecorder) *CommentService {
	if activity == nil {
		activity = nopRecorder{}
	}
	return &CommentService{comments: comments, articles: articles, activity: activity}
}

// Create posts a comment on a published article. settings is the snapshot
// taken for the current request: it decides whether comments are allowed
// and whether the new comment needs approval.
//
// A reply to a reply is attached to the root comment of its thread.
func (s *CommentService) Create(ctx context.Context, actor *models.User, settings models.SiteSettings, in CommentInput) (*models.Comment, error) {
	if err := require(actor, roles.CanComment); err != nil {
		return nil, err
	}
	if !settings.CommentsEnabled() {
		return nil, apperr.Denied("comments are disabled")
	}

	in.Content = strings.TrimSpace(in.Content)
	if msg := validate.Comment(in.Content); msg != "" {
		return nil, apperr.Invalid("content", msg)
	}

	a, err := s.articles.FindByID(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.IsPublished() {
		return nil, apperr.NotFound("article")
	}

	parentID := in.ParentID
	if parentID != nil {
		parent, err := s.comments.FindByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.ArticleID != a.ID {
			return nil, apperr.Invalid("parent_id", "The comment you are replying to does not belong to this article.")
		}
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	c := &models.Comment{
		Content:    in.Content,
		IsApproved: !settings.CommentsModerated(),
		UserID:     actor.ID,
		ArticleID:  a.ID,
		ParentID:   parentID,
		AuthorName: actor.Name,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) load(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("comment")
	}
	return c, nil
}

// Update replaces the text of a comment. Authors may edit their own
// comments; admins may edit any.
func (s *CommentService) Update(ctx context.Context, actor *models.User, id uuid.UUID, content string) (*models.Comment, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Is(c.UserID) && actor.Can(roles.CanEditOwnComments)) {
		return nil, apperr.Denied("you may not edit this comment")
	}

	content = strings.TrimSpace(content)
	if msg := validate.Comment(content); msg != "" {
		return nil, apperr.Invalid("content", msg)
	}
	c.Content = content
	if err := s.comments.UpdateContent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a comment and its replies.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Comment, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	own := actor.Is(c.UserID) && actor.Can(roles.CanDeleteOwnComments)
	if !own && !actor.Can(roles.CanDeleteAnyComment) {
		return nil, apperr.Denied("you may not delete this comment")
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return nil, err
	}
	if !own {
		record(ctx, s.activity, actor, "delete", "comment", c.ID, truncateDesc(c.Content))
	}
	return c, nil
}

// SetApproval approves or hides a comment. It works regardless of whether
// moderation is currently switched on.
func (s *CommentService) SetApproval(ctx context.Context, actor *models.User, id uuid.UUID, approved bool) (*models.Comment, error) {
	if err := require(actor, roles.CanModerateComments); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.comments.SetApproval(ctx, id, approved); err != nil {
		return nil, err
	}
	c.IsApproved = approved
	action := "approve"
	if !approved {
		action = "unapprove"
	}
	record(ctx, s.activity, actor, action, "comment", c.ID, truncateDesc(c.Content))
	return c, nil
}

// Thread returns the top-level comments of an article with their replies
// attached. Unapproved comments are shown to moderators and to their own
// author only.
func (s *CommentService) Thread(ctx context.Context, viewer *models.User, articleID uuid.UUID) ([]models.Comment, error) {
	all, err := s.comments.ListByArticle(ctx, articleID, viewer != nil)
	if err != nil {
		return nil, err
	}
	moderator := viewer.Can(roles.CanModerateComments)

	var roots []models.Comment
	index := make(map[uuid.UUID]int)
	var replies []models.Comment
	for _, c := range all {
		if !c.IsApproved && !moderator && !viewer.Is(c.UserID) {
			continue
		}
		if c.ParentID == nil {
			index[c.ID] = len(roots)
			roots = append(roots, c)
			continue
		}
		replies = append(replies, c)
	}
	for _, r := range replies {
		if i, ok := index[*r.ParentID]; ok {
			roots[i].Replies = append(roots[i].Replies, r)
		}
	}
	return roots, nil
}

// List returns comments for the moderation screens. Moderators see every
// comment; contributors see comments on their own articles.
func (s *CommentService) List(ctx context.Context, actor *models.User, f models.CommentFilter) (models.Page[models.Comment], error) {
	if err := requireUser(actor); err != nil {
		return models.Page[models.Comment]{}, err
	}
	switch {
	case actor.Can(roles.CanModerateComments):
	case actor.Can(roles.CanCreateArticles):
		id := actor.ID
		f.AuthorOf = &id
	default:
		return models.Page[models.Comment]{}, apperr.ErrPermissionDenied
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	items, total, err := s.comments.List(ctx, f)
	if err != nil {
		return models.Page[models.Comment]{}, err
	}
	return models.Page[models.Comment]{Items: items, Page: f.Page, PerPage: f.PerPage, Total: total}, nil
}

func truncateDesc(s string) string {
	const limit = 80
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
