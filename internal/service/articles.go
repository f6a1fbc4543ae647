// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
	"inkwell/internal/slug"
	"inkwell/internal/validate"
)

// ArticleRepository is the persistence the article service needs.
type ArticleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, a *models.Article) error
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f models.ArticleFilter) ([]models.Article, int, error)
}

// CategoryFinder resolves a category id.
type CategoryFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// TagFinder resolves tag ids.
type TagFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error)
}

// ArticleCache drops cached renderings of an article.
type ArticleCache interface {
	InvalidateArticle(ctx context.Context, id uuid.UUID)
}

// ArticleInput is the editable part of an article. An empty Status keeps
// the current status (draft for new articles).
type ArticleInput struct {
	Title         string
	Content       string
	Excerpt       string
	FeaturedImage string
	ImageCaption  string
	Status        models.ArticleStatus
	IsFeatured    bool
	CategoryID    *uuid.UUID
	TagIDs        []uuid.UUID
}

// ArticleService owns the article lifecycle.
type ArticleService struct {
	articles   ArticleRepository
	categories CategoryFinder
	tags       TagFinder
	cache      ArticleCache
	activity   ActivityRecorder
	now        clock
}

// NewArticleService wires the article service. cache and activity may be nil.
func NewArticleService(articles ArticleRepository, categories CategoryFinder, tags TagFinder, cache ArticleCache, activity ActivityRecorder) *ArticleService {
	if activity == nil {
		activity = nopRecorder{}
	}
	return &ArticleService{
		articles:   articles,
		categories: categories,
		tags:       tags,
		cache:      cache,
		activity:   activity,
	}
}

func canEditArticle(u *models.User, a *models.Article) bool {
	if u.Can(roles.CanEditAnyArticle) {
		return true
	}
	return u.Is(a.AuthorID) && u.Can(roles.CanEditOwnArticles)
}

func canDeleteArticle(u *models.User, a *models.Article) bool {
	if u.Can(roles.CanDeleteAnyArticle) {
		return true
	}
	return u.Is(a.AuthorID) && u.Can(roles.CanDeleteOwnArticles)
}

// canSeeDraft reports whether u may read an unpublished article.
func canSeeDraft(u *models.User, a *models.Article) bool {
	return u.Is(a.AuthorID) || u.Can(roles.CanEditAnyArticle)
}

func (in *ArticleInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.FeaturedImage = strings.TrimSpace(in.FeaturedImage)
	in.ImageCaption = strings.TrimSpace(in.ImageCaption)
}

func (in ArticleInput) validate() *apperr.ValidationError {
	ve := &apperr.ValidationError{}
	if msg := validate.Title(in.Title); msg != "" {
		ve.Add("title", msg)
	}
	if msg := validate.Content(in.Content); msg != "" {
		ve.Add("content", msg)
	}
	if msg := validate.Excerpt(in.Excerpt); msg != "" {
		ve.Add("excerpt", msg)
	}
	if in.FeaturedImage != "" && !strings.HasPrefix(in.FeaturedImage, "/") {
		if msg := validate.URL(in.FeaturedImage); msg != "" {
			ve.Add("featured_image", msg)
		}
	}
	if msg := validate.MaxLen("Image caption", in.ImageCaption, validate.MaxCaptionLen); msg != "" {
		ve.Add("image_caption", msg)
	}
	if in.Status != "" && !in.Status.Valid() {
		ve.Add("status", "Status must be draft or published.")
	}
	return ve
}

// resolveRefs checks the category and loads the tags named by in.
func (s *ArticleService) resolveRefs(ctx context.Context, in ArticleInput, ve *apperr.ValidationError) ([]models.Tag, error) {
	if in.CategoryID != nil {
		c, err := s.categories.FindByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			ve.Add("category_id", "Unknown category.")
		}
	}

	ids := dedupeIDs(in.TagIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	tags, err := s.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		ve.Add("tags", "One or more tags do not exist.")
	}
	return tags, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Create adds an article authored by actor. Articles start as drafts
// unless Status asks for published.
func (s *ArticleService) Create(ctx context.Context, actor *models.User, in ArticleInput) (*models.Article, error) {
	if err := require(actor, roles.CanCreateArticles); err != nil {
		return nil, err
	}
	if in.Status == models.ArticlePublished && !actor.Can(roles.CanPublishArticles) {
		return nil, apperr.Denied("you may not publish articles")
	}
	if in.IsFeatured && !actor.Can(roles.CanFeatureArticles) {
		return nil, apperr.Denied("you may not feature articles")
	}

	in.normalize()
	ve := in.validate()
	tags, err := s.resolveRefs(ctx, in, ve)
	if err != nil {
		return nil, err
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	now := s.now.now()
	base := slug.Generate(in.Title)
	if base == "" {
		base = "article-" + uuid.NewString()[:8]
	}
	sl, err := slug.Unique(ctx, base, now, s.articles.SlugExists)
	if err != nil {
		return nil, err
	}

	a := &models.Article{
		Title:         in.Title,
		Slug:          sl,
		Excerpt:       in.Excerpt,
		FeaturedImage: in.FeaturedImage,
		ImageCaption:  in.ImageCaption,
		IsFeatured:    in.IsFeatured,
		AuthorID:      actor.ID,
		CategoryID:    in.CategoryID,
		Tags:          tags,
	}
	a.SetContent(in.Content)
	if err := a.TransitionTo(in.Status, now); err != nil {
		return nil, err
	}

	if err := s.articles.Create(ctx, a); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "create", "article", a.ID, a.Title)
	return a, nil
}

// Update replaces the editable fields. The slug never changes; publishing
// stamps PublishedAt only the first time.
func (s *ArticleService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in ArticleInput) (*models.Article, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("article")
	}
	if !canEditArticle(actor, a) {
		return nil, apperr.Denied("you may not edit this article")
	}
	if in.Status == models.ArticlePublished && a.IsDraft() && !actor.Can(roles.CanPublishArticles) {
		return nil, apperr.Denied("you may not publish articles")
	}
	if !actor.Can(roles.CanFeatureArticles) {
		if in.IsFeatured && !a.IsFeatured {
			return nil, apperr.Denied("you may not feature articles")
		}
		// The featured toggle is hidden from these users; keep what is stored.
		in.IsFeatured = a.IsFeatured
	}

	in.normalize()
	ve := in.validate()
	tags, err := s.resolveRefs(ctx, in, ve)
	if err != nil {
		return nil, err
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	if err := a.TransitionTo(in.Status, s.now.now()); err != nil {
		return nil, err
	}
	a.Title = in.Title
	a.Excerpt = in.Excerpt
	a.FeaturedImage = in.FeaturedImage
	a.ImageCaption = in.ImageCaption
	a.IsFeatured = in.IsFeatured
	a.CategoryID = in.CategoryID
	a.Tags = tags
	a.SetContent(in.Content)

	if err := s.articles.Update(ctx, a); err != nil {
		return nil, err
	}
	s.invalidate(ctx, a.ID)
	record(ctx, s.activity, actor, "update", "article", a.ID, a.Title)
	return a, nil
}

// Publish moves a draft to published. Publishing an article that is
// already published is a validation error.
func (s *ArticleService) Publish(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Article, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("article")
	}
	if !canEditArticle(actor, a) || !actor.Can(roles.CanPublishArticles) {
		return nil, apperr.Denied("you may not publish this article")
	}
	if a.IsPublished() {
		return nil, apperr.Invalid("status", "This article is already published.")
	}
	if err := a.TransitionTo(models.ArticlePublished, s.now.now()); err != nil {
		return nil, err
	}
	if err := s.articles.Update(ctx, a); err != nil {
		return nil, err
	}
	s.invalidate(ctx, a.ID)
	record(ctx, s.activity, actor, "publish", "article", a.ID, a.Title)
	return a, nil
}

// Delete removes an article with its comments.
func (s *ArticleService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return apperr.NotFound("article")
	}
	if !canDeleteArticle(actor, a) {
		return apperr.Denied("you may not delete this article")
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	record(ctx, s.activity, actor, "delete", "article", a.ID, a.Title)
	return nil
}

func (s *ArticleService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, id)
	}
}

// Get loads an article for editing.
func (s *ArticleService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Article, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("article")
	}
	if !canEditArticle(actor, a) {
		return nil, apperr.Denied("you may not edit this article")
	}
	return a, nil
}

// View returns the article at slug for reading and counts the view.
// Drafts are reported as missing to everyone but their author and editors.
func (s *ArticleService) View(ctx context.Context, viewer *models.User, slug string) (*models.Article, error) {
	a, err := s.Lookup(ctx, viewer, slug)
	if err != nil {
		return nil, err
	}
	if a.IsPublished() {
		if err := s.articles.IncrementViews(ctx, a.ID); err != nil {
			slog.Warn("failed to count article view", "article_id", a.ID, "error", err)
		} else {
			a.Views++
		}
	}
	return a, nil
}

// Lookup returns the article at slug if viewer may see it, without
// counting a view.
func (s *ArticleService) Lookup(ctx context.Context, viewer *models.User, slug string) (*models.Article, error) {
	a, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a == nil || (!a.IsPublished() && !canSeeDraft(viewer, a)) {
		return nil, apperr.NotFound("article")
	}
	return a, nil
}

// ListPublished returns one page of published articles.
func (s *ArticleService) ListPublished(ctx context.Context, f models.ArticleFilter) (models.Page[models.Article], error) {
	f.Status = models.ArticlePublished
	return s.list(ctx, f)
}

// ListManaged returns the articles actor may edit: all of them for
// editors, otherwise only their own. Status may be empty for "any".
func (s *ArticleService) ListManaged(ctx context.Context, actor *models.User, f models.ArticleFilter) (models.Page[models.Article], error) {
	if err := requireUser(actor); err != nil {
		return models.Page[models.Article]{}, err
	}
	switch {
	case actor.Can(roles.CanEditAnyArticle):
	case actor.Can(roles.CanCreateArticles):
		id := actor.ID
		f.AuthorID = &id
	default:
		return models.Page[models.Article]{}, apperr.ErrPermissionDenied
	}
	if f.Status != "" && !f.Status.Valid() {
		return models.Page[models.Article]{}, apperr.Invalid("status", "Status must be draft or published.")
	}
	return s.list(ctx, f)
}

func (s *ArticleService) list(ctx context.Context, f models.ArticleFilter) (models.Page[models.Article], error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 50 {
		f.PerPage = 50
	}
	items, total, err := s.articles.List(ctx, f)
	if err != nil {
		return models.Page[models.Article]{}, err
	}
	return models.Page[models.Article]{Items: items, Page: f.Page, PerPage: f.PerPage, Total: total}, nil
}
