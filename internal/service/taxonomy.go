// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
	"inkwell/internal/slug"
	"inkwell/internal/validate"
)

// CategoryRepository is the persistence the category service needs.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryUsage counts the articles filed under a category.
type CategoryUsage interface {
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

// TagRepository is the persistence the tag service needs.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, t *models.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryService manages article categories.
type CategoryService struct {
	categories CategoryRepository
	usage      CategoryUsage
	activity   ActivityRecorder
	now        clock
}

// NewCategoryService wires the category service. activity may be nil.
func NewCategoryService(categories CategoryRepository, usage CategoryUsage, activity ActivityRecorder) *CategoryService {
	if activity == nil {
		activity = nopRecorder{}
	}
	return &CategoryService{categories: categories, usage: usage, activity: activity}
}

// List returns every category with its article count.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// BySlug returns the category at slug.
func (s *CategoryService) BySlug(ctx context.Context, sl string) (*models.Category, error) {
	c, err := s.categories.FindBySlug(ctx, sl)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("category")
	}
	return c, nil
}

// Get returns the category with id.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("category")
	}
	return c, nil
}

func validateTerm(name, description string) error {
	ve := &apperr.ValidationError{}
	if msg := validate.TermName(name); msg != "" {
		ve.Add("name", msg)
	}
	if msg := validate.MaxLen("Description", description, validate.MaxDescLen); msg != "" {
		ve.Add("description", msg)
	}
	return ve.Err()
}

// termSlug derives a unique slug for a new category or tag name.
func termSlug(ctx context.Context, name, fallback string, now clock, exists slug.ExistsFunc) (string, error) {
	base := slug.Generate(name)
	if base == "" {
		base = fallback + "-" + uuid.NewString()[:8]
	}
	return slug.Unique(ctx, base, now.now(), exists)
}

// Create adds a category. Its slug is derived from the name once.
func (s *CategoryService) Create(ctx context.Context, actor *models.User, name, description string) (*models.Category, error) {
	if err := require(actor, roles.CanManageCategories); err != nil {
		return nil, err
	}
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if err := validateTerm(name, description); err != nil {
		return nil, err
	}
	sl, err := termSlug(ctx, name, "category", s.now, s.categories.SlugExists)
	if err != nil {
		return nil, err
	}
	c := &models.Category{Name: name, Slug: sl, Description: description}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "create", "category", c.ID, c.Name)
	return c, nil
}

// Update renames a category or changes its description. The slug stays.
func (s *CategoryService) Update(ctx context.Context, actor *models.User, id uuid.UUID, name, description string) (*models.Category, error) {
	if err := require(actor, roles.CanManageCategories); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if err := validateTerm(name, description); err != nil {
		return nil, err
	}
	c.Name, c.Description = name, description
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "update", "category", c.ID, c.Name)
	return c, nil
}

// Delete removes a category that no article uses.
func (s *CategoryService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := require(actor, roles.CanManageCategories); err != nil {
		return err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.usage.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict(fmt.Sprintf("category %q is used by %d article(s)", c.Name, n))
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, s.activity, actor, "delete", "category", c.ID, c.Name)
	return nil
}

// TagService manages article tags.
type TagService struct {
	tags     TagRepository
	activity ActivityRecorder
	now      clock
}

// NewTagService wires the tag service. activity may be nil.
func NewTagService(tags TagRepository, activity ActivityRecorder) *TagService {
	if activity == nil {
		activity = nopRecorder{}
	}
	return &TagService{tags: tags, activity: activity}
}

// List returns every tag with its article count.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

// Create adds a tag. Its slug is derived from the name once.
func (s *TagService) Create(ctx context.Context, actor *models.User, name string) (*models.Tag, error) {
	if err := require(actor, roles.CanManageTags); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if msg := validate.TermName(name); msg != "" {
		return nil, apperr.Invalid("name", msg)
	}
	sl, err := termSlug(ctx, name, "tag", s.now, s.tags.SlugExists)
	if err != nil {
		return nil, err
	}
	t := &models.Tag{Name: name, Slug: sl}
	if err := s.tags.Create(ctx, t); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "create", "tag", t.ID, t.Name)
	return t, nil
}

// Delete removes a tag and its article links.
func (s *TagService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := require(actor, roles.CanManageTags); err != nil {
		return err
	}
	t, err := s.tags.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return apperr.NotFound("tag")
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, s.activity, actor, "delete", "tag", t.ID, t.Name)
	return nil
}
