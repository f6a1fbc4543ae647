// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

func newCategoryService() (*CategoryService, *memCategories, *memArticles) {
	cats := newMemCategories()
	articles := newMemArticles()
	svc := NewCategoryService(cats, articles, &memActivity{})
	svc.now = fixedClock
	return svc, cats, articles
}

func TestCategoryCreate(t *testing.T) {
	svc, cats, _ := newCategoryService()
	ctx := context.Background()
	admin := newUser(roles.Admin)

	c, err := svc.Create(ctx, admin, "  Go Programming ", "All things Go")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Name != "Go Programming" || c.Slug != "go-programming" {
		t.Errorf("category = %+v", c)
	}

	// A different name that slugs the same gets a timestamped slug.
	dup, err := svc.Create(ctx, admin, "Go-Programming", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dup.Slug != "go-programming-20260504123045" {
		t.Errorf("slug = %q", dup.Slug)
	}

	_, err = svc.Create(ctx, admin, "Go Programming", "")
	assertKind(t, err, apperr.ErrConflict)

	_, err = svc.Create(ctx, admin, "", strings.Repeat("d", 501))
	assertField(t, err, "name")
	assertField(t, err, "description")

	_, err = svc.Create(ctx, newUser(roles.Contributor), "Nope", "")
	assertKind(t, err, apperr.ErrPermissionDenied)

	if len(cats.byID) != 2 {
		t.Errorf("stored %d categories, want 2", len(cats.byID))
	}
}

func TestCategoryUpdateKeepsSlug(t *testing.T) {
	svc, cats, _ := newCategoryService()
	c := cats.add("Old", "old")

	updated, err := svc.Update(context.Background(), newUser(roles.Admin), c.ID, "New Name", "desc")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "old" || updated.Name != "New Name" {
		t.Errorf("category = %+v", updated)
	}

	_, err = svc.Update(context.Background(), newUser(roles.Admin), uuid.New(), "Whatever", "")
	assertKind(t, err, apperr.ErrNotFound)
}

func TestCategoryDeleteInUse(t *testing.T) {
	svc, cats, articles := newCategoryService()
	ctx := context.Background()
	admin := newUser(roles.Admin)

	used := cats.add("Used", "used")
	free := cats.add("Free", "free")
	articles.put(&models.Article{Title: "Filed", Slug: "filed", CategoryID: &used.ID})

	err := svc.Delete(ctx, admin, used.ID)
	assertKind(t, err, apperr.ErrConflict)
	if !strings.Contains(err.Error(), "1 article") {
		t.Errorf("error = %v", err)
	}
	if _, ok := cats.byID[used.ID]; !ok {
		t.Error("used category must survive")
	}

	if err := svc.Delete(ctx, admin, free.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := cats.byID[free.ID]; ok {
		t.Error("free category should be gone")
	}

	err = svc.Delete(ctx, admin, free.ID)
	assertKind(t, err, apperr.ErrNotFound)
}

func TestCategoryBySlug(t *testing.T) {
	svc, cats, _ := newCategoryService()
	cats.add("Design", "design")

	c, err := svc.BySlug(context.Background(), "design")
	if err != nil || c.Name != "Design" {
		t.Fatalf("BySlug = %+v, %v", c, err)
	}
	_, err = svc.BySlug(context.Background(), "missing")
	assertKind(t, err, apperr.ErrNotFound)
}

func TestTagLifecycle(t *testing.T) {
	tags := newMemTags()
	activity := &memActivity{}
	svc := NewTagService(tags, activity)
	svc.now = fixedClock
	ctx := context.Background()
	admin := newUser(roles.Admin)

	tag, err := svc.Create(ctx, admin, "Web Dev")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tag.Slug != "web-dev" {
		t.Errorf("slug = %q", tag.Slug)
	}

	odd, err := svc.Create(ctx, admin, "日本語")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(odd.Slug, "tag-") {
		t.Errorf("fallback slug = %q", odd.Slug)
	}

	_, err = svc.Create(ctx, admin, "   ")
	assertField(t, err, "name")

	_, err = svc.Create(ctx, newUser(roles.Viewer), "Nope")
	assertKind(t, err, apperr.ErrPermissionDenied)

	if err := svc.Delete(ctx, admin, tag.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = svc.Delete(ctx, admin, tag.ID)
	assertKind(t, err, apperr.ErrNotFound)

	if got := activity.last(); got.Action != "delete" || got.EntityType != "tag" {
		t.Errorf("activity = %+v", got)
	}
}
