// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
)

func TestTransitionDraftToPublishedStampsOnce(t *testing.T) {
	first := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	a := &Article{Status: ArticleDraft}
	if err := a.TransitionTo(ArticlePublished, first); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if a.PublishedAt == nil || !a.PublishedAt.Equal(first) {
		t.Fatalf("PublishedAt = %v, want %v", a.PublishedAt, first)
	}

	// Editing a published article keeps the original timestamp.
	if err := a.TransitionTo(ArticlePublished, later); err != nil {
		t.Fatalf("re-publish: %v", err)
	}
	if !a.PublishedAt.Equal(first) {
		t.Errorf("PublishedAt moved to %v", a.PublishedAt)
	}
	if err := a.TransitionTo("", later); err != nil || !a.PublishedAt.Equal(first) {
		t.Errorf("keep status: err=%v published_at=%v", err, a.PublishedAt)
	}
}

func TestTransitionKeepsExistingTimestamp(t *testing.T) {
	stamp := time.Date(2025, 12, 24, 8, 0, 0, 0, time.UTC)
	a := &Article{Status: ArticleDraft, PublishedAt: &stamp}
	if err := a.TransitionTo(ArticlePublished, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !a.PublishedAt.Equal(stamp) {
		t.Errorf("PublishedAt reset to %v", a.PublishedAt)
	}
}

func TestTransitionPublishedToDraftRejected(t *testing.T) {
	a := &Article{Status: ArticlePublished}
	err := a.TransitionTo(ArticleDraft, time.Now())
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || !ve.Has("status") {
		t.Fatalf("err = %v, want status validation error", err)
	}
	if a.Status != ArticlePublished {
		t.Errorf("status changed to %q", a.Status)
	}
}

func TestTransitionDefaultsAndInvalid(t *testing.T) {
	a := &Article{}
	if err := a.TransitionTo("", time.Now()); err != nil || a.Status != ArticleDraft {
		t.Errorf("new article: status=%q err=%v", a.Status, err)
	}
	if a.PublishedAt != nil {
		t.Error("draft got a publication time")
	}
	if err := a.TransitionTo("archived", time.Now()); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestSetContentRecomputesReadTime(t *testing.T) {
	a := &Article{}
	a.SetContent(strings.Repeat("word ", 450))
	if a.ReadTime != 2 {
		t.Errorf("ReadTime = %d, want 2", a.ReadTime)
	}
	a.SetContent("tiny")
	if a.ReadTime != 1 {
		t.Errorf("ReadTime = %d, want 1", a.ReadTime)
	}
}

func TestSummary(t *testing.T) {
	a := &Article{Content: "<p>Body text</p>"}
	if got := a.Summary(); got != "Body text" {
		t.Errorf("Summary() = %q", got)
	}
	a.Excerpt = "Custom"
	if got := a.Summary(); got != "Custom" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestArticleTags(t *testing.T) {
	go1, go2 := uuid.New(), uuid.New()
	a := &Article{Tags: []Tag{{ID: go1}, {ID: go2}}}
	if ids := a.TagIDs(); len(ids) != 2 || ids[0] != go1 {
		t.Errorf("TagIDs() = %v", ids)
	}
	if !a.HasTag(go2) || a.HasTag(uuid.New()) {
		t.Error("HasTag() mismatch")
	}
}

func TestArticleFilterOffset(t *testing.T) {
	tests := []struct {
		page, perPage, want int
	}{
		{0, 10, 0},
		{1, 10, 0},
		{3, 10, 20},
		{2, 25, 25},
	}
	for _, tt := range tests {
		f := ArticleFilter{Page: tt.page, PerPage: tt.perPage}
		if got := f.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, per=%d) = %d, want %d", tt.page, tt.perPage, got, tt.want)
		}
	}
}
