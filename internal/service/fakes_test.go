// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/mail"
	"inkwell/internal/models"
	"inkwell/internal/roles"
)

var fixedNow = time.Date(2026, 5, 4, 12, 30, 45, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newUser(role roles.Role) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Name:     "Test " + string(role),
		Email:    string(role) + "-" + uuid.NewString()[:6] + "@example.com",
		Role:     role,
		IsActive: true,
	}
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if kind == nil {
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %T: %v", err, err)
		}
		return
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if !ve.Has(field) {
		t.Fatalf("expected message for %q, got %v", field, ve.Fields)
	}
}

// memArticles is an in-memory ArticleRepository.
type memArticles struct {
	byID    map[uuid.UUID]*models.Article
	updates int
	failErr error
}

func newMemArticles() *memArticles {
	return &memArticles{byID: map[uuid.UUID]*models.Article{}}
}

func (m *memArticles) put(a *models.Article) *models.Article {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.byID[a.ID] = &cp
	return a
}

func (m *memArticles) FindByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memArticles) FindBySlug(_ context.Context, slug string) (*models.Article, error) {
	for _, a := range m.byID {
		if a.Slug == slug {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memArticles) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, a := range m.byID {
		if a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memArticles) Create(_ context.Context, a *models.Article) error {
	if m.failErr != nil {
		return m.failErr
	}
	a.ID = uuid.New()
	a.CreatedAt, a.UpdatedAt = fixedNow, fixedNow
	m.put(a)
	return nil
}

func (m *memArticles) Update(_ context.Context, a *models.Article) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.updates++
	a.UpdatedAt = fixedNow
	m.put(a)
	return nil
}

func (m *memArticles) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

func (m *memArticles) IncrementViews(_ context.Context, id uuid.UUID) error {
	if a, ok := m.byID[id]; ok {
		a.Views++
	}
	return nil
}

func (m *memArticles) List(_ context.Context, f models.ArticleFilter) ([]models.Article, int, error) {
	var out []models.Article
	for _, a := range m.byID {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.AuthorID != nil && a.AuthorID != *f.AuthorID {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *memArticles) CountByCategory(_ context.Context, id uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.byID {
		if a.CategoryID != nil && *a.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (m *memArticles) CountByAuthor(_ context.Context, id uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.byID {
		if a.AuthorID == id {
			n++
		}
	}
	return n, nil
}

func (m *memArticles) Stats(_ context.Context, st *models.DashboardStats) error {
	for _, a := range m.byID {
		st.Articles++
		if a.IsPublished() {
			st.Published++
		} else {
			st.Drafts++
		}
		st.TotalViews += a.Views
	}
	return nil
}

func (m *memArticles) AuthorStats(_ context.Context, id uuid.UUID) (models.AuthorStats, error) {
	var st models.AuthorStats
	for _, a := range m.byID {
		if a.AuthorID != id {
			continue
		}
		st.Articles++
		if a.IsPublished() {
			st.Published++
		} else {
			st.Drafts++
		}
		st.TotalViews += a.Views
	}
	return st, nil
}

// memCategories is an in-memory CategoryRepository.
type memCategories struct {
	byID map[uuid.UUID]*models.Category
}

func newMemCategories() *memCategories {
	return &memCategories{byID: map[uuid.UUID]*models.Category{}}
}

func (m *memCategories) add(name, slug string) *models.Category {
	c := &models.Category{ID: uuid.New(), Name: name, Slug: slug}
	m.byID[c.ID] = c
	return c
}

func (m *memCategories) List(context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range m.byID {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memCategories) SlugExists(ctx context.Context, slug string) (bool, error) {
	c, _ := m.FindBySlug(ctx, slug)
	return c != nil, nil
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	for _, existing := range m.byID {
		if existing.Name == c.Name {
			return apperr.Conflict("name already exists")
		}
	}
	c.ID = uuid.New()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCategories) Update(_ context.Context, c *models.Category) error {
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCategories) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

// memTags is an in-memory TagRepository.
type memTags struct {
	byID map[uuid.UUID]*models.Tag
}

func newMemTags() *memTags {
	return &memTags{byID: map[uuid.UUID]*models.Tag{}}
}

func (m *memTags) add(name, slug string) *models.Tag {
	t := &models.Tag{ID: uuid.New(), Name: name, Slug: slug}
	m.byID[t.ID] = t
	return t
}

func (m *memTags) List(context.Context) ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range m.byID {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memTags) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var out []models.Tag
	for _, id := range ids {
		if t, ok := m.byID[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTags) FindByID(_ context.Context, id uuid.UUID) (*models.Tag, error) {
	if t, ok := m.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *memTags) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, t := range m.byID {
		if t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTags) Create(_ context.Context, t *models.Tag) error {
	t.ID = uuid.New()
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTags) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

// memComments is an in-memory CommentRepository. order keeps insertion
// order so threads come back in creation order.
type memComments struct {
	byID  map[uuid.UUID]*models.Comment
	order []uuid.UUID
}

func newMemComments() *memComments {
	return &memComments{byID: map[uuid.UUID]*models.Comment{}}
}

func (m *memComments) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memComments) Create(_ context.Context, c *models.Comment) error {
	c.ID = uuid.New()
	c.CreatedAt = fixedNow.Add(time.Duration(len(m.order)) * time.Second)
	cp := *c
	m.byID[c.ID] = &cp
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memComments) UpdateContent(_ context.Context, c *models.Comment) error {
	m.byID[c.ID].Content = c.Content
	return nil
}

func (m *memComments) SetApproval(_ context.Context, id uuid.UUID, approved bool) error {
	m.byID[id].IsApproved = approved
	return nil
}

func (m *memComments) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	for _, c := range m.byID {
		if c.ParentID != nil && *c.ParentID == id {
			delete(m.byID, c.ID)
		}
	}
	return nil
}

func (m *memComments) ListByArticle(_ context.Context, articleID uuid.UUID, includeUnapproved bool) ([]models.Comment, error) {
	var out []models.Comment
	for _, id := range m.order {
		c, ok := m.byID[id]
		if !ok || c.ArticleID != articleID {
			continue
		}
		if !includeUnapproved && !c.IsApproved {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *memComments) List(_ context.Context, f models.CommentFilter) ([]models.Comment, int, error) {
	var out []models.Comment
	for _, id := range m.order {
		c, ok := m.byID[id]
		if !ok {
			continue
		}
		if f.Approved != nil && c.IsApproved != *f.Approved {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memComments) Counts(_ context.Context, st *models.DashboardStats) error {
	for _, c := range m.byID {
		st.Comments++
		if !c.IsApproved {
			st.Pending++
		}
	}
	return nil
}

// memUsers is an in-memory UserRepository. Passwords are stored as
// "hash:" + plaintext.
type memUsers struct {
	byID    map[uuid.UUID]*models.User
	touched int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]*models.User{}}
}

func (m *memUsers) add(u *models.User, password string) *models.User {
	u.PasswordHash = "hash:" + password
	cp := *u
	m.byID[u.ID] = &cp
	return u
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) List(_ context.Context, page, perPage int) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memUsers) Create(_ context.Context, u *models.User, password string) error {
	u.ID = uuid.New()
	u.Email = strings.ToLower(u.Email)
	m.add(u, password)
	return nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	hash := m.byID[u.ID].PasswordHash
	cp := *u
	cp.PasswordHash = hash
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) SetPassword(_ context.Context, id uuid.UUID, password string) error {
	m.byID[id].PasswordHash = "hash:" + password
	return nil
}

func (m *memUsers) CheckPassword(u *models.User, password string) bool {
	return u.PasswordHash == "hash:"+password
}

func (m *memUsers) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	m.touched++
	m.byID[id].LastLoginAt = &at
	return nil
}

func (m *memUsers) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	m.byID[id].TOTPSecret = &secret
	return nil
}

func (m *memUsers) EnableTOTP(_ context.Context, id uuid.UUID) error {
	m.byID[id].TOTPEnabled = true
	return nil
}

func (m *memUsers) ResetTOTP(_ context.Context, id uuid.UUID) error {
	m.byID[id].TOTPSecret = nil
	m.byID[id].TOTPEnabled = false
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

func (m *memUsers) Counts(_ context.Context, since time.Time) (int, int, error) {
	recent := 0
	for _, u := range m.byID {
		if !u.CreatedAt.Before(since) {
			recent++
		}
	}
	return len(m.byID), recent, nil
}

func (m *memUsers) Recent(ctx context.Context, limit int) ([]models.User, error) {
	users, _, err := m.List(ctx, 1, limit)
	return users, err
}

// memActivity records audit entries.
type memActivity struct {
	entries []models.ActivityLog
}

func (m *memActivity) Log(_ context.Context, e models.ActivityLog) {
	m.entries = append(m.entries, e)
}

func (m *memActivity) Recent(_ context.Context, limit int) ([]models.ActivityLog, error) {
	if len(m.entries) > limit {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

func (m *memActivity) last() models.ActivityLog {
	if len(m.entries) == 0 {
		return models.ActivityLog{}
	}
	return m.entries[len(m.entries)-1]
}

// memMailer captures sent messages.
type memMailer struct {
	sent []mail.Message
}

func (m *memMailer) Send(_ context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

// memBackend is an in-memory storage.Backend.
type memBackend struct {
	objects map[string][]byte
	failPut bool
}

func newMemBackend() *memBackend {
	return &memBackend{objects: map[string][]byte{}}
}

func (m *memBackend) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if m.failPut {
		return errors.New("backend down")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memBackend) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memBackend) URL(key string) string { return "/uploads/" + key }
