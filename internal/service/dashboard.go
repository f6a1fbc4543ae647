// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/roles"
)

// Dashboard data sources.
type (
	UserStatsSource interface {
		Counts(ctx context.Context, since time.Time) (total, recent int, err error)
		Recent(ctx context.Context, limit int) ([]models.User, error)
	}
	ArticleStatsSource interface {
		Stats(ctx context.Context, st *models.DashboardStats) error
		AuthorStats(ctx context.Context, authorID uuid.UUID) (models.AuthorStats, error)
		List(ctx context.Context, f models.ArticleFilter) ([]models.Article, int, error)
	}
	CommentStatsSource interface {
		Counts(ctx context.Context, st *models.DashboardStats) error
		List(ctx context.Context, f models.CommentFilter) ([]models.Comment, int, error)
	}
	ActivitySource interface {
		Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
	}
)

// AdminDashboard is everything on the admin landing page.
type AdminDashboard struct {
	Stats          models.DashboardStats
	RecentUsers    []models.User
	RecentArticles []models.Article
	RecentComments []models.Comment
	Activity       []models.ActivityLog
}

// AuthorDashboard is everything on the contributor landing page.
type AuthorDashboard struct {
	Stats  models.AuthorStats
	Recent []models.Article
}

// DashboardService assembles dashboard figures.
type DashboardService struct {
	users    UserStatsSource
	articles ArticleStatsSource
	comments CommentStatsSource
	activity ActivitySource
	now      clock
}

// NewDashboardService wires the dashboard service.
func NewDashboardService(users UserStatsSource, articles ArticleStatsSource, comments CommentStatsSource, activity ActivitySource) *DashboardService {
	return &DashboardService{users: users, articles: articles, comments: comments, activity: activity}
}

const dashboardRecent = 5

// Admin returns the site-wide dashboard.
func (s *DashboardService) Admin(ctx context.Context, actor *models.User) (*AdminDashboard, error) {
	if err := require(actor, roles.CanViewStats); err != nil {
		return nil, err
	}
	d := &AdminDashboard{}

	total, recent, err := s.users.Counts(ctx, s.now.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	d.Stats.Users, d.Stats.NewUsers30d = total, recent

	if err := s.articles.Stats(ctx, &d.Stats); err != nil {
		return nil, err
	}
	if err := s.comments.Counts(ctx, &d.Stats); err != nil {
		return nil, err
	}
	if d.RecentUsers, err = s.users.Recent(ctx, dashboardRecent); err != nil {
		return nil, err
	}
	if d.RecentArticles, _, err = s.articles.List(ctx, models.ArticleFilter{Page: 1, PerPage: dashboardRecent}); err != nil {
		return nil, err
	}
	if d.RecentComments, _, err = s.comments.List(ctx, models.CommentFilter{Page: 1, PerPage: dashboardRecent}); err != nil {
		return nil, err
	}
	if d.Activity, err = s.activity.Recent(ctx, 10); err != nil {
		return nil, err
	}
	return d, nil
}

// Author returns the dashboard of a contributor's own work.
func (s *DashboardService) Author(ctx context.Context, actor *models.User) (*AuthorDashboard, error) {
	if err := require(actor, roles.CanCreateArticles); err != nil {
		return nil, err
	}
	st, err := s.articles.AuthorStats(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	id := actor.ID
	recent, _, err := s.articles.List(ctx, models.ArticleFilter{AuthorID: &id, Page: 1, PerPage: dashboardRecent})
	if err != nil {
		return nil, err
	}
	return &AuthorDashboard{Stats: st, Recent: recent}, nil
}
