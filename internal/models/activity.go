// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is one entry of the append-only audit trail shown on the
// admin dashboard.
type ActivityLog struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Action      string     `json:"action"`
	EntityType  string     `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	Description string     `json:"description"`
	IPAddress   string     `json:"ip_address"`
	UserAgent   string     `json:"user_agent"`
	CreatedAt   time.Time  `json:"created_at"`

	UserName string `json:"user_name,omitempty"`
}

// DashboardStats are the site-wide numbers on the admin dashboard.
type DashboardStats struct {
	Users       int `json:"users"`
	NewUsers30d int `json:"new_users_30d"`
	Articles    int `json:"articles"`
	Published   int `json:"published"`
	Drafts      int `json:"drafts"`
	Comments    int `json:"comments"`
	Pending     int `json:"pending_comments"`
	TotalViews  int `json:"total_views"`
}

// NewUserShare returns the percentage of accounts created in the last 30 days.
func (s DashboardStats) NewUserShare() int {
	if s.Users == 0 {
		return 0
	}
	return s.NewUsers30d * 100 / s.Users
}

// AuthorStats are the numbers on a contributor's dashboard.
type AuthorStats struct {
	Articles   int `json:"articles"`
	Published  int `json:"published"`
	Drafts     int `json:"drafts"`
	TotalViews int `json:"total_views"`
	Comments   int `json:"comments"`
}
