// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package roles holds the static role -> permission table. The table is
// embedded as YAML, parsed once per process and never mutated afterwards.
// Every other package asks this one whether a role may do something; nothing
// else hard-codes role names against permissions.
package roles

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Role identifies a user's access tier.
type Role string

const (
	Viewer      Role = "viewer"
	Contributor Role = "contributor"
	Admin       Role = "admin"
)

// Permission is a named capability checked by guards and services.
type Permission string

const (
	CanViewArticles      Permission = "can_view_articles"
	CanCreateArticles    Permission = "can_create_articles"
	CanEditOwnArticles   Permission = "can_edit_own_articles"
	CanDeleteOwnArticles Permission = "can_delete_own_articles"
	CanEditAnyArticle    Permission = "can_edit_any_article"
	CanDeleteAnyArticle  Permission = "can_delete_any_article"
	CanPublishArticles   Permission = "can_publish_articles"
	CanFeatureArticles   Permission = "can_feature_articles"

	CanComment           Permission = "can_comment"
	CanEditOwnComments   Permission = "can_edit_own_comments"
	CanDeleteOwnComments Permission = "can_delete_own_comments"
	CanDeleteAnyComment  Permission = "can_delete_any_comment"
	CanModerateComments  Permission = "can_moderate_comments"

	CanViewProfiles   Permission = "can_view_profiles"
	CanEditOwnProfile Permission = "can_edit_own_profile"
	CanManageUsers    Permission = "can_manage_users"
	CanAssignRoles    Permission = "can_assign_roles"

	CanManageCategories Permission = "can_manage_categories"
	CanManageTags       Permission = "can_manage_tags"
	CanManageSettings   Permission = "can_manage_settings"
	CanViewStats        Permission = "can_view_stats"
	CanUploadFiles      Permission = "can_upload_files"
	CanAccessAPI        Permission = "can_access_api"
)

//go:embed roles.yaml
var tableYAML []byte

type tableFile struct {
	Permissions []struct {
		Name        Permission `yaml:"name"`
		Description string     `yaml:"description"`
	} `yaml:"permissions"`
	Roles map[Role]struct {
		Description string       `yaml:"description"`
		Permissions []Permission `yaml:"permissions"`
	} `yaml:"roles"`
}

// table is the parsed, read-only form of roles.yaml.
type table struct {
	order        []Permission
	descriptions map[Permission]string
	roleDesc     map[Role]string
	grants       map[Role]map[Permission]bool
}

var (
	loadOnce sync.Once
	loaded   *table
)

func get() *table {
	loadOnce.Do(func() {
		t, err := parse(tableYAML)
		if err != nil {
			// The file is compiled into the binary; a broken table is a build defect.
			panic(fmt.Sprintf("roles: %v", err))
		}
		loaded = t
	})
	return loaded
}

func parse(data []byte) (*table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse permission table: %w", err)
	}

	t := &table{
		descriptions: make(map[Permission]string, len(f.Permissions)),
		roleDesc:     make(map[Role]string, len(f.Roles)),
		grants:       make(map[Role]map[Permission]bool, len(f.Roles)),
	}
	for _, p := range f.Permissions {
		t.order = append(t.order, p.Name)
		t.descriptions[p.Name] = p.Description
	}
	for role, def := range f.Roles {
		t.roleDesc[role] = def.Description
		set := make(map[Permission]bool, len(def.Permissions))
		for _, p := range def.Permissions {
			if _, ok := t.descriptions[p]; !ok {
				return nil, fmt.Errorf("role %q grants undefined permission %q", role, p)
			}
			set[p] = true
		}
		t.grants[role] = set
	}
	for _, r := range []Role{Viewer, Contributor, Admin} {
		if _, ok := t.grants[r]; !ok {
			return nil, fmt.Errorf("role %q missing from table", r)
		}
	}
	return t, nil
}

// All returns every defined permission in table order.
func All() []Permission {
	return slices.Clone(get().order)
}

// Roles returns the known roles from least to most privileged.
func Roles() []Role {
	return []Role{Viewer, Contributor, Admin}
}

// Valid reports whether r is one of the known roles.
func Valid(r Role) bool {
	_, ok := get().grants[r]
	return ok
}

// PermissionsFor returns the permissions granted to a role, in table order.
// Admin receives every defined permission. Unknown roles get none.
func PermissionsFor(r Role) []Permission {
	t := get()
	if r == Admin {
		return slices.Clone(t.order)
	}
	set, ok := t.grants[r]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(set))
	for _, p := range t.order {
		if set[p] {
			out = append(out, p)
		}
	}
	return out
}

// Has reports whether role r holds permission p.
func Has(r Role, p Permission) bool {
	if r == Admin {
		return true
	}
	return get().grants[r][p]
}

// Describe returns the human-readable description of a permission.
func Describe(p Permission) string {
	return get().descriptions[p]
}

// Description returns the human-readable description of a role.
func Description(r Role) string {
	return get().roleDesc[r]
}
