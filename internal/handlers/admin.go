// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/roles"
	"inkwell/internal/service"
)

// Admin groups the handlers of the admin panel.
type Admin struct {
	renderer *render.Renderer
	svc      *Services
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, svc *Services) *Admin {
	return &Admin{renderer: renderer, svc: svc}
}

// Dashboard renders the admin dashboard with site-wide figures.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.svc.Dashboard.Admin(r.Context(), middleware.UserFromCtx(r.Context()))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.renderer.Page(w, r, "admin_dashboard", &render.PageData{
		Title: "Dashboard", Section: "admin", Data: map[string]any{"Dashboard": d},
	})
}

// Articles lists every article.
func (a *Admin) Articles(w http.ResponseWriter, r *http.Request) {
	listArticles(a.renderer, a.svc, w, r, "admin", "/admin/articles")
}

// Comments lists comments for moderation.
func (a *Admin) Comments(w http.ResponseWriter, r *http.Request) {
	listComments(a.renderer, a.svc, w, r, "admin", "/admin/comments")
}

func (a *Admin) setApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if _, err := a.svc.Comments.SetApproval(r.Context(), middleware.UserFromCtx(r.Context()), id, approved); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if approved {
		render.SetFlash(w, "success", "Comment approved.")
	} else {
		render.SetFlash(w, "success", "Comment hidden.")
	}
	http.Redirect(w, r, safeNext(r.Referer(), "/admin/comments"), http.StatusSeeOther)
}

// ApproveComment publishes a held comment.
func (a *Admin) ApproveComment(w http.ResponseWriter, r *http.Request) { a.setApproval(w, r, true) }

// UnapproveComment hides a comment again.
func (a *Admin) UnapproveComment(w http.ResponseWriter, r *http.Request) { a.setApproval(w, r, false) }

// --- Users ---

// Users lists accounts.
func (a *Admin) Users(w http.ResponseWriter, r *http.Request) {
	page, err := a.svc.Users.List(r.Context(), middleware.UserFromCtx(r.Context()), pageParam(r), 25)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.renderer.Page(w, r, "users", &render.PageData{
		Title: "Users", Section: "admin",
		Data: map[string]any{"Users": page, "Pager": pagerFor(r, page)},
	})
}

func userInput(r *http.Request) service.AdminUserInput {
	return service.AdminUserInput{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     roles.Role(r.PostFormValue("role")),
		IsActive: checked(r, "is_active"),
	}
}

func (a *Admin) userForm(w http.ResponseWriter, r *http.Request, status int, target *models.User, in service.AdminUserInput, errs map[string]string) {
	title, action := "New user", "/admin/users"
	if target != nil {
		title, action = "Edit user", "/admin/users/"+target.ID.String()
	}
	in.Password = ""
	a.renderer.PageStatus(w, r, status, "user_form", &render.PageData{
		Title: title, Section: "admin", Errors: errs,
		Data: map[string]any{"Target": target, "Form": in, "Roles": roles.Roles(), "Action": action},
	})
}

// userErrors maps a failed save to form errors; a duplicate email is
// shown on the email field.
func userErrors(err error) map[string]string {
	if errs := fieldErrors(err); errs != nil {
		return errs
	}
	if isConflict(err) {
		return map[string]string{"email": "An account with this email already exists."}
	}
	return nil
}

// NewUser renders the empty account form.
func (a *Admin) NewUser(w http.ResponseWriter, r *http.Request) {
	a.userForm(w, r, http.StatusOK, nil, service.AdminUserInput{Role: roles.Viewer, IsActive: true}, nil)
}

// CreateUser saves a new account.
func (a *Admin) CreateUser(w http.ResponseWriter, r *http.Request) {
	in := userInput(r)
	u, err := a.svc.Users.Create(r.Context(), middleware.UserFromCtx(r.Context()), in)
	if errs := userErrors(err); errs != nil {
		a.userForm(w, r, http.StatusUnprocessableEntity, nil, in, errs)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Account created for "+u.Name+".")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// EditUser renders the account form for an existing user.
func (a *Admin) EditUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	u, err := a.svc.Users.Get(r.Context(), id)
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.userForm(w, r, http.StatusOK, u, service.AdminUserInput{
		Name: u.Name, Email: u.Email, Role: u.Role, IsActive: u.IsActive,
	}, nil)
}

// UpdateUser saves changes to an account.
func (a *Admin) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	in := userInput(r)
	u, err := a.svc.Users.Update(ctx, middleware.UserFromCtx(ctx), id, in)
	if errs := userErrors(err); errs != nil {
		target, gerr := a.svc.Users.Get(ctx, id)
		if gerr != nil {
			fail(a.renderer, w, r, gerr)
			return
		}
		a.userForm(w, r, http.StatusUnprocessableEntity, target, in, errs)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", u.Name+" saved.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// DeleteUser removes an account.
func (a *Admin) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	err = a.svc.Users.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if err != nil && (isConflict(err) || fieldErrors(err) != nil) {
		render.SetFlash(w, "error", flashMessage(err))
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "User deleted.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// ResetUserTOTP turns off two-factor for a user who lost their device.
func (a *Admin) ResetUserTOTP(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if err := a.svc.Users.ResetTOTP(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Two-factor authentication has been reset.")
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// --- Categories ---

func (a *Admin) categories(w http.ResponseWriter, r *http.Request, status int, errs map[string]string) {
	cats, err := a.svc.Categories.List(r.Context())
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.renderer.PageStatus(w, r, status, "categories", &render.PageData{
		Title: "Categories", Section: "admin", Errors: errs, Data: map[string]any{"Categories": cats},
	})
}

// Categories lists categories with their article counts.
func (a *Admin) Categories(w http.ResponseWriter, r *http.Request) {
	a.categories(w, r, http.StatusOK, nil)
}

// termErrors maps a failed category or tag save to form errors.
func termErrors(err error) map[string]string {
	if errs := fieldErrors(err); errs != nil {
		return errs
	}
	if isConflict(err) {
		return map[string]string{"name": flashMessage(err)}
	}
	return nil
}

// CreateCategory adds a category.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	_, err := a.svc.Categories.Create(r.Context(), middleware.UserFromCtx(r.Context()),
		r.PostFormValue("name"), r.PostFormValue("description"))
	if errs := termErrors(err); errs != nil {
		a.categories(w, r, http.StatusUnprocessableEntity, errs)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Category added.")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// UpdateCategory renames a category. Its slug does not change.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	_, err = a.svc.Categories.Update(r.Context(), middleware.UserFromCtx(r.Context()), id,
		r.PostFormValue("name"), r.PostFormValue("description"))
	if errs := termErrors(err); errs != nil {
		a.categories(w, r, http.StatusUnprocessableEntity, errs)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Category saved.")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// DeleteCategory removes an unused category.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	err = a.svc.Categories.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if isConflict(err) {
		render.SetFlash(w, "error", flashMessage(err))
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Category deleted.")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// --- Tags ---

func (a *Admin) tags(w http.ResponseWriter, r *http.Request, status int, errs map[string]string) {
	tags, err := a.svc.Tags.List(r.Context())
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.renderer.PageStatus(w, r, status, "tags", &render.PageData{
		Title: "Tags", Section: "admin", Errors: errs, Data: map[string]any{"Tags": tags},
	})
}

// Tags lists tags.
func (a *Admin) Tags(w http.ResponseWriter, r *http.Request) {
	a.tags(w, r, http.StatusOK, nil)
}

// CreateTag adds a tag.
func (a *Admin) CreateTag(w http.ResponseWriter, r *http.Request) {
	_, err := a.svc.Tags.Create(r.Context(), middleware.UserFromCtx(r.Context()), r.PostFormValue("name"))
	if errs := termErrors(err); errs != nil {
		a.tags(w, r, http.StatusUnprocessableEntity, errs)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Tag added.")
	http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
}

// DeleteTag removes a tag from every article and deletes it.
func (a *Admin) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	if err := a.svc.Tags.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Tag deleted.")
	http.Redirect(w, r, "/admin/tags", http.StatusSeeOther)
}

// --- Settings ---

// Settings renders the settings form.
func (a *Admin) Settings(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Settings.List(r.Context(), middleware.UserFromCtx(r.Context()))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.renderer.Page(w, r, "settings", &render.PageData{
		Title: "Settings", Section: "admin", Data: map[string]any{"Settings": list},
	})
}

// SettingsSubmit saves the settings form. Checkboxes post a hidden
// "false" followed by "true" when ticked, so the last value wins.
func (a *Admin) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.UserFromCtx(ctx)
	if err := r.ParseForm(); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	values := make(map[string]string)
	for _, def := range models.DefaultSettings {
		if v, ok := r.PostForm[def.Key]; ok && len(v) > 0 {
			values[def.Key] = v[len(v)-1]
		}
	}

	err := a.svc.Settings.Update(ctx, actor, values)
	if errs := fieldErrors(err); errs != nil {
		list, lerr := a.svc.Settings.List(ctx, actor)
		if lerr != nil {
			fail(a.renderer, w, r, lerr)
			return
		}
		for i := range list {
			if v, ok := values[list[i].Key]; ok {
				list[i].Value = v
			}
		}
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "settings", &render.PageData{
			Title: "Settings", Section: "admin", Errors: errs, Data: map[string]any{"Settings": list},
		})
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Settings saved.")
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}
