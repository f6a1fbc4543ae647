// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/service"
)

// Account serves the signed-in user's own profile, password and
// two-factor settings.
type Account struct {
	renderer *render.Renderer
	users    *service.UserService
}

// NewAccount creates the account handler group.
func NewAccount(renderer *render.Renderer, users *service.UserService) *Account {
	return &Account{renderer: renderer, users: users}
}

func (a *Account) page(w http.ResponseWriter, r *http.Request, status int, errs map[string]string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	a.renderer.PageStatus(w, r, status, "profile", &render.PageData{
		Title: "Your profile", Section: "profile", Errors: errs, Data: data,
	})
}

// ProfilePage renders the profile page.
func (a *Account) ProfilePage(w http.ResponseWriter, r *http.Request) {
	a.page(w, r, http.StatusOK, nil, nil)
}

// ProfileSubmit saves the profile form.
func (a *Account) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromCtx(r.Context())
	in := service.ProfileInput{
		Name:     r.PostFormValue("name"),
		Bio:      r.PostFormValue("bio"),
		Avatar:   r.PostFormValue("avatar"),
		Website:  r.PostFormValue("website"),
		Twitter:  r.PostFormValue("twitter"),
		LinkedIn: r.PostFormValue("linkedin"),
		GitHub:   r.PostFormValue("github"),
	}
	_, err := a.users.UpdateProfile(r.Context(), actor, in)
	if errs := fieldErrors(err); errs != nil {
		shown := *actor
		shown.Name, shown.Bio, shown.Avatar = in.Name, in.Bio, in.Avatar
		shown.Website, shown.Twitter, shown.LinkedIn, shown.GitHub = in.Website, in.Twitter, in.LinkedIn, in.GitHub
		a.page(w, r, http.StatusUnprocessableEntity, errs, map[string]any{"Profile": &shown})
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Profile saved.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// PasswordSubmit changes the user's password.
func (a *Account) PasswordSubmit(w http.ResponseWriter, r *http.Request) {
	err := a.users.ChangePassword(r.Context(), middleware.UserFromCtx(r.Context()),
		r.PostFormValue("current"), r.PostFormValue("password"), r.PostFormValue("confirm"))
	if errs := fieldErrors(err); errs != nil {
		a.page(w, r, http.StatusUnprocessableEntity, errs, nil)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Password changed.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// setupData renders a pending two-factor setup for the profile page.
func setupData(s *service.TOTPSetup) map[string]any {
	return map[string]any{
		"Setup": s,
		"QR":    base64.StdEncoding.EncodeToString(s.QRPNG),
	}
}

// TOTPSetup generates a fresh secret and shows its QR code.
func (a *Account) TOTPSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := a.users.SetupTOTP(r.Context(), middleware.UserFromCtx(r.Context()))
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.page(w, r, http.StatusOK, nil, setupData(setup))
}

// TOTPEnable confirms the setup with a code from the app.
func (a *Account) TOTPEnable(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromCtx(r.Context())
	err := a.users.EnableTOTP(r.Context(), actor, r.PostFormValue("code"))
	if errs := fieldErrors(err); errs != nil {
		// A wrong code restarts the setup with a new secret.
		setup, serr := a.users.SetupTOTP(r.Context(), actor)
		if serr != nil {
			fail(a.renderer, w, r, serr)
			return
		}
		a.page(w, r, http.StatusUnprocessableEntity, errs, setupData(setup))
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Two-factor authentication is on.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// TOTPDisable turns two-factor off after checking a current code.
func (a *Account) TOTPDisable(w http.ResponseWriter, r *http.Request) {
	err := a.users.DisableTOTP(r.Context(), middleware.UserFromCtx(r.Context()), r.PostFormValue("code"))
	if errs := fieldErrors(err); errs != nil {
		a.page(w, r, http.StatusUnprocessableEntity, errs, nil)
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Two-factor authentication is off.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
