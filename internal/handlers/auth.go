// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/roles"
	"inkwell/internal/service"
	"inkwell/internal/session"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *service.UserService
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, users *service.UserService) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, users: users}
}

// landing is where a user goes after signing in when no ?next is given.
func landing(u *models.User) string {
	switch {
	case u.IsAdmin():
		return "/admin"
	case u.Can(roles.CanCreateArticles):
		return "/contributor"
	default:
		return "/"
	}
}

// startSession replaces any existing session with a fresh one so a
// session id seen before sign-in is never reused after it.
func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, data *session.Data) error {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("failed to drop previous session", "error", err)
	}
	_, err := a.sessions.Create(r.Context(), w, data)
	return err
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), "")
	if u := middleware.UserFromCtx(r.Context()); u != nil {
		http.Redirect(w, r, safeNext(next, landing(u)), http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign in",
		Data:  map[string]any{"Next": next},
	})
}

// LoginSubmit checks the credentials and starts a session. Accounts with
// two-factor enabled get a pending session and are sent to the code form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	next := safeNext(r.PostFormValue("next"), "")

	user, err := a.users.Authenticate(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if service.IsInvalidCredentials(err) || fieldErrors(err) != nil {
			a.renderer.PageStatus(w, r, http.StatusUnauthorized, "login", &render.PageData{
				Title: "Sign in",
				Data:  map[string]any{"Error": "Invalid email or password.", "Email": email, "Next": next},
			})
			return
		}
		fail(a.renderer, w, r, err)
		return
	}

	data := &session.Data{
		UserID:      user.ID,
		TOTPPending: user.TOTPEnabled,
		Remember:    checked(r, "remember"),
	}
	if err := a.startSession(w, r, data); err != nil {
		fail(a.renderer, w, r, err)
		return
	}

	if user.TOTPEnabled {
		target := "/login/totp"
		if next != "" {
			target += "?next=" + queryEscape(next)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, safeNext(next, landing(user)), http.StatusSeeOther)
}

// pendingSession returns the session of a user who passed the password
// check but still owes a one-time code.
func pendingSession(r *http.Request) *session.Data {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || !sess.TOTPPending {
		return nil
	}
	return sess
}

// TOTPPage renders the one-time code form.
func (a *Auth) TOTPPage(w http.ResponseWriter, r *http.Request) {
	if pendingSession(r) == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login_totp", &render.PageData{
		Title: "Two-factor authentication",
		Data:  map[string]any{"Next": safeNext(r.URL.Query().Get("next"), "")},
	})
}

// TOTPSubmit validates the one-time code and completes the sign-in.
func (a *Auth) TOTPSubmit(w http.ResponseWriter, r *http.Request) {
	sess := pendingSession(r)
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	next := safeNext(r.PostFormValue("next"), "")

	user, err := a.users.CompleteTOTP(r.Context(), sess.UserID, r.PostFormValue("code"))
	if errs := fieldErrors(err); errs != nil {
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "login_totp", &render.PageData{
			Title: "Two-factor authentication",
			Data:  map[string]any{"Error": errs["code"], "Next": next},
		})
		return
	}
	if err != nil {
		a.sessions.Destroy(r.Context(), w, r)
		fail(a.renderer, w, r, err)
		return
	}

	sess.TOTPPending = false
	if err := a.startSession(w, r, sess); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	http.Redirect(w, r, safeNext(next, landing(user)), http.StatusSeeOther)
}

// Logout destroys the session and returns to the front page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	render.SetFlash(w, "info", "You have been signed out.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage renders the sign-up form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.UserFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "register", &render.PageData{
		Title: "Create an account",
		Data:  map[string]any{"Form": service.RegisterInput{}},
	})
}

// RegisterSubmit creates a viewer account and signs it in.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	in := service.RegisterInput{
		Name:        r.PostFormValue("name"),
		Email:       r.PostFormValue("email"),
		Password:    r.PostFormValue("password"),
		Confirm:     r.PostFormValue("confirm"),
		AcceptTerms: checked(r, "accept_terms"),
	}
	user, err := a.users.Register(r.Context(), in)
	if err != nil {
		errs := fieldErrors(err)
		if errs == nil && isConflict(err) {
			errs = map[string]string{"email": "An account with this email already exists."}
		}
		if errs != nil {
			in.Password, in.Confirm = "", ""
			a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "register", &render.PageData{
				Title: "Create an account", Errors: errs, Data: map[string]any{"Form": in},
			})
			return
		}
		fail(a.renderer, w, r, err)
		return
	}

	if err := a.startSession(w, r, &session.Data{UserID: user.ID}); err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Welcome, "+user.Name+"!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ForgotPage renders the password reset request form.
func (a *Auth) ForgotPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "forgot_password", &render.PageData{Title: "Reset your password"})
}

// ForgotSubmit mails a reset link. The response is the same whether or
// not the address belongs to an account.
func (a *Auth) ForgotSubmit(w http.ResponseWriter, r *http.Request) {
	err := a.users.RequestPasswordReset(r.Context(), r.PostFormValue("email"))
	if errs := fieldErrors(err); errs != nil {
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "forgot_password", &render.PageData{
			Title: "Reset your password", Data: map[string]any{"Error": errs["email"]},
		})
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	a.renderer.Page(w, r, "forgot_password", &render.PageData{
		Title: "Reset your password", Data: map[string]any{"Sent": true},
	})
}

// resetLinkFailed sends the user back to request a new link.
func (a *Auth) resetLinkFailed(w http.ResponseWriter, r *http.Request, msg string) {
	render.SetFlash(w, "error", msg)
	http.Redirect(w, r, "/forgot-password", http.StatusSeeOther)
}

// ResetPage renders the new-password form for a valid reset link.
func (a *Auth) ResetPage(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	if err := a.users.CheckResetToken(r.Context(), tok); err != nil {
		if errs := fieldErrors(err); errs != nil {
			a.resetLinkFailed(w, r, errs["token"])
			return
		}
		fail(a.renderer, w, r, err)
		return
	}
	a.renderer.Page(w, r, "reset_password", &render.PageData{
		Title: "Choose a new password", Data: map[string]any{"Token": tok},
	})
}

// ResetSubmit sets the new password.
func (a *Auth) ResetSubmit(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")
	err := a.users.ResetPassword(r.Context(), tok, r.PostFormValue("password"), r.PostFormValue("confirm"))
	if errs := fieldErrors(err); errs != nil {
		if msg, ok := errs["token"]; ok {
			a.resetLinkFailed(w, r, msg)
			return
		}
		a.renderer.PageStatus(w, r, http.StatusUnprocessableEntity, "reset_password", &render.PageData{
			Title: "Choose a new password", Errors: errs, Data: map[string]any{"Token": tok},
		})
		return
	}
	if err != nil {
		fail(a.renderer, w, r, err)
		return
	}
	render.SetFlash(w, "success", "Your password has been changed. Please sign in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
