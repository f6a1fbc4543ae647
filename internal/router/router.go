// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Browser
// routes share a session, CSRF protection and the login redirect; the
// JSON API under /api authenticates with bearer tokens instead.
package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/roles"
	"inkwell/internal/session"
	"inkwell/internal/token"
)

// Config carries everything the router wires together.
type Config struct {
	Renderer *render.Renderer
	Sessions *session.Store
	Users    middleware.UserLookup
	Tokens   *token.Manager
	Settings middleware.SettingsSource

	// Metrics and Gatherer are optional; /metrics is only mounted when
	// Gatherer is set.
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer

	// AuthLimiter throttles sign-in, registration and token requests.
	// Nil disables throttling.
	AuthLimiter *middleware.RateLimiter

	SecureCookies bool
	// MaxBodyBytes caps browser request bodies, uploads included.
	MaxBodyBytes int64
	Static       fs.FS
	// Uploads serves locally stored media at UploadsPath when set.
	Uploads     http.Handler
	UploadsPath string

	Public      *handlers.Public
	Auth        *handlers.Auth
	Account     *handlers.Account
	Contributor *handlers.Contributor
	Admin       *handlers.Admin
	API         *handlers.API
}

// New creates and returns the configured chi router.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(cfg.SecureCookies))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.ClientInfo)
	r.Use(middleware.LoadSettings(cfg.Settings))

	r.Get("/health", healthHandler)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static))))
	}
	if cfg.Uploads != nil && cfg.UploadsPath != "" {
		prefix := strings.TrimRight(cfg.UploadsPath, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, cfg.Uploads))
	}

	throttle := func(h http.HandlerFunc) http.Handler {
		if cfg.AuthLimiter == nil {
			return h
		}
		return cfg.AuthLimiter.Middleware(h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identify(middleware.TokenResolver{Tokens: cfg.Tokens, Users: cfg.Users}))
		api := cfg.API
		deny := middleware.APIResponder{}

		r.Method(http.MethodPost, "/auth/token", throttle(api.IssueToken))
		r.Get("/articles", api.ListArticles)
		r.Get("/articles/{ref}", api.GetArticle)
		r.Get("/articles/{ref}/comments", api.ArticleComments)
		r.Get("/categories", api.Categories)
		r.Get("/tags", api.Tags)
		r.Get("/settings", api.Settings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(roles.CanAccessAPI, deny))
			r.Get("/me", api.Me)
			r.Get("/manage/articles", api.ManagedArticles)
			r.Post("/articles", api.CreateArticle)
			r.Put("/articles/{ref}", api.UpdateArticle)
			r.Post("/articles/{ref}/publish", api.PublishArticle)
			r.Delete("/articles/{ref}", api.DeleteArticle)
			r.Post("/comments", api.CreateComment)
			r.Put("/comments/{id}", api.UpdateComment)
			r.Delete("/comments/{id}", api.DeleteComment)
		})

		r.NotFound(api.NotFound)
	})

	r.Group(func(r chi.Router) {
		if cfg.MaxBodyBytes > 0 {
			r.Use(chimw.RequestSize(cfg.MaxBodyBytes))
		}
		r.Use(middleware.LoadSession(cfg.Sessions))
		r.Use(middleware.Identify(middleware.SessionResolver{Users: cfg.Users}))
		r.Use(middleware.NewCSRF(cfg.SecureCookies))

		browser := middleware.BrowserResponder{Error: cfg.Renderer.Error}
		pub, auth, acct := cfg.Public, cfg.Auth, cfg.Account

		r.Get("/", pub.Home)
		r.Get("/search", pub.Search)
		r.Get("/categories/{slug}", pub.Category)
		r.Get("/tags/{slug}", pub.Tag)
		r.Get("/articles/{slug}", pub.Article)
		r.Get("/contact", pub.ContactPage)
		r.Method(http.MethodPost, "/contact", throttle(pub.ContactSubmit))

		r.Get("/login", auth.LoginPage)
		r.Method(http.MethodPost, "/login", throttle(auth.LoginSubmit))
		r.Get("/login/totp", auth.TOTPPage)
		r.Method(http.MethodPost, "/login/totp", throttle(auth.TOTPSubmit))
		r.Post("/logout", auth.Logout)
		r.Get("/register", auth.RegisterPage)
		r.Method(http.MethodPost, "/register", throttle(auth.RegisterSubmit))
		r.Get("/forgot-password", auth.ForgotPage)
		r.Method(http.MethodPost, "/forgot-password", throttle(auth.ForgotSubmit))
		r.Get("/reset-password/{token}", auth.ResetPage)
		r.Method(http.MethodPost, "/reset-password/{token}", throttle(auth.ResetSubmit))

		// Signed-in users.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated(browser))
			r.Get("/authors/{id}", pub.Author)
			r.Post("/articles/{slug}/comments", pub.PostComment)
			r.Post("/comments/{id}/delete", pub.DeleteComment)

			r.Get("/profile", acct.ProfilePage)
			r.Post("/profile", acct.ProfileSubmit)
			r.Post("/profile/password", acct.PasswordSubmit)
			r.Post("/profile/2fa/setup", acct.TOTPSetup)
			r.Post("/profile/2fa/enable", acct.TOTPEnable)
			r.Post("/profile/2fa/disable", acct.TOTPDisable)
		})

		r.Route("/contributor", func(r chi.Router) {
			r.Use(middleware.RequireRole(roles.Contributor, browser))
			c := cfg.Contributor
			r.Get("/", c.Dashboard)
			r.Get("/articles", c.Articles)
			r.Get("/articles/new", c.NewArticle)
			r.Post("/articles", c.CreateArticle)
			r.Get("/articles/{id}/edit", c.EditArticle)
			r.Post("/articles/{id}", c.UpdateArticle)
			r.Post("/articles/{id}/publish", c.PublishArticle)
			r.Post("/articles/{id}/delete", c.DeleteArticle)
			r.Get("/comments", c.Comments)
			r.Get("/media", c.Media)
			r.Post("/media", c.Upload)
			r.Post("/media/{id}/delete", c.DeleteMedia)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(browser))
			a := cfg.Admin
			r.Get("/", a.Dashboard)
			r.Get("/articles", a.Articles)
			r.Get("/comments", a.Comments)
			r.Post("/comments/{id}/approve", a.ApproveComment)
			r.Post("/comments/{id}/unapprove", a.UnapproveComment)

			r.Get("/users", a.Users)
			r.Get("/users/new", a.NewUser)
			r.Post("/users", a.CreateUser)
			r.Get("/users/{id}/edit", a.EditUser)
			r.Post("/users/{id}", a.UpdateUser)
			r.Post("/users/{id}/delete", a.DeleteUser)
			r.Post("/users/{id}/reset-2fa", a.ResetUserTOTP)

			r.Get("/categories", a.Categories)
			r.Post("/categories", a.CreateCategory)
			r.Post("/categories/{id}", a.UpdateCategory)
			r.Post("/categories/{id}/delete", a.DeleteCategory)

			r.Get("/tags", a.Tags)
			r.Post("/tags", a.CreateTag)
			r.Post("/tags/{id}/delete", a.DeleteTag)

			r.Get("/settings", a.Settings)
			r.Post("/settings", a.SettingsSubmit)
		})

		r.NotFound(pub.NotFound)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
