// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Inkwell blog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/mail"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/render"
	"inkwell/internal/router"
	"inkwell/internal/service"
	"inkwell/internal/session"
	"inkwell/internal/storage"
	"inkwell/internal/store"
	"inkwell/internal/token"
	"inkwell/web"
)

func main() {
	// Load configuration from the environment and an optional .env file.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	slog.SetDefault(newLogger(cfg))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage", cfg.StorageDriver,
	)

	ctx := context.Background()

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		err := database.Seed(ctx, db, database.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		})
		if err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions, rate limits, rendered article cache).
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, session.Options{
		TTL:         cfg.SessionTTL,
		RememberTTL: cfg.RememberTTL,
		Secure:      secureCookies,
	})

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Media backend: local disk or an S3-compatible bucket.
	var (
		backend     storage.Backend
		uploads     http.Handler
		uploadsPath string
	)
	switch cfg.StorageDriver {
	case "s3":
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		backend = s3
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	default:
		local, err := storage.NewLocal(cfg.UploadDir, cfg.UploadURL)
		if err != nil {
			slog.Error("failed to initialize local storage", "error", err)
			os.Exit(1)
		}
		backend = local
		uploads = http.FileServer(http.Dir(local.Root()))
		uploadsPath = cfg.UploadURL
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	articleStore := store.NewArticleStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	commentStore := store.NewCommentStore(db)
	mediaStore := store.NewMediaStore(db)
	settingStore := store.NewSiteSettingStore(db)
	activityStore := store.NewActivityStore(db)

	renderCache := cache.NewRenderCache(valkeyClient, cfg.RenderCacheTTL)
	// Bodies cached by a previous build may follow an older sanitising policy.
	renderCache.InvalidateAll(ctx)
	tokens := token.NewManager(cfg.SecretKey)
	mailer := mail.NewLogSender(slog.Default())

	svc := &handlers.Services{
		Articles:   service.NewArticleService(articleStore, categoryStore, tagStore, renderCache, activityStore),
		Comments:   service.NewCommentService(commentStore, articleStore, activityStore),
		Categories: service.NewCategoryService(categoryStore, articleStore, activityStore),
		Tags:       service.NewTagService(tagStore, activityStore),
		Users: service.NewUserService(userStore, articleStore, tokens, mailer, activityStore, service.UserConfig{
			BaseURL:     cfg.BaseURL,
			Issuer:      "Inkwell",
			ResetTTL:    cfg.ResetTokenTTL,
			APITokenTTL: cfg.APITokenTTL,
		}),
		Settings:  service.NewSettingService(settingStore, activityStore),
		Media:     service.NewMediaService(mediaStore, backend, cfg.MaxUploadBytes, activityStore),
		Dashboard: service.NewDashboardService(userStore, articleStore, commentStore, activityStore),
		Contact:   service.NewContactService(mailer, cfg.AdminEmail),
	}

	// Prometheus registry with the Go runtime collectors and HTTP metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	r := router.New(router.Config{
		Renderer:      renderer,
		Sessions:      sessionStore,
		Users:         userStore,
		Tokens:        tokens,
		Settings:      svc.Settings,
		Metrics:       middleware.NewMetrics(reg),
		Gatherer:      reg,
		AuthLimiter:   middleware.NewRateLimiter(valkeyClient, "auth", cfg.LoginAttempts, cfg.LoginWindow),
		SecureCookies: secureCookies,
		// Multipart framing on top of the largest allowed upload.
		MaxBodyBytes: cfg.MaxUploadBytes + 1<<20,
		Static:       static,
		Uploads:      uploads,
		UploadsPath:  uploadsPath,

		Public:      handlers.NewPublic(renderer, svc, markdown.NewRenderer(renderCache)),
		Auth:        handlers.NewAuth(renderer, sessionStore, svc.Users),
		Account:     handlers.NewAccount(renderer, svc.Users),
		Contributor: handlers.NewContributor(renderer, svc),
		Admin:       handlers.NewAdmin(renderer, svc),
		API:         handlers.NewAPI(svc),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
