// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDBPassword = "changeme"
	defaultSecretKey  = "dev-secret-change-me"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	BaseURL  string // Absolute site URL used in emailed links
	LogLevel string // "debug", "info", "warn", "error"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Auth
	SecretKey     string        // Signs API and password-reset tokens
	APITokenTTL   time.Duration // Lifetime of API bearer tokens
	ResetTokenTTL time.Duration // Lifetime of password-reset links
	SessionTTL    time.Duration // Browser session lifetime
	RememberTTL   time.Duration // Session lifetime with "remember me"
	LoginAttempts int           // Allowed auth POSTs per client per window
	LoginWindow   time.Duration

	// Uploads
	StorageDriver  string // "local" or "s3"
	UploadDir      string
	UploadURL      string // URL prefix for locally stored files
	MaxUploadBytes int64

	// S3-compatible object storage
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Rendered article HTML cache
	RenderCacheTTL time.Duration

	// Development seed accounts
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file (or the file named by
// ENV_FILE) is loaded first when present; real environment variables win.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(envOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Host:     envOrDefault("APP_HOST", "0.0.0.0"),
		Port:     envOrDefault("APP_PORT", "8080"),
		Env:      envOrDefault("APP_ENV", "development"),
		BaseURL:  envOrDefault("APP_BASE_URL", "http://localhost:8080"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "inkwell"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "inkwell"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		SecretKey: envOrDefault("SECRET_KEY", defaultSecretKey),

		StorageDriver: envOrDefault("STORAGE_DRIVER", "local"),
		UploadDir:     envOrDefault("UPLOAD_DIR", "uploads"),
		UploadURL:     envOrDefault("UPLOAD_URL", "/uploads"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "inkwell"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@inkwell.local"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", "admin123!"),
	}

	var err error
	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"API_TOKEN_TTL", time.Hour, &cfg.APITokenTTL},
		{"RESET_TOKEN_TTL", time.Hour, &cfg.ResetTokenTTL},
		{"SESSION_TTL", 7 * 24 * time.Hour, &cfg.SessionTTL},
		{"REMEMBER_TTL", 30 * 24 * time.Hour, &cfg.RememberTTL},
		{"LOGIN_WINDOW", 15 * time.Minute, &cfg.LoginWindow},
		{"RENDER_CACHE_TTL", time.Hour, &cfg.RenderCacheTTL},
	}
	for _, d := range durations {
		if *d.dst, err = durationOrDefault(d.key, d.fallback); err != nil {
			return nil, err
		}
	}
	if cfg.LoginAttempts, err = intOrDefault("LOGIN_ATTEMPTS", 10); err != nil {
		return nil, err
	}
	maxMB, err := intOrDefault("MAX_UPLOAD_MB", 8)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	if cfg.StorageDriver != "local" && cfg.StorageDriver != "s3" {
		return nil, fmt.Errorf("STORAGE_DRIVER must be local or s3, got %q", cfg.StorageDriver)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.SecretKey == defaultSecretKey {
			return nil, fmt.Errorf("SECRET_KEY must be set in production")
		}
		if cfg.StorageDriver == "s3" && (cfg.S3AccessKey == "" || cfg.S3SecretKey == "") {
			return nil, fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set when STORAGE_DRIVER=s3")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 1h or 30m, got %q", key, v)
	}
	return d, nil
}

func intOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
