// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allEnvVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV", "APP_BASE_URL", "LOG_LEVEL",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"SECRET_KEY", "API_TOKEN_TTL", "RESET_TOKEN_TTL", "SESSION_TTL", "REMEMBER_TTL",
	"LOGIN_ATTEMPTS", "LOGIN_WINDOW", "RENDER_CACHE_TTL",
	"STORAGE_DRIVER", "UPLOAD_DIR", "UPLOAD_URL", "MAX_UPLOAD_MB",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PUBLIC_URL",
	"ADMIN_EMAIL", "ADMIN_PASSWORD",
}

// clearEnv blanks every variable Load reads and points ENV_FILE at a file
// that does not exist, so tests see pure defaults. envOrDefault treats an
// empty value the same as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	strs := map[string][2]string{
		"Host":          {cfg.Host, "0.0.0.0"},
		"Port":          {cfg.Port, "8080"},
		"Env":           {cfg.Env, "development"},
		"DBUser":        {cfg.DBUser, "inkwell"},
		"DBName":        {cfg.DBName, "inkwell"},
		"ValkeyPort":    {cfg.ValkeyPort, "6379"},
		"StorageDriver": {cfg.StorageDriver, "local"},
		"UploadURL":     {cfg.UploadURL, "/uploads"},
	}
	for name, pair := range strs {
		if pair[0] != pair[1] {
			t.Errorf("%s = %q, want %q", name, pair[0], pair[1])
		}
	}
	if cfg.APITokenTTL != time.Hour || cfg.ResetTokenTTL != time.Hour {
		t.Errorf("token TTLs = %v / %v, want 1h", cfg.APITokenTTL, cfg.ResetTokenTTL)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.MaxUploadBytes != 8<<20 {
		t.Errorf("MaxUploadBytes = %d, want 8 MiB", cfg.MaxUploadBytes)
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false for development env")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("API_TOKEN_TTL", "15m")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("LOGIN_ATTEMPTS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.APITokenTTL != 15*time.Minute {
		t.Errorf("APITokenTTL = %v", cfg.APITokenTTL)
	}
	if cfg.MaxUploadBytes != 2<<20 || cfg.LoginAttempts != 3 {
		t.Errorf("MaxUploadBytes=%d LoginAttempts=%d", cfg.MaxUploadBytes, cfg.LoginAttempts)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("POSTGRES_DB=fromfile\nAPP_PORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	// An empty-but-set variable is overwritten by godotenv only when unset,
	// so unset the two keys the file provides.
	os.Unsetenv("POSTGRES_DB")
	os.Unsetenv("APP_PORT")
	t.Cleanup(func() {
		os.Unsetenv("POSTGRES_DB")
		os.Unsetenv("APP_PORT")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DBName != "fromfile" || cfg.Port != "7000" {
		t.Errorf("DBName=%q Port=%q, want values from env file", cfg.DBName, cfg.Port)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"API_TOKEN_TTL":  "forever",
		"SESSION_TTL":    "-1h",
		"LOGIN_ATTEMPTS": "many",
		"MAX_UPLOAD_MB":  "0",
		"STORAGE_DRIVER": "ftp",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Errorf("Load() error = %v, want mention of %s", err, key)
			}
		})
	}
}

// TestLoad_ProductionRequiresSecrets verifies that default credentials are
// refused in production.
func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "default db password",
			env:     map[string]string{"SECRET_KEY": "s"},
			wantErr: "POSTGRES_PASSWORD",
		},
		{
			name:    "default secret key",
			env:     map[string]string{"POSTGRES_PASSWORD": "p"},
			wantErr: "SECRET_KEY",
		},
		{
			name:    "s3 without keys",
			env:     map[string]string{"POSTGRES_PASSWORD": "p", "SECRET_KEY": "s", "STORAGE_DRIVER": "s3"},
			wantErr: "S3_ACCESS_KEY",
		},
		{
			name: "all set",
			env:  map[string]string{"POSTGRES_PASSWORD": "p", "SECRET_KEY": "s"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", "production")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "blog"}
	if got, want := cfg.DSN(), "postgres://u:p@db:5433/blog?sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
