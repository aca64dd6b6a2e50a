package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment       string
	HTTPPort          string
	DatabasePath      string
	FrontendDir       string
	SessionCookieName string
	SessionSecret     string
	SessionLifetime   time.Duration
	NotifyURL         string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:       getEnv("HAVEN_ENV", "development"),
		HTTPPort:          getEnv("HAVEN_HTTP_PORT", "8080"),
		DatabasePath:      getEnv("HAVEN_DB_PATH", filepath.Join("data", "haven.db")),
		FrontendDir:       getEnv("HAVEN_FRONTEND_DIR", filepath.Clean(filepath.Join("..", "frontend", "dist"))),
		SessionCookieName: getEnv("HAVEN_SESSION_COOKIE", "haven_session"),
		SessionSecret:     getEnv("HAVEN_SESSION_SECRET", "dev-only-session-secret"),
		NotifyURL:         getEnv("HAVEN_NOTIFY_URL", ""),
	}

	lifetime, err := time.ParseDuration(getEnv("HAVEN_SESSION_LIFETIME", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HAVEN_SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production hardening
// (secure cookies, generic error bodies).
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
