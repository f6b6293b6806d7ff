// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration values for the API server and the seed command.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" env-default:"8080"`

	// LogLevel controls the minimum log level: debug, info, warn or error.
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// DatabaseURL is the Postgres connection string.
	// Empty selects the in-memory store, whose contents are lost on exit.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrateOnStart applies the embedded migrations before serving.
	// Ignored for the in-memory store.
	MigrateOnStart bool `env:"MIGRATE_ON_START" env-default:"true"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// The default is the local dev-server origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:5174,http://localhost:3000,http://localhost:4173,http://localhost:8080,http://localhost:8081"`

	// RedisURL enables the list cache when set, e.g. redis://localhost:6379/0.
	RedisURL string `env:"REDIS_URL"`

	// CacheTTL bounds how long a cached list result lives.
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"60s"`

	// MaxBodyBytes caps request body size. 0 disables the cap.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" env-default:"1048576"`
}

// UsesMemoryStore reports whether no database is configured.
func (c Config) UsesMemoryStore() bool {
	return c.DatabaseURL == ""
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming every variable whose value is invalid.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	cfg.CORSOrigins = trimList(cfg.CORSOrigins)

	var errs []error
	if n, err := strconv.Atoi(cfg.Port); err != nil || n < 1 || n > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a TCP port number, got %q", cfg.Port))
	}
	if cfg.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL))
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must not be negative, got %d", cfg.MaxBodyBytes))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// trimList trims each entry and drops empty ones.
func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
