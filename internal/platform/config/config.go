// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
honoured when present (development convenience), but real environment variables
always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Reconciler) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Cursor Policies

const (
	// CursorPolicyLegacy advances the favourites cursor to the client-submitted
	// timestamp and the history cursor to server time.
	CursorPolicyLegacy = "legacy"

	// CursorPolicyServer advances both cursors to server time.
	CursorPolicyServer = "server"
)

// # Configuration Schema

// Config holds all runtime configuration for the sync server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"json"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Key-Value Cache (Redis). Empty disables the snapshot cache.
	RedisURL         string        `env:"REDIS_URL"`
	SnapshotCacheTTL time.Duration `env:"SNAPSHOT_CACHE_TTL" envDefault:"5m"`

	// Token signing (HS256)
	JWTSecret   string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer   string        `env:"JWT_ISSUER"   envDefault:"yomira-sync"`
	JWTAudience string        `env:"JWT_AUDIENCE" envDefault:"yomira-sync"`
	JWTTTL      time.Duration `env:"JWT_TTL"      envDefault:"24h"`

	// AllowRegistration lets POST /auth create accounts for unknown emails.
	AllowRegistration bool `env:"ALLOW_REGISTRATION" envDefault:"true"`

	// Synchronization
	CursorPolicy string `env:"SYNC_CURSOR_POLICY" envDefault:"legacy"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES"     envDefault:"52428800"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is the normal production case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects values that parse but make no sense.
func (c *Config) validate() error {
	switch c.CursorPolicy {
	case CursorPolicyLegacy, CursorPolicyServer:
	default:
		return fmt.Errorf("config: SYNC_CURSOR_POLICY must be %q or %q, got %q",
			CursorPolicyLegacy, CursorPolicyServer, c.CursorPolicy)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}

	if c.JWTTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive, got %s", c.JWTTTL)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CacheEnabled reports whether a Redis URL was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}
