// Package config loads the server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds runtime settings for the server.
type Config struct {
	Port          string
	StoreDriver   string
	DatabasePath  string
	JWTSecret     string
	CredentialTTL time.Duration
	PasswordHash  string
	BcryptCost    int

	AllowedOrigins []string
	RedisURL       string
	AuthRatePerSec float64
	AuthRateBurst  int

	SeedDemo     bool
	SeedPassword string
	LogLevel     slog.Level
}

// Load reads .env (if present) and then the process environment. Variables
// already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:         envOrDefault("PORT", "5001"),
		StoreDriver:  envOrDefault("STORE_DRIVER", StoreMemory),
		DatabasePath: envOrDefault("DATABASE_PATH", "irhis.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		PasswordHash: envOrDefault("PASSWORD_HASH", "argon2id"),
		RedisURL:     os.Getenv("REDIS_URL"),
		SeedPassword: os.Getenv("SEED_PASSWORD"),
	}

	var err error
	if cfg.CredentialTTL, err = time.ParseDuration(envOrDefault("CREDENTIAL_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid CREDENTIAL_TTL: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(envOrDefault("BCRYPT_COST", "12")); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.AuthRatePerSec, err = strconv.ParseFloat(envOrDefault("AUTH_RATE_PER_SEC", "1"), 64); err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_PER_SEC: %w", err)
	}
	if cfg.AuthRateBurst, err = strconv.Atoi(envOrDefault("AUTH_RATE_BURST", "10")); err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_BURST: %w", err)
	}
	if cfg.SeedDemo, err = strconv.ParseBool(envOrDefault("SEED_DEMO", "false")); err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.AllowedOrigins = splitList(envOrDefault("ALLOWED_ORIGINS", "*"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.CredentialTTL <= 0 {
		return fmt.Errorf("CREDENTIAL_TTL must be positive, got %s", c.CredentialTTL)
	}
	if c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StoreSQLite, c.StoreDriver)
	}
	if c.PasswordHash != "argon2id" && c.PasswordHash != "bcrypt" {
		return fmt.Errorf("PASSWORD_HASH must be argon2id or bcrypt, got %q", c.PasswordHash)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.AuthRatePerSec < 0 || c.AuthRateBurst < 1 {
		return errors.New("AUTH_RATE_PER_SEC must be >= 0 and AUTH_RATE_BURST >= 1")
	}
	if c.SeedDemo && c.SeedPassword == "" {
		return errors.New("SEED_PASSWORD is required when SEED_DEMO is enabled")
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
