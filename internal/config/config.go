// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jakewray/portfolio/internal/auth"
	"github.com/jakewray/portfolio/internal/domain/model"
)

// Supported values for PORTFOLIO_DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrMissingSecret is returned when PORTFOLIO_SESSION_SECRET is unset or empty.
var ErrMissingSecret = errors.New("PORTFOLIO_SESSION_SECRET is required")

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string

	DBDriver    string
	DBPath      string
	DatabaseURL string

	SessionMode   model.SessionMode
	SessionSecret []byte
	TokenTTL      time.Duration
	CookieMaxAge  time.Duration
	CookieSecure  bool

	BcryptCost int

	GitHubUsername string
	GitHubToken    string
}

// ShowcaseEnabled reports whether a GitHub account is configured for the
// showcase sync. The token is optional and only raises the rate limit.
func (c *Config) ShowcaseEnabled() bool {
	return c.GitHubUsername != ""
}

// Session returns the session manager settings derived from c.
func (c *Config) Session() auth.SessionConfig {
	return auth.SessionConfig{
		Mode:         c.SessionMode,
		Secret:       c.SessionSecret,
		TokenTTL:     c.TokenTTL,
		CookieMaxAge: c.CookieMaxAge,
		CookieSecure: c.CookieSecure,
	}
}

// Load reads configuration from environment variables and returns a validated Config.
// PORTFOLIO_SESSION_SECRET is required and must be at least 32 bytes.
// PORTFOLIO_DATABASE_URL is required when PORTFOLIO_DB_DRIVER is postgres.
// Optional variables with defaults: PORTFOLIO_LISTEN_ADDR (127.0.0.1:8080),
// PORTFOLIO_DB_DRIVER (sqlite), PORTFOLIO_DB_PATH (portfolio.db),
// PORTFOLIO_SESSION_MODE (cookie), PORTFOLIO_TOKEN_TTL (24h),
// PORTFOLIO_COOKIE_MAX_AGE (168h), PORTFOLIO_COOKIE_SECURE (true),
// PORTFOLIO_BCRYPT_COST (10).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     "127.0.0.1:8080",
		DBDriver:       DriverSQLite,
		DBPath:         "portfolio.db",
		DatabaseURL:    os.Getenv("PORTFOLIO_DATABASE_URL"),
		SessionMode:    model.SessionModeCookie,
		TokenTTL:       auth.DefaultTokenTTL,
		CookieMaxAge:   7 * 24 * time.Hour,
		CookieSecure:   true,
		BcryptCost:     auth.DefaultCost,
		GitHubUsername: os.Getenv("PORTFOLIO_GITHUB_USERNAME"),
		GitHubToken:    os.Getenv("PORTFOLIO_GITHUB_TOKEN"),
	}

	if v, ok := os.LookupEnv("PORTFOLIO_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("PORTFOLIO_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("PORTFOLIO_DB_DRIVER"); ok && v != "" {
		switch v {
		case DriverSQLite, DriverPostgres:
			cfg.DBDriver = v
		default:
			return nil, fmt.Errorf("PORTFOLIO_DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, v)
		}
	}
	if cfg.DBDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, errors.New("PORTFOLIO_DATABASE_URL is required when PORTFOLIO_DB_DRIVER is postgres")
	}

	if v, ok := os.LookupEnv("PORTFOLIO_SESSION_MODE"); ok && v != "" {
		mode := model.SessionMode(v)
		if !mode.Valid() {
			return nil, fmt.Errorf("PORTFOLIO_SESSION_MODE must be %q or %q, got %q", model.SessionModeCookie, model.SessionModeToken, v)
		}
		cfg.SessionMode = mode
	}

	secret := os.Getenv("PORTFOLIO_SESSION_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if len(secret) < auth.MinSecretLength {
		return nil, fmt.Errorf("PORTFOLIO_SESSION_SECRET: %w", auth.ErrSecretTooShort)
	}
	cfg.SessionSecret = []byte(secret)

	var err error
	if cfg.TokenTTL, err = durationEnv("PORTFOLIO_TOKEN_TTL", cfg.TokenTTL); err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("PORTFOLIO_TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.CookieMaxAge, err = durationEnv("PORTFOLIO_COOKIE_MAX_AGE", cfg.CookieMaxAge); err != nil {
		return nil, err
	}
	if cfg.CookieMaxAge < 0 {
		return nil, fmt.Errorf("PORTFOLIO_COOKIE_MAX_AGE must not be negative, got %s", cfg.CookieMaxAge)
	}

	if v, ok := os.LookupEnv("PORTFOLIO_COOKIE_SECURE"); ok && v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PORTFOLIO_COOKIE_SECURE has invalid boolean %q: %w", v, err)
		}
		cfg.CookieSecure = secure
	}

	if v, ok := os.LookupEnv("PORTFOLIO_BCRYPT_COST"); ok && v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORTFOLIO_BCRYPT_COST has invalid integer %q: %w", v, err)
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("PORTFOLIO_BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
		}
		cfg.BcryptCost = cost
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}
