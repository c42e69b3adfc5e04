package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secret
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	// Engine tuning
	if c.Policy.CacheTTL <= 0 {
		errs = append(errs, "POLICY_CACHE_TTL must be positive")
	}
	if c.Policy.JanitorInterval <= 0 {
		errs = append(errs, "POLICY_JANITOR_INTERVAL must be positive")
	}
	if c.Policy.LedgerRetentionDays < 1 {
		errs = append(errs, fmt.Sprintf("POLICY_LEDGER_RETENTION_DAYS must be at least 1, got %d", c.Policy.LedgerRetentionDays))
	}
	if c.RateLimit.CheckMaxPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("RATELIMIT_CHECK_PER_MINUTE must be at least 1, got %d", c.RateLimit.CheckMaxPerMinute))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
