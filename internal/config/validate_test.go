package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "paylynx",
			Password: "secret", Name: "paylynx", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			AccessSecret: "access-secret-that-is-at-least-32-chars!",
		},
		Policy: PolicyConfig{
			CacheTTL:            30 * time.Second,
			LedgerRetentionDays: 90,
			JanitorInterval:     6 * time.Hour,
		},
		RateLimit: RateLimitConfig{CheckMaxPerMinute: 60},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTAccessSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected JWT_ACCESS_SECRET error, got: %v", err)
	}
}

func TestValidate_MissingDBPassword(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_BadPorts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Redis.Port = 70000
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") || !strings.Contains(err.Error(), "REDIS_PORT") {
		t.Fatalf("expected both port errors, got: %v", err)
	}
}

func TestValidate_EngineTuning(t *testing.T) {
	cfg := validConfig()
	cfg.Policy.CacheTTL = 0
	cfg.Policy.LedgerRetentionDays = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "POLICY_CACHE_TTL") || !strings.Contains(err.Error(), "POLICY_LEDGER_RETENTION_DAYS") {
		t.Fatalf("expected tuning errors, got: %v", err)
	}
}

func TestValidate_JanitorIntervalMustBePositive(t *testing.T) {
	// A zero or negative interval would panic in time.NewTicker after
	// startup; it has to be caught here instead.
	for _, interval := range []time.Duration{0, -time.Hour} {
		cfg := validConfig()
		cfg.Policy.JanitorInterval = interval
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "POLICY_JANITOR_INTERVAL") {
			t.Fatalf("interval %v: expected POLICY_JANITOR_INTERVAL error, got: %v", interval, err)
		}
	}
}
