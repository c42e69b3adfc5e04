package policy

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const configKeyPrefix = "policy:config:"

// Cache is a Redis look-aside cache for policy configs. Every payment check
// reads the config, so the hot path avoids a Postgres round trip. The cache
// is strictly best-effort: any Redis error is treated as a miss and the
// caller falls through to the store.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewCache creates a Cache with the given entry TTL.
func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get returns the cached config, or nil on miss.
func (c *Cache) Get(ctx context.Context, userID uuid.UUID) *Config {
	data, err := c.rdb.Get(ctx, configKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("policy cache: read failed", "error", err)
		}
		return nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("policy cache: corrupt entry, dropping", "user_id", userID, "error", err)
		c.Invalidate(ctx, userID)
		return nil
	}
	return &cfg
}

// Set stores the config for the TTL.
func (c *Cache) Set(ctx context.Context, cfg *Config) {
	data, err := json.Marshal(cfg)
	if err != nil {
		slog.Warn("policy cache: marshaling config", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, configKeyPrefix+cfg.UserID.String(), data, c.ttl).Err(); err != nil {
		slog.Debug("policy cache: write failed", "error", err)
	}
}

// Invalidate drops the user's cached config. Called after every settings
// update so a stale limit is never enforced longer than one round trip.
func (c *Cache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.rdb.Del(ctx, configKeyPrefix+userID.String()).Err(); err != nil {
		slog.Debug("policy cache: invalidate failed", "error", err)
	}
}
