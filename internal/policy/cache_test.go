package policy

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, ttl), mr
}

func TestCache_SetAndGet(t *testing.T) {
	c, _ := setupCache(t, time.Minute)
	ctx := context.Background()

	cfg := DefaultConfig(uuid.New())
	c.Set(ctx, &cfg)

	got := c.Get(ctx, cfg.UserID)
	require.NotNil(t, got)
	assert.Equal(t, cfg.UserID, got.UserID)
	assert.True(t, got.MaxSinglePayment.Equal(cfg.MaxSinglePayment))
	assert.True(t, got.MaxDailyLimit.Equal(cfg.MaxDailyLimit))
	assert.Equal(t, cfg.NightHourStart, got.NightHourStart)
}

func TestCache_MissReturnsNil(t *testing.T) {
	c, _ := setupCache(t, time.Minute)
	assert.Nil(t, c.Get(context.Background(), uuid.New()))
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := setupCache(t, time.Minute)
	ctx := context.Background()

	cfg := DefaultConfig(uuid.New())
	c.Set(ctx, &cfg)
	c.Invalidate(ctx, cfg.UserID)

	assert.Nil(t, c.Get(ctx, cfg.UserID))
}

func TestCache_TTLExpiry(t *testing.T) {
	c, mr := setupCache(t, 30*time.Second)
	ctx := context.Background()

	cfg := DefaultConfig(uuid.New())
	c.Set(ctx, &cfg)

	mr.FastForward(31 * time.Second)

	assert.Nil(t, c.Get(ctx, cfg.UserID))
}

func TestCache_RedisDownIsAMiss(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	cfg := DefaultConfig(uuid.New())
	c.Set(ctx, &cfg)
	mr.Close()

	assert.Nil(t, c.Get(ctx, cfg.UserID))
}
