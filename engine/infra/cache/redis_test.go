package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishub-ai/wishub-mcp/pkg/config"
)

func testCacheConfig(_ *testing.T, mr *miniredis.Miniredis) *Config {
	return &Config{
		CacheConfig: &config.CacheConfig{Enabled: true, TTL: time.Hour, KeyPrefix: "wishub_mcp"},
		RedisConfig: &config.RedisConfig{
			Host:        mr.Host(),
			Port:        mr.Port(),
			PoolSize:    2,
			PingTimeout: 5 * time.Second,
		},
	}
}

func TestNewRedis(t *testing.T) {
	t.Run("Should connect and pass a health check", func(t *testing.T) {
		mr := miniredis.RunT(t)
		r, err := NewRedis(context.Background(), testCacheConfig(t, mr))
		require.NoError(t, err)
		defer r.Close()

		require.NoError(t, r.HealthCheck(context.Background()))
	})

	t.Run("Should connect through a Redis URL", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testCacheConfig(t, mr)
		cfg.RedisConfig.URL = "redis://" + mr.Addr()

		r, err := NewRedis(context.Background(), cfg)
		require.NoError(t, err)
		defer r.Close()

		require.NoError(t, r.Ping(context.Background()).Err())
	})

	t.Run("Should reject a nil config", func(t *testing.T) {
		r, err := NewRedis(context.Background(), nil)
		assert.Nil(t, r)
		require.Error(t, err)
	})

	t.Run("Should fail fast when the server is unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testCacheConfig(t, mr)
		cfg.RedisConfig.PingTimeout = 500 * time.Millisecond
		mr.Close()

		r, err := NewRedis(context.Background(), cfg)
		assert.Nil(t, r)
		require.Error(t, err)
	})
}

func TestSetupCache(t *testing.T) {
	t.Run("Should wire the response cache over the connection", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, err := SetupCache(context.Background(), testCacheConfig(t, mr), nil)
		require.NoError(t, err)
		defer c.Close()

		require.NotNil(t, c.Redis)
		require.NotNil(t, c.Response)
		require.NoError(t, c.HealthCheck(context.Background()))

		ctx := context.Background()
		key := c.Response.Key("gpt-4", "q", nil, 0.7, 2000)
		require.NoError(t, c.Response.Set(ctx, key, &CachedResponse{Response: "cached", TokensUsed: 10}))
		entry, ok := c.Response.Get(ctx, key)
		require.True(t, ok)
		assert.Equal(t, "cached", entry.Response)
		assert.Equal(t, 10, entry.TokensUsed)
	})

	t.Run("Should close idempotently", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, err := SetupCache(context.Background(), testCacheConfig(t, mr), nil)
		require.NoError(t, err)

		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
	})

	t.Run("Should reject a nil config", func(t *testing.T) {
		c, err := SetupCache(context.Background(), nil, nil)
		assert.Nil(t, c)
		require.Error(t, err)
	})
}
