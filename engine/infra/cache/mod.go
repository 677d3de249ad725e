package cache

import (
	"context"
	"fmt"

	"github.com/wishub-ai/wishub-mcp/pkg/config"
)

// Config combines Redis connection settings with cache behavior settings.
type Config struct {
	*config.CacheConfig
	*config.RedisConfig
}

// FromAppConfig creates a cache Config from the centralized app configuration.
func FromAppConfig(appConfig *config.Config) *Config {
	return &Config{
		CacheConfig: &appConfig.Cache,
		RedisConfig: &appConfig.Redis,
	}
}

// Cache bundles the Redis connection with the response cache built on it.
type Cache struct {
	Redis    *Redis
	Response *ResponseCache
}

// SetupCache connects to Redis and wires the response cache on top of it.
// metrics may be nil when cache operation metrics are not exported.
func SetupCache(ctx context.Context, cfg *Config, metrics MetricsRecorder) (*Cache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}
	redis, err := NewRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Cache{
		Redis:    redis,
		Response: NewResponseCache(redis, cfg, metrics),
	}, nil
}

// Close gracefully shuts down the cache.
func (c *Cache) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}

// HealthCheck performs a health check on the underlying Redis connection.
func (c *Cache) HealthCheck(ctx context.Context) error {
	if c.Redis != nil {
		return c.Redis.HealthCheck(ctx)
	}
	return nil
}
