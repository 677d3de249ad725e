package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

// MetricsRecorder receives cache operation outcomes for export.
type MetricsRecorder interface {
	RecordCacheOperation(ctx context.Context, operation string, status string)
}

// Cache operation and status labels.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
	OpClear  = "clear"

	StatusHit     = "hit"
	StatusMiss    = "miss"
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	defaultKeyPrefix = "wishub_mcp"
	defaultEntryTTL  = time.Hour
	scanBatchSize    = 100
)

// Stats is a point-in-time snapshot of cache effectiveness. Hit and miss
// counters are process-local; TotalKeys reflects the Redis database size.
type Stats struct {
	Enabled   bool    `json:"enabled"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	TotalKeys int64   `json:"total_keys"`
}

// CachedResponse is the envelope stored for each cache entry.
type CachedResponse struct {
	Response   string `json:"response"`
	TokensUsed int    `json:"tokens_used"`
}

// ResponseCache stores generated responses keyed by invocation fingerprint.
// Every operation degrades to a no-op or a miss when the cache is disabled
// or Redis misbehaves, so callers never fail an invocation on cache errors.
type ResponseCache struct {
	redis   RedisInterface
	config  *Config
	metrics MetricsRecorder

	hits   atomic.Int64
	misses atomic.Int64
}

// NewResponseCache builds a response cache over redis. metrics may be nil.
func NewResponseCache(redis RedisInterface, cfg *Config, metrics MetricsRecorder) *ResponseCache {
	return &ResponseCache{redis: redis, config: cfg, metrics: metrics}
}

// Enabled reports whether the cache will actually serve reads and writes.
func (c *ResponseCache) Enabled() bool {
	return c != nil &&
		c.redis != nil &&
		c.config != nil &&
		c.config.CacheConfig != nil &&
		c.config.CacheConfig.Enabled
}

// Key derives the fingerprint cache key for one invocation.
func (c *ResponseCache) Key(
	modelID string,
	prompt string,
	contextData map[string]any,
	temperature float64,
	maxTokens int,
) string {
	return Fingerprint(c.prefix(), modelID, prompt, contextData, temperature, maxTokens)
}

// Get returns the cached response for key. Errors and corrupt entries are
// logged and reported as misses.
func (c *ResponseCache) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	if !c.Enabled() {
		return nil, false
	}
	value, err := c.redis.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		c.record(ctx, OpGet, StatusMiss)
		return nil, false
	case err != nil:
		c.misses.Add(1)
		c.record(ctx, OpGet, StatusError)
		logger.FromContext(ctx).Warn("cache lookup failed, treating as miss", "error", err)
		return nil, false
	}
	var entry CachedResponse
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		c.misses.Add(1)
		c.record(ctx, OpGet, StatusError)
		logger.FromContext(ctx).Warn("cache entry is corrupt, treating as miss", "key", key, "error", err)
		return nil, false
	}
	c.hits.Add(1)
	c.record(ctx, OpGet, StatusHit)
	return &entry, true
}

// Set stores entry under key with the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, entry *CachedResponse) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		c.record(ctx, OpSet, StatusError)
		return fmt.Errorf("cache entry marshal failed: %w", err)
	}
	ttl := c.config.TTL
	if ttl <= 0 {
		ttl = defaultEntryTTL
	}
	if err := c.redis.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.record(ctx, OpSet, StatusError)
		return fmt.Errorf("cache set failed: %w", err)
	}
	c.record(ctx, OpSet, StatusSuccess)
	return nil
}

// Delete removes a single cache entry.
func (c *ResponseCache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.record(ctx, OpDelete, StatusError)
		return fmt.Errorf("cache delete failed: %w", err)
	}
	c.record(ctx, OpDelete, StatusSuccess)
	return nil
}

// ClearModel removes every cached entry for modelID using cursor-based
// scans, and returns the number of entries deleted.
func (c *ResponseCache) ClearModel(ctx context.Context, modelID string) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	pattern := c.prefix() + ":" + modelID + ":*"
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.redis.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			c.record(ctx, OpClear, StatusError)
			return deleted, fmt.Errorf("cache scan failed: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.redis.Del(ctx, keys...).Result()
			if err != nil {
				c.record(ctx, OpClear, StatusError)
				return deleted, fmt.Errorf("cache delete failed: %w", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.record(ctx, OpClear, StatusSuccess)
	return deleted, nil
}

// Stats snapshots hit/miss counters and the current Redis key count.
func (c *ResponseCache) Stats(ctx context.Context) Stats {
	stats := Stats{Enabled: c.Enabled()}
	stats.Hits = c.hits.Load()
	stats.Misses = c.misses.Load()
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	if stats.Enabled {
		if n, err := c.redis.DBSize(ctx).Result(); err == nil {
			stats.TotalKeys = n
		} else {
			logger.FromContext(ctx).Warn("failed to read cache key count", "error", err)
		}
	}
	return stats
}

func (c *ResponseCache) prefix() string {
	if c.config != nil && c.config.CacheConfig != nil && c.config.KeyPrefix != "" {
		return c.config.KeyPrefix
	}
	return defaultKeyPrefix
}

func (c *ResponseCache) record(ctx context.Context, operation, status string) {
	if c.metrics != nil {
		c.metrics.RecordCacheOperation(ctx, operation, status)
	}
}
