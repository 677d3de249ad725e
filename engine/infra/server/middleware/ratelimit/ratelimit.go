package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/wishub-ai/wishub-mcp/engine/mcp"
	"github.com/wishub-ai/wishub-mcp/pkg/config"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

const (
	defaultLimit  = 100
	defaultPeriod = time.Minute
	defaultPrefix = "wishub_mcp:ratelimit"
)

// Manager applies a per-client request rate limit. Clients are keyed by IP;
// the counter lives in Redis when a client is supplied and in process
// memory otherwise.
type Manager struct {
	limiter  *limiter.Limiter
	excluded map[string]struct{}
}

// NewManager builds a rate limit manager from configuration. redisClient
// may be nil; the manager then falls back to an in-memory store, which is
// fine for a single instance but not shared across replicas.
func NewManager(cfg *config.RateLimitConfig, redisClient sredis.Client) (*Manager, error) {
	rate := limiter.Rate{Limit: defaultLimit, Period: defaultPeriod}
	prefix := defaultPrefix
	var excludedPaths []string
	if cfg != nil {
		if cfg.Limit > 0 {
			rate.Limit = cfg.Limit
		}
		if cfg.Period > 0 {
			rate.Period = cfg.Period
		}
		if cfg.Prefix != "" {
			prefix = cfg.Prefix
		}
		excludedPaths = cfg.ExcludedPaths
	}

	var store limiter.Store
	if redisClient != nil {
		s, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix:   prefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
		store = s
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}

	m := &Manager{
		limiter:  limiter.New(store, rate),
		excluded: make(map[string]struct{}, len(excludedPaths)),
	}
	for _, p := range excludedPaths {
		if p = strings.TrimSpace(p); p != "" {
			m.excluded[p] = struct{}{}
		}
	}
	return m, nil
}

// Middleware returns the gin handler enforcing the limit. Throttled
// requests receive 429 with standard X-RateLimit headers; store failures
// let the request through rather than blocking traffic.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.excluded[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		lctx, err := m.limiter.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("rate limit store unavailable, allowing request",
				"error", err)
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))
		if lctx.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  mcp.StatusError,
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
