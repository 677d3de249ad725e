package monitoring

import (
	"context"
	"time"

	"github.com/wishub-ai/wishub-mcp/engine/mcp"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

// Dependency names reported in the health payload.
const (
	DependencyRedis      = "redis"
	DependencyWisHubCore = "wishub_core"
)

const wishubCheckTimeout = 5 * time.Second

// DependencyChecker verifies one downstream dependency is reachable.
type DependencyChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthChecker probes the gateway's dependencies and aggregates their
// states. Nil checkers are skipped so partially wired deployments still
// report on what they have.
type HealthChecker struct {
	redis   DependencyChecker
	wishub  DependencyChecker
	metrics *CacheMetrics
}

// NewHealthChecker builds a checker over the given dependencies. metrics may
// be nil when monitoring is disabled.
func NewHealthChecker(redis, wishub DependencyChecker, metrics *CacheMetrics) *HealthChecker {
	return &HealthChecker{
		redis:   redis,
		wishub:  wishub,
		metrics: metrics,
	}
}

// Check probes every configured dependency and returns the overall status
// together with the per-dependency detail.
func (h *HealthChecker) Check(ctx context.Context) (string, map[string]mcp.DependencyHealth) {
	deps := make(map[string]mcp.DependencyHealth)
	if h.redis != nil {
		deps[DependencyRedis] = h.checkRedis(ctx)
	}
	if h.wishub != nil {
		deps[DependencyWisHubCore] = h.checkWisHub(ctx)
	}
	return OverallStatus(deps), deps
}

func (h *HealthChecker) checkRedis(ctx context.Context) mcp.DependencyHealth {
	log := logger.FromContext(ctx)
	start := time.Now()
	err := h.redis.HealthCheck(ctx)
	latency := elapsedMS(start)
	h.metrics.SetRedisConnectionStatus(ctx, err == nil)
	if err != nil {
		log.Error("Redis health check failed", "error", err)
		return mcp.DependencyHealth{
			Status:    mcp.HealthStatusUnhealthy,
			LatencyMS: latency,
			Message:   err.Error(),
		}
	}
	log.Debug("Redis health check passed", "latency_ms", latency)
	return mcp.DependencyHealth{
		Status:    mcp.HealthStatusHealthy,
		LatencyMS: latency,
	}
}

func (h *HealthChecker) checkWisHub(ctx context.Context) mcp.DependencyHealth {
	log := logger.FromContext(ctx)
	checkCtx, cancel := context.WithTimeout(ctx, wishubCheckTimeout)
	defer cancel()
	start := time.Now()
	err := h.wishub.HealthCheck(checkCtx)
	latency := elapsedMS(start)
	if err != nil {
		log.Error("WisHub Core health check failed", "error", err)
		return mcp.DependencyHealth{
			Status:    mcp.HealthStatusUnhealthy,
			LatencyMS: latency,
			Message:   err.Error(),
		}
	}
	log.Debug("WisHub Core health check passed", "latency_ms", latency)
	return mcp.DependencyHealth{
		Status:    mcp.HealthStatusHealthy,
		LatencyMS: latency,
	}
}

// OverallStatus folds per-dependency states into one service status: all
// healthy reports healthy, any unhealthy reports unhealthy, anything else
// reports degraded.
func OverallStatus(deps map[string]mcp.DependencyHealth) string {
	allHealthy := true
	for _, dep := range deps {
		switch dep.Status {
		case mcp.HealthStatusUnhealthy:
			return mcp.HealthStatusUnhealthy
		case mcp.HealthStatusHealthy:
		default:
			allHealthy = false
		}
	}
	if allHealthy {
		return mcp.HealthStatusHealthy
	}
	return mcp.HealthStatusDegraded
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
