package monitoring

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wishub-ai/wishub-mcp/engine/infra/cache"
)

const (
	cacheOperationsMetric = "wishub_mcp_cache_operations_total"
	redisStatusMetric     = "wishub_mcp_redis_connection_status"

	labelOperation = "operation"
)

// CacheMetrics records cache operation outcomes and Redis connectivity.
type CacheMetrics struct {
	operations metric.Int64Counter
	connection metric.Int64Gauge
}

var _ cache.MetricsRecorder = (*CacheMetrics)(nil)

// NewCacheMetrics builds the cache instruments on meter. A nil meter yields
// an instance whose record methods are no-ops.
func NewCacheMetrics(meter metric.Meter) (*CacheMetrics, error) {
	if meter == nil {
		return &CacheMetrics{}, nil
	}
	operations, err := createInt64Counter(
		meter,
		cacheOperationsMetric,
		"Total cache operations",
	)
	if err != nil {
		return nil, err
	}
	connection, err := meter.Int64Gauge(
		redisStatusMetric,
		metric.WithDescription("Redis connection status (1=connected, 0=disconnected)"),
	)
	if err != nil {
		return nil, err
	}
	return &CacheMetrics{
		operations: operations,
		connection: connection,
	}, nil
}

// RecordCacheOperation counts one cache operation labeled by operation and
// outcome.
func (m *CacheMetrics) RecordCacheOperation(ctx context.Context, operation, status string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(labelOperation, operation),
		attribute.String(labelStatus, status),
	))
}

// SetRedisConnectionStatus publishes the current Redis connectivity state.
func (m *CacheMetrics) SetRedisConnectionStatus(ctx context.Context, connected bool) {
	if m == nil || m.connection == nil {
		return
	}
	var v int64
	if connected {
		v = 1
	}
	m.connection.Record(ctx, v)
}
