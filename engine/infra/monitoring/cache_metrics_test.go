package monitoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestCacheMetrics_RecordCacheOperation(t *testing.T) {
	t.Run("Should count operations by operation and status", func(t *testing.T) {
		reader, provider := newTestMeter()
		m, err := NewCacheMetrics(provider.Meter("test"))
		require.NoError(t, err)

		ctx := context.Background()
		m.RecordCacheOperation(ctx, "get", "hit")
		m.RecordCacheOperation(ctx, "get", "hit")
		m.RecordCacheOperation(ctx, "get", "miss")
		m.RecordCacheOperation(ctx, "set", "success")

		rm := collectMetrics(t, reader)
		ops, ok := metricByName(&rm, cacheOperationsMetric)
		require.True(t, ok)

		hits, ok := sumByAttrs(ops,
			attribute.String("operation", "get"),
			attribute.String("status", "hit"),
		)
		require.True(t, ok)
		assert.Equal(t, int64(2), hits)

		misses, ok := sumByAttrs(ops,
			attribute.String("operation", "get"),
			attribute.String("status", "miss"),
		)
		require.True(t, ok)
		assert.Equal(t, int64(1), misses)

		sets, ok := sumByAttrs(ops,
			attribute.String("operation", "set"),
			attribute.String("status", "success"),
		)
		require.True(t, ok)
		assert.Equal(t, int64(1), sets)
	})

	t.Run("Should no-op with a nil meter", func(t *testing.T) {
		m, err := NewCacheMetrics(nil)
		require.NoError(t, err)
		assert.NotPanics(t, func() {
			m.RecordCacheOperation(context.Background(), "get", "hit")
			m.SetRedisConnectionStatus(context.Background(), true)
		})
	})
}

func TestCacheMetrics_SetRedisConnectionStatus(t *testing.T) {
	t.Run("Should publish 1 when connected and 0 when not", func(t *testing.T) {
		reader, provider := newTestMeter()
		m, err := NewCacheMetrics(provider.Meter("test"))
		require.NoError(t, err)

		ctx := context.Background()
		m.SetRedisConnectionStatus(ctx, true)

		rm := collectMetrics(t, reader)
		status, ok := metricByName(&rm, redisStatusMetric)
		require.True(t, ok)
		gauge, ok := status.Data.(metricdata.Gauge[int64])
		require.True(t, ok)
		require.Len(t, gauge.DataPoints, 1)
		assert.Equal(t, int64(1), gauge.DataPoints[0].Value)

		m.SetRedisConnectionStatus(ctx, false)
		rm = collectMetrics(t, reader)
		status, ok = metricByName(&rm, redisStatusMetric)
		require.True(t, ok)
		gauge, ok = status.Data.(metricdata.Gauge[int64])
		require.True(t, ok)
		require.Len(t, gauge.DataPoints, 1)
		assert.Equal(t, int64(0), gauge.DataPoints[0].Value)
	})
}
