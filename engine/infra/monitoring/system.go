package monitoring

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wishub-ai/wishub-mcp/pkg/logger"
	"github.com/wishub-ai/wishub-mcp/pkg/version"
)

const (
	appInfoMetric = "wishub_mcp_app_info"
	uptimeMetric  = "wishub_mcp_uptime_seconds"

	appName = "wishub-mcp"
)

var (
	appInfo            metric.Float64Gauge
	uptimeGauge        metric.Float64ObservableGauge
	uptimeRegistration metric.Registration
	startTime          time.Time
	systemInitOnce     sync.Once
	systemResetMutex   sync.Mutex
)

// initSystemMetrics initializes application-level metrics
func initSystemMetrics(ctx context.Context, meter metric.Meter) {
	log := logger.FromContext(ctx)
	systemInitOnce.Do(func() {
		var err error
		appInfo, err = meter.Float64Gauge(
			appInfoMetric,
			metric.WithDescription("Application information (value=1)"),
		)
		if err != nil {
			log.Error("Failed to create app info gauge", "error", err)
		}
		uptimeGauge, err = meter.Float64ObservableGauge(
			uptimeMetric,
			metric.WithDescription("Service uptime in seconds"),
		)
		if err != nil {
			log.Error("Failed to create uptime gauge", "error", err)
			return
		}
		startTime = time.Now()
		uptimeRegistration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveFloat64(uptimeGauge, time.Since(startTime).Seconds())
			return nil
		}, uptimeGauge)
		if err != nil {
			log.Error("Failed to register uptime callback", "error", err)
		}
	})
}

// recordAppInfo records the application info gauge with name and version labels
func recordAppInfo(ctx context.Context) {
	if appInfo == nil {
		return
	}
	v := version.GetVersion()
	appInfo.Record(ctx, 1,
		metric.WithAttributes(
			attribute.String("name", appName),
			attribute.String("version", v),
		),
	)
	logger.FromContext(ctx).Info("System metrics initialized", "name", appName, "version", v)
}

// InitSystemMetrics initializes application metrics and records app info
func InitSystemMetrics(ctx context.Context, meter metric.Meter) {
	initSystemMetrics(ctx, meter)
	recordAppInfo(ctx)
}

// resetSystemMetrics is used for testing purposes only
func resetSystemMetrics(ctx context.Context) {
	if uptimeRegistration != nil {
		if err := uptimeRegistration.Unregister(); err != nil {
			logger.FromContext(ctx).Error("Failed to unregister uptime callback during reset", "error", err)
		}
		uptimeRegistration = nil
	}
	appInfo = nil
	uptimeGauge = nil
	startTime = time.Time{}
	systemInitOnce = sync.Once{}
}

// ResetSystemMetricsForTesting resets the system metrics initialization state
// for testing. This should only be used in tests to ensure clean state
// between test runs.
func ResetSystemMetricsForTesting() {
	systemResetMutex.Lock()
	defer systemResetMutex.Unlock()
	resetSystemMetrics(context.Background())
}
