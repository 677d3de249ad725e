package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	aiInvocationsMetric       = "wishub_mcp_ai_invocations_total"
	aiInvocationLatencyMetric = "wishub_mcp_ai_invocation_duration_seconds"
	aiTokensMetric            = "wishub_mcp_ai_tokens_total"

	labelModel     = "model"
	labelStatus    = "status"
	labelTokenType = "type"

	tokenTypePrompt     = "prompt"
	tokenTypeCompletion = "completion"
	tokenTypeTotal      = "total"
)

// Invocation status label values.
const (
	InvocationSuccess = "success"
	InvocationError   = "error"
	InvocationCached  = "cached"
)

// Generation round trips run from sub-second cache paths to minute-long
// completions.
var invocationLatencyBuckets = []float64{
	0.01,
	0.05,
	0.1,
	0.25,
	0.5,
	1,
	2.5,
	5,
	10,
	30,
	60,
	120,
}

func createInt64Counter(meter metric.Meter, name, description string) (metric.Int64Counter, error) {
	counter, err := meter.Int64Counter(
		name,
		metric.WithDescription(description),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create counter %q: %w", name, err)
	}
	return counter, nil
}

func createFloat64Histogram(
	meter metric.Meter,
	name string,
	description string,
	unit string,
	buckets []float64,
) (metric.Float64Histogram, error) {
	options := []metric.Float64HistogramOption{
		metric.WithDescription(description),
		metric.WithUnit(unit),
	}
	if len(buckets) > 0 {
		options = append(options, metric.WithExplicitBucketBoundaries(buckets...))
	}
	histogram, err := meter.Float64Histogram(name, options...)
	if err != nil {
		return nil, fmt.Errorf("create histogram %q: %w", name, err)
	}
	return histogram, nil
}

// InvocationMetrics records generation pipeline outcomes per model.
type InvocationMetrics struct {
	invocations metric.Int64Counter
	latency     metric.Float64Histogram
	tokens      metric.Int64Counter
}

// NewInvocationMetrics builds the invocation instruments on meter. A nil
// meter yields an instance whose record methods are no-ops.
func NewInvocationMetrics(meter metric.Meter) (*InvocationMetrics, error) {
	if meter == nil {
		return &InvocationMetrics{}, nil
	}
	invocations, err := createInt64Counter(
		meter,
		aiInvocationsMetric,
		"Total AI model invocations",
	)
	if err != nil {
		return nil, err
	}
	latency, err := createFloat64Histogram(
		meter,
		aiInvocationLatencyMetric,
		"AI invocation latency",
		"s",
		invocationLatencyBuckets,
	)
	if err != nil {
		return nil, err
	}
	tokens, err := createInt64Counter(
		meter,
		aiTokensMetric,
		"Total AI tokens used",
	)
	if err != nil {
		return nil, err
	}
	return &InvocationMetrics{
		invocations: invocations,
		latency:     latency,
		tokens:      tokens,
	}, nil
}

// RecordInvocation records one pipeline outcome. Token counters only move
// when the corresponding count is positive, so error paths leave no empty
// series behind.
func (m *InvocationMetrics) RecordInvocation(
	ctx context.Context,
	model string,
	status string,
	duration time.Duration,
	promptTokens int,
	completionTokens int,
	totalTokens int,
) {
	if m == nil {
		return
	}
	modelAttr := attribute.String(labelModel, model)
	if m.invocations != nil {
		m.invocations.Add(ctx, 1, metric.WithAttributes(
			modelAttr,
			attribute.String(labelStatus, status),
		))
	}
	if m.latency != nil {
		m.latency.Record(ctx, duration.Seconds(), metric.WithAttributes(modelAttr))
	}
	if m.tokens == nil {
		return
	}
	if promptTokens > 0 {
		m.tokens.Add(ctx, int64(promptTokens), metric.WithAttributes(
			modelAttr,
			attribute.String(labelTokenType, tokenTypePrompt),
		))
	}
	if completionTokens > 0 {
		m.tokens.Add(ctx, int64(completionTokens), metric.WithAttributes(
			modelAttr,
			attribute.String(labelTokenType, tokenTypeCompletion),
		))
	}
	if totalTokens > 0 {
		m.tokens.Add(ctx, int64(totalTokens), metric.WithAttributes(
			modelAttr,
			attribute.String(labelTokenType, tokenTypeTotal),
		))
	}
}
