package mcp

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/conversation"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

const instrumentationName = "github.com/fyrsmithlabs/folio/internal/mcp"

// Metrics counts tool calls, their latency and failures.
type Metrics struct {
	calls    metric.Int64Counter
	latency  metric.Float64Histogram
	failures metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewMetrics creates instruments on mp, or on the global provider when mp
// is nil. Instruments that fail to register are skipped.
func NewMetrics(mp metric.MeterProvider, logger *zap.Logger) *Metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := mp.Meter(instrumentationName)
	m := &Metrics{}
	var err error

	if m.calls, err = meter.Int64Counter(
		"folio.mcp.tool.calls_total",
		metric.WithDescription("MCP tool calls by tool."),
		metric.WithUnit("{call}"),
	); err != nil {
		logger.Warn("failed to create tool call counter", zap.Error(err))
	}
	if m.latency, err = meter.Float64Histogram(
		"folio.mcp.tool.duration_seconds",
		metric.WithDescription("MCP tool call duration by tool."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		logger.Warn("failed to create tool duration histogram", zap.Error(err))
	}
	if m.failures, err = meter.Int64Counter(
		"folio.mcp.tool.failures_total",
		metric.WithDescription("Failed MCP tool calls by tool and reason."),
		metric.WithUnit("{call}"),
	); err != nil {
		logger.Warn("failed to create tool failure counter", zap.Error(err))
	}
	if m.inflight, err = meter.Int64UpDownCounter(
		"folio.mcp.tool.inflight",
		metric.WithDescription("MCP tool calls in progress."),
		metric.WithUnit("{call}"),
	); err != nil {
		logger.Warn("failed to create inflight gauge", zap.Error(err))
	}
	return m
}

// Track marks the start of a call to tool. The returned func records the
// outcome and must be called exactly once.
func (m *Metrics) Track(ctx context.Context, tool string) func(error) {
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("tool", tool))
	if m.inflight != nil {
		m.inflight.Add(ctx, 1, attrs)
	}
	return func(err error) {
		if m.inflight != nil {
			m.inflight.Add(ctx, -1, attrs)
		}
		if m.calls != nil {
			m.calls.Add(ctx, 1, attrs)
		}
		if m.latency != nil {
			m.latency.Record(ctx, time.Since(start).Seconds(), attrs)
		}
		if err != nil && m.failures != nil {
			m.failures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("tool", tool),
				attribute.String("reason", failureReason(err)),
			))
		}
	}
}

// failureReason maps an error to a low-cardinality label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, cms.ErrValidation):
		return "invalid_input"
	case errors.Is(err, conversation.ErrSessionEnded):
		return "session_ended"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
