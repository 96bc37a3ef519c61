package llm

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/folio/internal/llm"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "llm",
		Name:      "requests_total",
		Help:      "Language model completions by provider and outcome.",
	}, []string{"provider", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "folio",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Latency of language model completions.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
	}, []string{"provider"})

	tokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "llm",
		Name:      "tokens_total",
		Help:      "Tokens reported by the provider, by direction.",
	}, []string{"provider", "direction"})
)

type instrumented struct {
	next   Client
	logger *zap.Logger
}

// Instrument records metrics, a span and a debug log line for every call.
func Instrument(c Client, logger *zap.Logger) Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &instrumented{next: c, logger: logger.Named("llm")}
}

func (i *instrumented) Available() bool  { return i.next.Available() }
func (i *instrumented) Provider() string { return i.next.Provider() }

func (i *instrumented) Complete(ctx context.Context, req Request) (Response, error) {
	provider := i.next.Provider()
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "llm.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", provider),
		attribute.Int("llm.messages", len(req.Messages)),
	)

	start := time.Now()
	resp, err := i.next.Complete(ctx, req)
	elapsed := time.Since(start)
	requestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())

	if err != nil {
		outcome := "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = "canceled"
		}
		requestsTotal.WithLabelValues(provider, outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		i.logger.Warn("completion failed",
			zap.String("provider", provider),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return resp, err
	}

	requestsTotal.WithLabelValues(provider, "ok").Inc()
	tokensTotal.WithLabelValues(provider, "input").Add(float64(resp.InputTokens))
	tokensTotal.WithLabelValues(provider, "output").Add(float64(resp.OutputTokens))
	span.SetAttributes(
		attribute.Int("llm.input_tokens", resp.InputTokens),
		attribute.Int("llm.output_tokens", resp.OutputTokens),
	)
	i.logger.Debug("completion done",
		zap.String("provider", provider),
		zap.Duration("elapsed", elapsed),
		zap.Int("input_tokens", resp.InputTokens),
		zap.Int("output_tokens", resp.OutputTokens))
	return resp, nil
}
