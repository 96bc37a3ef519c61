package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_assistant_chats_total",
		Help: "Chat turns by reply source (llm, fallback, error).",
	}, []string{"reply"})

	chatDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "folio_assistant_chat_duration_seconds",
		Help:    "End-to-end latency of a chat turn.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
	})
)
