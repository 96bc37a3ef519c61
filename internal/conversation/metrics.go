package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_conversation_sessions_total",
		Help: "Conversation session lifecycle events (started, ended, deleted).",
	}, []string{"event"})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_conversation_messages_total",
		Help: "Recorded chat messages by role.",
	}, []string{"role"})

	memoriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_conversation_memories_total",
		Help: "Extracted memories by kind and outcome (stored, dropped, duplicate, evicted).",
	}, []string{"kind", "result"})

	summaryFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_conversation_summary_fallbacks_total",
		Help: "Session summaries produced heuristically because the LLM was unavailable or failed.",
	})
)
