package vectorstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "vectorstore",
		Name:      "operations_total",
		Help:      "Vector store operations by operation and result.",
	}, []string{"operation", "result"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "folio",
		Subsystem: "vectorstore",
		Name:      "query_duration_seconds",
		Help:      "Similarity query latency including query embedding.",
		Buckets:   prometheus.DefBuckets,
	})

	documentsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "folio",
		Subsystem: "vectorstore",
		Name:      "documents",
		Help:      "Stored chunks per collection.",
	}, []string{"collection"})
)

func recordOperation(op string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(op, result).Inc()
}
