package knowledge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_knowledge_ingest_total",
		Help: "Document ingestions by result (completed, failed, duplicate, rejected, reprocessed).",
	}, []string{"result"})

	ingestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "folio_knowledge_ingest_duration_seconds",
		Help:    "Time to extract, analyse and embed a document.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	chunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_knowledge_chunks_indexed_total",
		Help: "Chunks written to the vector store.",
	})

	analysisFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_knowledge_analysis_fallbacks_total",
		Help: "Analyses that fell back to heuristics, by reason.",
	}, []string{"reason"})

	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_knowledge_search_total",
		Help: "Knowledge searches by retrieval path (vector, keyword, empty).",
	}, []string{"path"})
)
