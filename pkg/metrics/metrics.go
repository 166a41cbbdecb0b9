// Package metrics exposes the counters operators need to spot systemic
// degradation: fallback chunking rates across a corpus, reranker skips,
// external service retries, and the found/empty split of query outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "docqa"

// Metrics holds all instrumentation for the ingestion and retrieval core.
type Metrics struct {
	DocumentsIngested *prometheus.CounterVec
	ChunksIndexed     prometheus.Counter
	FallbackEvents    prometheus.Counter
	RerankerSkips     prometheus.Counter
	ServiceRetries    *prometheus.CounterVec
	Queries           *prometheus.CounterVec
	QuerySeconds      prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
}

// New builds the metric set against the given registerer. A nil registerer
// yields working but unregistered metrics, which keeps tests quiet.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      "Documents ingested, by segmentation source.",
		}, []string{"source"}),
		ChunksIndexed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_indexed_total",
			Help:      "Chunks written to the vector index.",
		}),
		FallbackEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_chunking_total",
			Help:      "Documents that fell back to fixed-window segmentation.",
		}),
		RerankerSkips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reranker_skips_total",
			Help:      "Queries that kept similarity order after a reranker failure.",
		}),
		ServiceRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_retries_total",
			Help:      "Retries against external services.",
		}, []string{"service"}),
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries processed, by outcome.",
		}, []string{"outcome"}),
		QuerySeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "End-to-end query latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_hits_total",
			Help:      "Queries answered from the cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_misses_total",
			Help:      "Queries that missed the cache.",
		}),
	}
}
