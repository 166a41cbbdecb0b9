// Package docqa wires document parsing, structure-aware chunking, embedding,
// and vector search into an ingestion and retrieval core for question
// answering over textbooks and similar long-form material.
//
// A Service owns the full path from parsed document to indexed chunks and
// from query text to scored context. External calls (embedding, index,
// reranking) go through bounded retries; reranking is optional and its
// failures only degrade result ordering.
package docqa

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tutorstack/docqa/pkg/chunking"
	"github.com/tutorstack/docqa/pkg/embedding"
	"github.com/tutorstack/docqa/pkg/index"
	"github.com/tutorstack/docqa/pkg/metrics"
	"github.com/tutorstack/docqa/pkg/rerank"
)

// Reranker reorders candidate documents by relevance to a query.
// *rerank.Client satisfies this.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]rerank.Score, error)
}

// RetrievalConfig tunes the query pipeline.
type RetrievalConfig struct {
	// TopK is the candidate pool size fetched from the index before
	// filtering and reranking.
	TopK int
	// ScoreThreshold drops candidates scoring below it. Zero means the
	// default of 0.5; a negative value disables the cutoff.
	ScoreThreshold float64
	// MaxContext caps how many chunks a query returns.
	MaxContext int
	// IntentBoost is added to the score of chunks whose type matches the
	// detected query intent. Zero disables intent matching.
	IntentBoost float64
	// MinPrintableRatio rejects candidate text with a lower share of
	// printable runes, which filters extraction garbage.
	MinPrintableRatio float64
}

// Options configures a Service. The zero value is usable: every field falls
// back to a default, and a nil Reranker simply skips the rerank stage.
type Options struct {
	Chunking            chunking.Config
	Retrieval           RetrievalConfig
	BatchSize           int
	MaxBatchConcurrency int
	CallTimeout         time.Duration
	Reranker            Reranker
	Logger              *slog.Logger
	Metrics             *metrics.Metrics
}

// DefaultOptions returns the settings used in production.
func DefaultOptions() Options {
	return Options{
		Chunking: chunking.DefaultConfig(),
		Retrieval: RetrievalConfig{
			TopK:              50,
			ScoreThreshold:    0.5,
			MaxContext:        3,
			MinPrintableRatio: 0.8,
		},
		BatchSize:           32,
		MaxBatchConcurrency: 4,
		CallTimeout:         30 * time.Second,
	}
}

// Validate rejects option values that zero-value normalization cannot
// repair. Negative or zero tuning fields are normalized, not rejected.
func (o Options) Validate() error {
	if o.Retrieval.MinPrintableRatio > 1 {
		return fmt.Errorf("docqa: min printable ratio %v exceeds 1", o.Retrieval.MinPrintableRatio)
	}
	if o.Retrieval.IntentBoost < 0 {
		return fmt.Errorf("docqa: intent boost must not be negative")
	}
	return nil
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Retrieval.TopK <= 0 {
		o.Retrieval.TopK = def.Retrieval.TopK
	}
	if o.Retrieval.ScoreThreshold == 0 {
		o.Retrieval.ScoreThreshold = def.Retrieval.ScoreThreshold
	}
	if o.Retrieval.MaxContext <= 0 {
		o.Retrieval.MaxContext = def.Retrieval.MaxContext
	}
	if o.Retrieval.MinPrintableRatio <= 0 {
		o.Retrieval.MinPrintableRatio = def.Retrieval.MinPrintableRatio
	}
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	if o.MaxBatchConcurrency <= 0 {
		o.MaxBatchConcurrency = def.MaxBatchConcurrency
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = def.CallTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New(nil)
	}
	return o
}

// Service is the ingestion and retrieval core. All methods are safe for
// concurrent use.
type Service struct {
	embedder embedding.Client
	index    index.Index
	chunker  *chunking.Chunker
	opts     Options
	log      *slog.Logger
	metrics  *metrics.Metrics
	backoff  func(attempt int) time.Duration
}

// New builds a Service over the given embedder and index.
func New(embedder embedding.Client, idx index.Index, opts Options) (*Service, error) {
	if embedder == nil {
		return nil, fmt.Errorf("docqa: embedder is required")
	}
	if idx == nil {
		return nil, fmt.Errorf("docqa: index is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Service{
		embedder: embedder,
		index:    idx,
		chunker:  chunking.NewChunker(opts.Chunking, opts.Logger),
		opts:     opts,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		backoff:  Backoff,
	}, nil
}
