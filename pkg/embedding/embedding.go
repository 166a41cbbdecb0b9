// Package embedding turns text into vectors through an external embedding
// service. The service is consumed as a capability: callers see only
// text-in, vector-out, with batch calls preserving submission order.
package embedding

import (
	"context"
	"fmt"
)

// Client is the embedding capability consumed by ingestion and retrieval.
type Client interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable embedding error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
