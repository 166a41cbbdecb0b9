// Package index persists chunk vectors and serves nearest-neighbor queries.
// The Index interface is the only contract the core depends on; Weaviate
// backs it in production and Memory backs it in tests and local runs.
package index

import (
	"context"
	"fmt"
)

// Payload is the chunk metadata stored alongside each vector and returned
// with every hit.
type Payload struct {
	ChunkID       string   `json:"chunk_id"`
	DocumentID    string   `json:"document_id"`
	Text          string   `json:"text"`
	ChunkType     string   `json:"chunk_type"`
	HierarchyPath []string `json:"hierarchy_path"`
	PageStart     int      `json:"page_start"`
	PageEnd       int      `json:"page_end"`
	Equations     []string `json:"equations,omitempty"`
	KeyTerms      []string `json:"key_terms,omitempty"`
	HasDiagramRef bool     `json:"has_diagram_ref,omitempty"`
	Source        string   `json:"source"`
}

// Point is one chunk ready for upsert.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Hit is one search result. Score is normalized to [0, 1], higher is closer.
type Hit struct {
	ID      string
	Score   float64
	Payload Payload
}

// Filter narrows a search to specific documents or chunk types. Empty
// fields do not constrain.
type Filter struct {
	DocumentIDs []string
	ChunkTypes  []string
}

// Matches reports whether a payload passes the filter. A nil filter passes
// everything.
func (f *Filter) Matches(p Payload) bool {
	if f == nil {
		return true
	}
	if len(f.DocumentIDs) > 0 && !containsString(f.DocumentIDs, p.DocumentID) {
		return false
	}
	if len(f.ChunkTypes) > 0 && !containsString(f.ChunkTypes, p.ChunkType) {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Index is the vector store capability consumed by ingestion and retrieval.
type Index interface {
	// Upsert stores points, replacing any existing point with the same ID.
	Upsert(ctx context.Context, points []Point) error
	// Search returns up to topK nearest hits for the vector, ordered by
	// descending score, optionally constrained by filter.
	Search(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Hit, error)
	// DeleteDocument removes every point belonging to the document.
	DeleteDocument(ctx context.Context, documentID string) error
}

// RetryableError indicates a transient index failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable index error (status %d): %s", e.StatusCode, e.Message)
}
