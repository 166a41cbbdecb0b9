package docqa

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/tutorstack/docqa/pkg/chunking"
	"github.com/tutorstack/docqa/pkg/document"
	"github.com/tutorstack/docqa/pkg/index"
)

// IngestResult summarizes a completed ingestion.
type IngestResult struct {
	DocumentID  string
	Chunks      int
	Source      chunking.Source
	ContentHash string
	Elapsed     time.Duration
}

// Ingest chunks a parsed document, embeds every chunk, and writes the
// vectors to the index. Failure to detect structure is not fatal: the
// document degrades to fixed-window chunking and ingestion continues.
// Unreadable input and exhausted retries against the embedder or index
// are fatal.
func (s *Service) Ingest(ctx context.Context, doc *document.Document) (*IngestResult, error) {
	if doc == nil || doc.Empty() {
		return nil, fmt.Errorf("%w: no content to ingest", document.ErrUnreadable)
	}
	start := time.Now()
	log := s.log.With("doc_id", doc.ID, "title", doc.Title)

	source := chunking.SourceStructured
	chunks, err := s.chunker.ChunkDocument(doc)
	if errors.Is(err, chunking.ErrStructureNotDetected) {
		log.Warn("no structure detected, using fixed-window fallback")
		s.metrics.FallbackEvents.Inc()
		source = chunking.SourceFallback
		chunks = chunking.SegmentFallback(doc.Text(), doc.ID, s.opts.Chunking.Fallback)
	} else if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no usable text", document.ErrUnreadable)
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	points := make([]index.Point, len(chunks))
	for i, c := range chunks {
		points[i] = index.Point{
			ID:     c.ID,
			Vector: vectors[i],
			Payload: index.Payload{
				ChunkID:       c.ID,
				DocumentID:    c.DocumentID,
				Text:          c.Text,
				ChunkType:     string(c.Type),
				HierarchyPath: c.HierarchyPath,
				PageStart:     c.PageStart,
				PageEnd:       c.PageEnd,
				Equations:     c.Equations,
				KeyTerms:      c.KeyTerms,
				HasDiagramRef: c.HasDiagramRef,
				Source:        string(c.Source),
			},
		}
	}
	for b := 0; b < len(points); b += s.opts.BatchSize {
		batch := points[b:min(b+s.opts.BatchSize, len(points))]
		if err := s.withRetry(ctx, "index", func(ctx context.Context) error {
			return s.index.Upsert(ctx, batch)
		}); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start)
	s.metrics.DocumentsIngested.WithLabelValues(string(source)).Inc()
	s.metrics.ChunksIndexed.Add(float64(len(chunks)))
	log.Info("document ingested", "chunks", len(chunks), "source", source, "elapsed_ms", elapsed.Milliseconds())

	return &IngestResult{
		DocumentID:  doc.ID,
		Chunks:      len(chunks),
		Source:      source,
		ContentHash: contentHashHex(doc.Text()),
		Elapsed:     elapsed,
	}, nil
}

// Delete removes every indexed chunk belonging to a document.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("docqa: document id is required")
	}
	return s.withRetry(ctx, "index", func(ctx context.Context) error {
		return s.index.DeleteDocument(ctx, documentID)
	})
}

// embedChunks embeds chunk text in batches with bounded concurrency. The
// returned slice is aligned with chunks: vectors[i] embeds chunks[i].Text.
func (s *Service) embedChunks(ctx context.Context, chunks []chunking.Chunk) ([][]float32, error) {
	var batches [][]string
	for b := 0; b < len(chunks); b += s.opts.BatchSize {
		end := min(b+s.opts.BatchSize, len(chunks))
		texts := make([]string, 0, end-b)
		for _, c := range chunks[b:end] {
			texts = append(texts, c.Text)
		}
		batches = append(batches, texts)
	}

	type batchResult struct {
		vectors [][]float32
		err     error
		idx     int
	}
	results := make(chan batchResult, len(batches))
	sem := make(chan struct{}, s.opts.MaxBatchConcurrency)

	for i, texts := range batches {
		sem <- struct{}{}
		go func(i int, texts []string) {
			defer func() { <-sem }()
			var vecs [][]float32
			err := s.withRetry(ctx, "embedding", func(ctx context.Context) error {
				var callErr error
				vecs, callErr = s.embedder.EmbedBatch(ctx, texts)
				return callErr
			})
			results <- batchResult{vectors: vecs, err: err, idx: i}
		}(i, texts)
	}

	vectors := make([][]float32, len(chunks))
	var firstErr error
	for range batches {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		if len(r.vectors) != len(batches[r.idx]) {
			if firstErr == nil {
				firstErr = fmt.Errorf("embedding returned %d vectors for %d inputs", len(r.vectors), len(batches[r.idx]))
			}
			continue
		}
		offset := r.idx * s.opts.BatchSize
		copy(vectors[offset:], r.vectors)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// contentHashHex returns the hex sha256 of the document text, used for
// duplicate detection by callers.
func contentHashHex(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}
