package chunking

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tutorstack/docqa/pkg/document"
)

// Chunker runs the structured pipeline for one document: header detection,
// hierarchy assignment, segmentation, classification and metadata extraction.
// It is stateless across documents; independent documents may be chunked
// concurrently by separate calls.
type Chunker struct {
	cfg Config
	log *slog.Logger
}

func NewChunker(cfg Config, log *slog.Logger) *Chunker {
	if log == nil {
		log = slog.Default()
	}
	return &Chunker{cfg: cfg.withDefaults(), log: log}
}

// ChunkDocument converts a parsed document into typed chunks. It returns
// ErrStructureNotDetected when no headers are found or no span yields a
// usable chunk; the caller is expected to recover with SegmentFallback.
func (c *Chunker) ChunkDocument(doc *document.Document) ([]Chunk, error) {
	if doc == nil || doc.Empty() {
		return nil, fmt.Errorf("%w: empty document", document.ErrUnreadable)
	}
	log := c.log.With("document_id", doc.ID)

	headers := Extract(doc, c.cfg)
	if len(headers) == 0 {
		return nil, ErrStructureNotDetected
	}
	log.Debug("headers detected", "headers", len(headers))

	headers = BuildHierarchy(headers)
	spans := Segment(doc, headers)

	chunks := make([]Chunk, 0, len(spans))
	skipped := 0
	for _, span := range spans {
		text := strings.TrimSpace(span.Text)
		if len(text) < c.cfg.MinSpanChars {
			skipped++
			continue
		}

		// The leading span has no header; it classifies as concept with
		// an empty hierarchy path.
		var header Header
		if span.StartHeader >= 0 {
			header = headers[span.StartHeader]
		}

		chunks = append(chunks, Chunk{
			ID:            uuid.NewString(),
			DocumentID:    doc.ID,
			Text:          text,
			Type:          Classify(header.Text),
			HierarchyPath: header.Path,
			PageStart:     span.PageStart,
			PageEnd:       span.PageEnd,
			Equations:     ExtractEquations(text, c.cfg),
			KeyTerms:      ExtractKeyTerms(text, c.cfg),
			HasDiagramRef: HasDiagramReference(text),
			Source:        SourceStructured,
		})
	}

	if len(chunks) == 0 {
		log.Debug("all spans below minimum size", "spans", len(spans))
		return nil, ErrStructureNotDetected
	}

	log.Info("document chunked", "chunks", len(chunks), "headers", len(headers), "skipped_spans", skipped)
	return chunks, nil
}
