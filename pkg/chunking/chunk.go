// Package chunking converts parsed documents into typed, hierarchy-aware
// content chunks. It detects chapter and section headers from font statistics
// or text patterns, segments the text between consecutive headers with no
// gaps and no overlaps, classifies each segment from its header text, and
// extracts equation and key-term metadata. Documents without detectable
// structure go through a fixed-window, sentence-aligned fallback instead.
package chunking

// Type labels what kind of content a chunk holds, derived from its header.
type Type string

const (
	TypeConcept  Type = "concept"
	TypeExample  Type = "example"
	TypeQuestion Type = "question"
)

// Source records which segmentation strategy produced a chunk.
type Source string

const (
	SourceStructured Source = "structured"
	SourceFallback   Source = "fallback"
)

// Level is the structural depth of a detected header.
type Level string

const (
	LevelChapter Level = "chapter"
	LevelSection Level = "section"
)

// Chunk is a bounded, typed content unit ready for indexing. Immutable once
// produced.
type Chunk struct {
	ID            string   `json:"id"`
	DocumentID    string   `json:"document_id"`
	Text          string   `json:"text"`
	Type          Type     `json:"chunk_type"`
	HierarchyPath []string `json:"hierarchy_path"`
	PageStart     int      `json:"page_start"`
	PageEnd       int      `json:"page_end"`
	Equations     []string `json:"equations,omitempty"`
	KeyTerms      []string `json:"key_terms,omitempty"`
	HasDiagramRef bool     `json:"has_diagram_ref,omitempty"`
	Source        Source   `json:"source"`
}

// Header is a line identified as a structural boundary. Index is the line's
// document-wide position; Path is filled in by BuildHierarchy.
type Header struct {
	Text     string
	Level    Level
	FontSize float64
	Page     int
	Index    int
	Path     []string
}

// FontSample is one line with its font metadata, flattened out of the page
// structure for document-wide statistics. Index is the document-wide line
// position.
type FontSample struct {
	Text  string
	Size  float64
	Page  int
	Index int
}

// Span is the raw text lying strictly between two consecutive headers.
// StartHeader and EndHeader are indices into the header slice; -1 marks
// document start and document end respectively. An empty Text is legal when
// two headers are adjacent.
type Span struct {
	StartHeader int
	EndHeader   int
	PageStart   int
	PageEnd     int
	Text        string
}
