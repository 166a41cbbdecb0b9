package docqa

import (
	"fmt"
	"strings"
)

// Citation points back at the source location of one context block.
type Citation struct {
	ChunkID       string   `json:"chunk_id"`
	DocumentID    string   `json:"document_id"`
	HierarchyPath []string `json:"hierarchy_path,omitempty"`
	PageStart     int      `json:"page_start"`
	PageEnd       int      `json:"page_end"`
	Score         float64  `json:"score"`
}

// AssembledContext is prompt-ready text built from a query outcome, with
// one citation per source block.
type AssembledContext struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
	Found     bool       `json:"found"`
}

// Assemble renders a query outcome into numbered source blocks for a
// downstream prompt. An empty outcome yields an explicit no-context marker
// so the prompt never silently claims coverage.
func Assemble(o QueryOutcome) AssembledContext {
	if !o.Found || len(o.Chunks) == 0 {
		return AssembledContext{Text: "No relevant context was found in the indexed documents."}
	}
	blocks := make([]string, 0, len(o.Chunks))
	citations := make([]Citation, 0, len(o.Chunks))
	for i, c := range o.Chunks {
		header := fmt.Sprintf("[Source %d]", i+1)
		if len(c.Payload.HierarchyPath) > 0 {
			header += " " + strings.Join(c.Payload.HierarchyPath, " > ")
		}
		if c.Payload.PageStart > 0 {
			if c.Payload.PageEnd > c.Payload.PageStart {
				header += fmt.Sprintf(" (pp. %d-%d)", c.Payload.PageStart, c.Payload.PageEnd)
			} else {
				header += fmt.Sprintf(" (p. %d)", c.Payload.PageStart)
			}
		}
		blocks = append(blocks, header+"\n"+c.Text)
		citations = append(citations, Citation{
			ChunkID:       c.ChunkID,
			DocumentID:    c.Payload.DocumentID,
			HierarchyPath: c.Payload.HierarchyPath,
			PageStart:     c.Payload.PageStart,
			PageEnd:       c.Payload.PageEnd,
			Score:         c.Score,
		})
	}
	return AssembledContext{
		Text:      strings.Join(blocks, "\n\n"),
		Citations: citations,
		Found:     true,
	}
}
