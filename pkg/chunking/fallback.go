package chunking

import (
	"fmt"
	"strings"
)

// SegmentFallback slices raw text into fixed-size, overlapping windows for
// documents whose structure could not be detected. Every window boundary is
// moved to a sentence boundary so no chunk splits mid-sentence, and each
// window starts Overlap characters before the previous window's end. Chunks
// are exact substrings of text, so the non-overlapping regions tile the
// source with no gaps. All output is typed concept and marked fallback.
func SegmentFallback(text, documentID string, cfg FallbackConfig) []Chunk {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().Fallback.WindowSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.WindowSize {
		cfg.Overlap = DefaultConfig().Fallback.Overlap
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	bounds := sentenceBoundaries(text)
	var chunks []Chunk
	start := 0
	for start < len(text) {
		end := windowEnd(bounds, start, cfg.WindowSize)
		chunks = append(chunks, Chunk{
			ID:         fmt.Sprintf("%s_chunk_%d", documentID, len(chunks)),
			DocumentID: documentID,
			Text:       text[start:end],
			Type:       TypeConcept,
			Source:     SourceFallback,
		})
		if end >= len(text) {
			break
		}
		start = nextStart(bounds, start, end, cfg.Overlap)
	}
	return chunks
}

// windowEnd picks the chunk end for a window beginning at start: the last
// sentence boundary inside the window, or the first one past it when the
// window holds none. A sentence longer than twice the window is split at the
// window edge rather than emitted whole.
func windowEnd(bounds []int, start, window int) int {
	limit := start + window
	best := -1
	forward := -1
	for _, b := range bounds {
		if b <= start {
			continue
		}
		if b <= limit {
			best = b
			continue
		}
		forward = b
		break
	}
	if best != -1 {
		return best
	}
	if forward-start > 2*window {
		return limit
	}
	return forward
}

// nextStart returns where the following window begins: the last sentence
// boundary at or before end-overlap, or end itself when no boundary fits.
// The result always advances past prevStart.
func nextStart(bounds []int, prevStart, end, overlap int) int {
	target := end - overlap
	next := end
	for _, b := range bounds {
		if b <= prevStart {
			continue
		}
		if b > target {
			break
		}
		next = b
	}
	return next
}

// sentenceBoundaries returns the positions just after each sentence end, in
// ascending order, always ending with len(text). A terminator run counts only
// when followed by whitespace or end of text, which keeps decimals like 3.14
// intact. The position after the run's trailing whitespace is the boundary,
// so every boundary is also the start of the next sentence.
func sentenceBoundaries(text string) []int {
	var bounds []int
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		j := i + 1
		for j < len(text) && isTerminator(text[j]) {
			j++
		}
		k := j
		for k < len(text) && isSpaceByte(text[k]) {
			k++
		}
		if k > j || k == len(text) {
			bounds = append(bounds, k)
		}
		i = j - 1
	}
	if len(bounds) == 0 || bounds[len(bounds)-1] != len(text) {
		bounds = append(bounds, len(text))
	}
	return bounds
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}
