package embedding

import (
	"strings"
	"unicode/utf8"
)

// maxInputTokens guards against inputs the embedding API rejects outright.
// Structured chunks never come close; the guard matters for fallback chunks
// built from degenerate documents.
const maxInputTokens = 8000

// EstimateTokens gives a rough token count using a words-based heuristic.
// This is intentionally simple — exact tokenization is not required for an
// over-length guard.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 1.33 tokens per word for English text.
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// truncateForEmbedding caps over-long input at an approximate character
// budget, cutting on a rune boundary. Only the text sent to the API is
// shortened; stored chunk text is never modified.
func truncateForEmbedding(text string) string {
	if EstimateTokens(text) <= maxInputTokens {
		return text
	}
	limit := maxInputTokens * 4
	if limit >= len(text) {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
