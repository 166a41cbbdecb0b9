package docqa

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/tutorstack/docqa/pkg/chunking"
	"github.com/tutorstack/docqa/pkg/index"
)

// QueryRequest is one retrieval question. Zero-valued tuning fields fall
// back to the service configuration; a negative ScoreThreshold disables the
// relevance cutoff for this request.
type QueryRequest struct {
	Text           string        `json:"text"`
	TopK           int           `json:"top_k,omitempty"`
	ScoreThreshold float64       `json:"score_threshold,omitempty"`
	MaxContext     int           `json:"max_context,omitempty"`
	Scope          *index.Filter `json:"scope,omitempty"`
}

// RetrievalResult is one context chunk with its final relevance score.
type RetrievalResult struct {
	ChunkID string        `json:"chunk_id"`
	Text    string        `json:"text"`
	Score   float64       `json:"score"`
	Payload index.Payload `json:"payload"`
}

// QueryOutcome is the answer to a query. Found is false when nothing
// cleared the relevance threshold, which is an answer, not an error.
type QueryOutcome struct {
	Chunks []RetrievalResult `json:"chunks"`
	Found  bool              `json:"found"`
}

// Query embeds the question, searches the index, optionally reranks, and
// returns the best surviving chunks. A failing reranker degrades the result
// to similarity order instead of failing the query.
func (s *Service) Query(ctx context.Context, req QueryRequest) (QueryOutcome, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return QueryOutcome{}, fmt.Errorf("docqa: query text is required")
	}
	start := time.Now()

	topK := req.TopK
	if topK <= 0 {
		topK = s.opts.Retrieval.TopK
	}
	threshold := s.opts.Retrieval.ScoreThreshold
	if req.ScoreThreshold != 0 {
		threshold = req.ScoreThreshold
	}
	maxContext := req.MaxContext
	if maxContext <= 0 {
		maxContext = s.opts.Retrieval.MaxContext
	}

	var vector []float32
	if err := s.withRetry(ctx, "embedding", func(ctx context.Context) error {
		var callErr error
		vector, callErr = s.embedder.Embed(ctx, text)
		return callErr
	}); err != nil {
		return QueryOutcome{}, err
	}

	var hits []index.Hit
	if err := s.withRetry(ctx, "index", func(ctx context.Context) error {
		var callErr error
		hits, callErr = s.index.Search(ctx, vector, topK, req.Scope)
		return callErr
	}); err != nil {
		return QueryOutcome{}, err
	}

	results := make([]RetrievalResult, 0, len(hits))
	for _, h := range hits {
		id := h.Payload.ChunkID
		if id == "" {
			id = h.ID
		}
		results = append(results, RetrievalResult{
			ChunkID: id,
			Text:    h.Payload.Text,
			Score:   h.Score,
			Payload: h.Payload,
		})
	}

	results = s.rerankResults(ctx, text, results)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	kept := results[:0]
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if threshold >= 0 && r.Score < threshold {
			continue
		}
		if !s.validText(r.Text) {
			continue
		}
		// Results are sorted, so the first occurrence of a text is its
		// highest-scoring copy.
		if _, dup := seen[r.Text]; dup {
			continue
		}
		seen[r.Text] = struct{}{}
		kept = append(kept, r)
	}

	if boost := s.opts.Retrieval.IntentBoost; boost > 0 {
		if intent := detectIntent(text); intent != "" {
			for i := range kept {
				if kept[i].Payload.ChunkType == intent {
					kept[i].Score += boost
				}
			}
			sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
		}
	}

	if len(kept) > maxContext {
		kept = kept[:maxContext]
	}

	outcome := QueryOutcome{Chunks: kept, Found: len(kept) > 0}
	label := "found"
	if !outcome.Found {
		label = "empty"
	}
	s.metrics.Queries.WithLabelValues(label).Inc()
	s.metrics.QuerySeconds.Observe(time.Since(start).Seconds())
	s.log.Info("query served", "candidates", len(hits), "returned", len(kept), "found", outcome.Found, "elapsed_ms", time.Since(start).Milliseconds())
	return outcome, nil
}

// rerankResults rewrites candidate scores from the reranker when one is
// configured. Any failure leaves the similarity scores untouched.
func (s *Service) rerankResults(ctx context.Context, query string, results []RetrievalResult) []RetrievalResult {
	if s.opts.Reranker == nil || len(results) == 0 {
		return results
	}
	docs := make([]string, len(results))
	for i, r := range results {
		docs[i] = r.Text
	}
	scores, err := s.opts.Reranker.Rerank(ctx, query, docs)
	if err != nil {
		s.log.Warn("reranker unavailable, keeping similarity order", "error", err)
		s.metrics.RerankerSkips.Inc()
		return results
	}
	for _, sc := range scores {
		if sc.Index >= 0 && sc.Index < len(results) {
			results[sc.Index].Score = sc.Relevance
		}
	}
	return results
}

// validText rejects candidates too short to cite or dominated by
// unprintable runes, which usually means a bad extraction upstream.
func (s *Service) validText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 {
		return false
	}
	printable, total := 0, 0
	for _, r := range trimmed {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable)/float64(total) > s.opts.Retrieval.MinPrintableRatio
}

var (
	exampleIntent  = regexp.MustCompile(`(?i)\b(example|sample|show me|demonstrate|worked)\b`)
	questionIntent = regexp.MustCompile(`(?i)\b(exercise|practice|problem|quiz|test)\b`)
	conceptIntent  = regexp.MustCompile(`(?i)\b(what is|define|definition|explain|concept)\b`)
)

// detectIntent maps query phrasing to the chunk type it most likely wants.
// Example phrasing wins over question phrasing, mirroring header
// classification.
func detectIntent(query string) string {
	switch {
	case exampleIntent.MatchString(query):
		return string(chunking.TypeExample)
	case questionIntent.MatchString(query):
		return string(chunking.TypeQuestion)
	case conceptIntent.MatchString(query):
		return string(chunking.TypeConcept)
	}
	return ""
}
