package index

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Memory is an in-process Index for tests and local development. Scores use
// the same (1+cos)/2 scale as Weaviate certainty so thresholds behave
// identically against either backend.
type Memory struct {
	mu     sync.RWMutex
	points map[string]Point
}

func NewMemory() *Memory {
	return &Memory{points: make(map[string]Point)}
}

func (m *Memory) Upsert(ctx context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

func (m *Memory) Search(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Hit, error) {
	if topK <= 0 {
		topK = 10
	}

	m.mu.RLock()
	hits := make([]Hit, 0, len(m.points))
	for _, p := range m.points {
		if !filter.Matches(p.Payload) {
			continue
		}
		hits = append(hits, Hit{
			ID:      p.ID,
			Score:   (1 + cosine(vector, p.Vector)) / 2,
			Payload: p.Payload,
		})
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *Memory) DeleteDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.points {
		if p.Payload.DocumentID == documentID {
			delete(m.points, id)
		}
	}
	return nil
}

// Len reports the number of stored points.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
