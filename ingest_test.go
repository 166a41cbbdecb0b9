package docqa

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tutorstack/docqa/pkg/chunking"
	"github.com/tutorstack/docqa/pkg/document"
	"github.com/tutorstack/docqa/pkg/index"
)

func testDoc(title string, pages ...document.Page) *document.Document {
	d := document.New(title, title+".pdf")
	d.Pages = pages
	return d
}

func structuredTestDoc() *document.Document {
	return testDoc("Mechanics", document.Page{Number: 1, Lines: []document.Line{
		{Text: "Chapter 5: Dynamics", FontSize: 24},
		{Text: "A body at rest stays at rest unless acted on by a net force.", FontSize: 12},
		{Text: "This principle underlies every equilibrium argument below.", FontSize: 12},
		{Text: "5.1 Newton's Laws", FontSize: 16},
		{Text: "The net force on a body equals its mass times its acceleration.", FontSize: 12},
		{Text: "Each law is stated here and then applied to worked cases.", FontSize: 12},
	}})
}

// unstructuredTestDoc has no font data and no header patterns, so chunking
// must degrade to the fixed-window fallback.
func unstructuredTestDoc(sentences int) *document.Document {
	lines := make([]document.Line, sentences)
	for i := range lines {
		lines[i] = document.Line{Text: fmt.Sprintf("sentence %02d of the plain transcript continues the argument.", i)}
	}
	return testDoc("Transcript", document.Page{Number: 1, Lines: lines})
}

func TestIngest_StructuredDocument(t *testing.T) {
	mem := index.NewMemory()
	s := newTestService(t, &stubEmbedder{}, mem, Options{})
	doc := structuredTestDoc()

	res, err := s.Ingest(context.Background(), doc)
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.Source != chunking.SourceStructured {
		t.Errorf("source = %s, want structured", res.Source)
	}
	if res.Chunks != 2 {
		t.Errorf("chunks = %d, want 2 (one per header)", res.Chunks)
	}
	if mem.Len() != res.Chunks {
		t.Errorf("index holds %d points, want %d", mem.Len(), res.Chunks)
	}
	if res.DocumentID != doc.ID {
		t.Errorf("document id = %s, want %s", res.DocumentID, doc.ID)
	}
	wantHash := fmt.Sprintf("%x", sha256.Sum256([]byte(doc.Text())))
	if res.ContentHash != wantHash {
		t.Errorf("content hash = %s, want sha256 of document text", res.ContentHash)
	}
	if res.Elapsed <= 0 {
		t.Error("elapsed not recorded")
	}
}

func TestIngest_FallbackOnUnstructuredText(t *testing.T) {
	idx := &fakeIndex{}
	s := newTestService(t, &stubEmbedder{}, idx, Options{})
	doc := unstructuredTestDoc(20)

	res, err := s.Ingest(context.Background(), doc)
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.Source != chunking.SourceFallback {
		t.Fatalf("source = %s, want fallback", res.Source)
	}
	if res.Chunks < 2 {
		t.Fatalf("chunks = %d, want at least 2 windows", res.Chunks)
	}

	var points []index.Point
	for _, b := range idx.upserts {
		points = append(points, b...)
	}
	if len(points) != res.Chunks {
		t.Fatalf("upserted %d points, want %d", len(points), res.Chunks)
	}
	for i, p := range points {
		if wantID := fmt.Sprintf("%s_chunk_%d", doc.ID, i); p.ID != wantID {
			t.Errorf("point %d id = %s, want %s", i, p.ID, wantID)
		}
		if p.Payload.Source != "fallback" || p.Payload.ChunkType != "concept" {
			t.Errorf("point %d payload source=%s type=%s, want fallback/concept", i, p.Payload.Source, p.Payload.ChunkType)
		}
		if p.Payload.DocumentID != doc.ID {
			t.Errorf("point %d document id = %s, want %s", i, p.Payload.DocumentID, doc.ID)
		}
	}
}

func TestIngest_EmptyDocumentUnreadable(t *testing.T) {
	s := newTestService(t, &stubEmbedder{}, index.NewMemory(), Options{})

	if _, err := s.Ingest(context.Background(), nil); !errors.Is(err, document.ErrUnreadable) {
		t.Errorf("nil document: got %v, want ErrUnreadable", err)
	}
	empty := testDoc("Empty", document.Page{Number: 1})
	if _, err := s.Ingest(context.Background(), empty); !errors.Is(err, document.ErrUnreadable) {
		t.Errorf("empty document: got %v, want ErrUnreadable", err)
	}
}

func TestIngest_EmbeddingBatchAlignment(t *testing.T) {
	// Vectors are derived from the text they embed, so any cross-batch
	// scramble during concurrent reassembly shows up as a mismatch.
	emb := &stubEmbedder{vec: func(text string) []float32 {
		var sum int
		for _, b := range []byte(text) {
			sum += int(b)
		}
		return []float32{float32(len(text)), float32(sum % 997)}
	}}
	idx := &fakeIndex{}
	s := newTestService(t, emb, idx, Options{BatchSize: 3, MaxBatchConcurrency: 4})
	doc := unstructuredTestDoc(60)

	res, err := s.Ingest(context.Background(), doc)
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if res.Chunks < 7 {
		t.Fatalf("chunks = %d, want enough to span multiple batches", res.Chunks)
	}

	total := 0
	for _, n := range emb.batchSizes {
		if n > 3 {
			t.Errorf("embedding batch of %d exceeds configured size 3", n)
		}
		total += n
	}
	if total != res.Chunks {
		t.Errorf("embedded %d texts across batches, want %d", total, res.Chunks)
	}

	for _, b := range idx.upserts {
		if len(b) > 3 {
			t.Errorf("upsert batch of %d exceeds configured size 3", len(b))
		}
		for _, p := range b {
			var sum int
			for _, c := range []byte(p.Payload.Text) {
				sum += int(c)
			}
			if len(p.Vector) != 2 || p.Vector[0] != float32(len(p.Payload.Text)) || p.Vector[1] != float32(sum%997) {
				t.Errorf("vector misaligned with text for %s", p.ID)
			}
		}
	}
}

func TestDelete_RemovesDocumentChunks(t *testing.T) {
	mem := index.NewMemory()
	s := newTestService(t, &stubEmbedder{}, mem, Options{})
	doc := structuredTestDoc()

	if _, err := s.Ingest(context.Background(), doc); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	if mem.Len() == 0 {
		t.Fatal("nothing indexed")
	}
	if err := s.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if mem.Len() != 0 {
		t.Errorf("index still holds %d points after delete", mem.Len())
	}
	if err := s.Delete(context.Background(), ""); err == nil {
		t.Error("Delete(\"\") expected error")
	}
}

func TestIngest_SpanTextRoundTrip(t *testing.T) {
	idx := &fakeIndex{}
	s := newTestService(t, &stubEmbedder{}, idx, Options{})
	doc := structuredTestDoc()

	if _, err := s.Ingest(context.Background(), doc); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	var points []index.Point
	for _, b := range idx.upserts {
		points = append(points, b...)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	// Headers plus span texts reassemble the document exactly.
	parts := []string{
		"Chapter 5: Dynamics", points[0].Payload.Text,
		"5.1 Newton's Laws", points[1].Payload.Text,
	}
	if got := strings.Join(parts, "\n"); got != doc.Text() {
		t.Errorf("reconstructed text differs from document:\n%q\nvs\n%q", got, doc.Text())
	}
	if want := []string{"Chapter 5: Dynamics", "5.1 Newton's Laws"}; len(points[1].Payload.HierarchyPath) != 2 ||
		points[1].Payload.HierarchyPath[0] != want[0] || points[1].Payload.HierarchyPath[1] != want[1] {
		t.Errorf("section hierarchy = %v, want %v", points[1].Payload.HierarchyPath, want)
	}
}
