package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRerank_ScoresPointBackToDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "what is inertia" {
			t.Errorf("unexpected query %q", req.Query)
		}
		if len(req.Documents) != 3 {
			t.Fatalf("expected 3 documents, got %d", len(req.Documents))
		}
		w.Write([]byte(`{"results":[
			{"index":2,"relevance_score":0.98},
			{"index":0,"relevance_score":0.55},
			{"index":1,"relevance_score":0.12}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	defer client.Close()

	scores, err := client.Rerank(context.Background(), "what is inertia", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if scores[0].Index != 2 || scores[0].Relevance != 0.98 {
		t.Errorf("unexpected top score %+v", scores[0])
	}
}

func TestRerank_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	defer client.Close()

	if _, err := client.Rerank(context.Background(), "q", []string{"a"}); err == nil {
		t.Fatal("expected error for status 503")
	}
}

func TestRerank_OutOfRangeIndexRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"index":5,"relevance_score":0.9}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	defer client.Close()

	if _, err := client.Rerank(context.Background(), "q", []string{"a", "b"}); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestRerank_EmptyDocuments(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused.invalid"})
	defer client.Close()
	scores, err := client.Rerank(context.Background(), "q", nil)
	if err != nil || scores != nil {
		t.Fatalf("expected no-op for empty documents, got %v, %v", scores, err)
	}
}
