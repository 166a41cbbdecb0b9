package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmbedBatch_RestoresInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Input) != 3 {
			t.Fatalf("expected 3 inputs, got %d", len(req.Input))
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		// Reply out of order; the client must reassemble by index.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"index":2,"embedding":[3.0]},
			{"index":0,"embedding":[1.0]},
			{"index":1,"embedding":[2.0]}
		]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(ClientConfig{BaseURL: srv.URL, APIKey: "test-key"})
	defer client.Close()

	vectors, err := client.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []float32{1.0, 2.0, 3.0} {
		if len(vectors[i]) != 1 || vectors[i][0] != want {
			t.Errorf("vector[%d]: expected [%v], got %v", i, want, vectors[i])
		}
	}

	if snap := client.Stats(); snap.Count != 1 {
		t.Errorf("expected 1 recorded call, got %d", snap.Count)
	}
}

func TestEmbedBatch_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(ClientConfig{BaseURL: srv.URL})
	defer client.Close()

	_, err := client.EmbedBatch(context.Background(), []string{"a"})
	var retryErr *RetryableError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryableError, got %v", err)
	}
	if retryErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", retryErr.StatusCode)
	}
}

func TestEmbedBatch_ClientErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewHTTPClient(ClientConfig{BaseURL: srv.URL})
	defer client.Close()

	_, err := client.EmbedBatch(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error for status 401")
	}
	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		t.Fatalf("auth failure must not be retryable: %v", err)
	}
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"index":0,"embedding":[1.0]}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(ClientConfig{BaseURL: srv.URL})
	defer client.Close()

	if _, err := client.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error for short response")
	}
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	client := NewHTTPClient(ClientConfig{BaseURL: "http://unused.invalid"})
	defer client.Close()
	vectors, err := client.EmbedBatch(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("expected no-op for empty input, got %v, %v", vectors, err)
	}
}

func TestTruncateForEmbedding(t *testing.T) {
	short := "a few words"
	if got := truncateForEmbedding(short); got != short {
		t.Errorf("short input should pass through, got %q", got)
	}

	long := strings.Repeat("word ", 20000) // ~26600 estimated tokens
	got := truncateForEmbedding(long)
	if len(got) >= len(long) {
		t.Fatal("expected over-long input to be truncated")
	}
	if len(got) > maxInputTokens*4 {
		t.Errorf("truncated length %d exceeds character budget", len(got))
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty text: expected 0 tokens, got %d", got)
	}
	if got := EstimateTokens("one"); got < 1 {
		t.Errorf("single word: expected at least 1 token, got %d", got)
	}
	if got := EstimateTokens("ten words of ordinary prose should estimate above five tokens"); got < 5 {
		t.Errorf("expected a plausible estimate, got %d", got)
	}
}
