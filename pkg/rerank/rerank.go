// Package rerank rescores retrieval candidates against a query through an
// external cross-encoder service. Reranking is an optional capability: its
// absence or failure degrades retrieval to similarity order, never breaks it,
// so errors here are reported but never marked retryable.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Score relates one candidate, by its position in the submitted list, to its
// recomputed relevance.
type Score struct {
	Index     int     `json:"index"`
	Relevance float64 `json:"relevance_score"`
}

// Config configures the rerank client. BaseURL accepts any Cohere-compatible
// endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls a Cohere-compatible rerank API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cohere.com/v2"
	}
	if cfg.Model == "" {
		cfg.Model = "rerank-v3.5"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []Score `json:"results"`
	Message string  `json:"message"`
}

// Rerank scores every document against the query. The returned scores are in
// the service's relevance order; Index points back into documents.
func (c *Client) Rerank(ctx context.Context, query string, documents []string) ([]Score, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{
		Model:     c.cfg.Model,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rerank api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp rerankResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for _, s := range apiResp.Results {
		if s.Index < 0 || s.Index >= len(documents) {
			return nil, fmt.Errorf("rerank index %d out of range", s.Index)
		}
	}
	return apiResp.Results, nil
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
