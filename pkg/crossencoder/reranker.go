package crossencoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RerankerConfig holds configuration for Jina-compatible reranking APIs
type RerankerConfig struct {
	Config

	// BaseURL is the API base, e.g. "http://localhost:8000/v1".
	// "/rerank" is appended unless the URL already ends with it.
	BaseURL string `json:"base_url"`

	// APIKey is sent as a bearer token when non-empty
	APIKey string `json:"api_key,omitempty"`

	// Timeout for the HTTP request. Defaults to 60s.
	Timeout time.Duration `json:"timeout,omitempty"`

	// HTTPClient overrides the default client, mainly for tests
	HTTPClient *http.Client `json:"-"`
}

// RerankerClient implements the Client interface against a Jina-compatible
// rerank API (Jina AI, vLLM, LocalAI and others expose the same shape).
type RerankerClient struct {
	config RerankerConfig
	http   *http.Client
	url    string
}

// jinaRerankRequest mirrors the Jina rerank API request payload
type jinaRerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

// jinaDocumentResult is a single scored document in the API response
type jinaDocumentResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// jinaRerankResponse mirrors the Jina rerank API response payload
type jinaRerankResponse struct {
	Results []jinaDocumentResult `json:"results"`
}

// NewRerankerClient creates a new Jina-compatible reranker client.
func NewRerankerClient(config RerankerConfig) (*RerankerClient, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for the reranker provider")
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	url := strings.TrimRight(config.BaseURL, "/")
	if !strings.HasSuffix(url, "/rerank") {
		url += "/rerank"
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &RerankerClient{
		config: config,
		http:   httpClient,
		url:    url,
	}, nil
}

// Score scores the given candidates against the query via the remote API.
func (c *RerankerClient) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return []float64{}, nil
	}

	payload, err := json.Marshal(jinaRerankRequest{
		Model:     c.config.Model,
		Query:     query,
		Documents: candidates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rerank API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result jinaRerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	if len(result.Results) != len(candidates) {
		return nil, fmt.Errorf("rerank API returned %d scores for %d candidates", len(result.Results), len(candidates))
	}

	// The API returns results sorted by relevance with the original index
	// attached. Restore candidate order.
	scores := make([]float64, len(candidates))
	seen := make([]bool, len(candidates))
	for _, r := range result.Results {
		if r.Index < 0 || r.Index >= len(candidates) {
			return nil, fmt.Errorf("rerank API returned out-of-range index %d", r.Index)
		}
		if seen[r.Index] {
			return nil, fmt.Errorf("rerank API returned duplicate index %d", r.Index)
		}
		seen[r.Index] = true
		scores[r.Index] = r.RelevanceScore
	}

	return scores, nil
}

// Close implements the Client interface. Nothing to release.
func (c *RerankerClient) Close() error {
	return nil
}
