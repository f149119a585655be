package crossencoder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI scoring provider
type OpenAIConfig struct {
	Config

	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"` // OpenAI-compatible endpoints
}

// OpenAIScorerClient implements the Client interface by grading each
// (query, candidate) pair with an OpenAI-compatible chat model. Candidates
// are scored concurrently behind a semaphore. This is a fallback for
// deployments without a local model; a true cross-encoder gives better
// scores at lower cost.
type OpenAIScorerClient struct {
	client    *openai.Client
	config    OpenAIConfig
	semaphore chan struct{} // Controls concurrency
}

const scoringPrompt = `Rate how relevant the passage is to the query on a scale from 0.0 (unrelated) to 1.0 (directly answers it). Respond with only the number.

Query: %s

Passage: %s`

// NewOpenAIScorerClient creates a new OpenAI-based scoring client.
func NewOpenAIScorerClient(config OpenAIConfig) (*OpenAIScorerClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required for the openai provider")
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIScorerClient{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    config,
		semaphore: make(chan struct{}, config.MaxConcurrency),
	}, nil
}

// Score scores the given candidates against the query.
func (c *OpenAIScorerClient) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return []float64{}, nil
	}

	type candidateResult struct {
		score float64
		err   error
	}

	results := make([]candidateResult, len(candidates))
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(idx int, passage string) {
			defer wg.Done()

			// Acquire semaphore
			c.semaphore <- struct{}{}
			defer func() { <-c.semaphore }()

			score, err := c.scoreCandidate(ctx, query, passage)
			results[idx] = candidateResult{score: score, err: err}
		}(i, candidate)
	}

	wg.Wait()

	scores := make([]float64, len(candidates))
	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("error scoring candidate %d: %w", i, result.err)
		}
		scores[i] = result.score
	}

	return scores, nil
}

// scoreCandidate grades a single (query, candidate) pair.
func (c *OpenAIScorerClient) scoreCandidate(ctx context.Context, query, candidate string) (float64, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(scoringPrompt, query, candidate),
			},
		},
		Temperature: 0,
		MaxTokens:   8,
	})
	if err != nil {
		return 0, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("no choices returned from API")
	}

	return parseScore(resp.Choices[0].Message.Content)
}

// parseScore extracts a numeric score from the model output.
func parseScore(content string) (float64, error) {
	content = strings.TrimSpace(content)

	// Some models wrap the number in prose; take the first numeric token.
	for _, field := range strings.Fields(content) {
		field = strings.Trim(field, ".,:;")
		if score, err := strconv.ParseFloat(field, 64); err == nil {
			return score, nil
		}
	}

	return 0, fmt.Errorf("could not parse score from %q", content)
}

// Close implements the Client interface. Nothing to release.
func (c *OpenAIScorerClient) Close() error {
	return nil
}
