package crossencoder

import (
	"context"
	"fmt"
	"sync"

	"github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// EmbedEverythingClient implements the Client interface with a pretrained
// cross-encoder run locally through go-embedeverything. Model weights are
// fetched and loaded once in the constructor; a load failure surfaces there
// and nowhere else.
type EmbedEverythingClient struct {
	reranker *embedder.Reranker
	config   Config

	// go-embedeverything is not documented as safe for concurrent calls
	mu sync.Mutex
}

// NewEmbedEverythingClient creates a new local cross-encoder client.
func NewEmbedEverythingClient(config Config) (*EmbedEverythingClient, error) {
	if config.Model == "" {
		config = DefaultConfig(ProviderEmbedEverything)
	}

	reranker, err := embedder.NewReranker(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load cross-encoder %q: %w", config.Model, err)
	}

	return &EmbedEverythingClient{
		reranker: reranker,
		config:   config,
	}, nil
}

// Score scores the given candidates against the query.
func (e *EmbedEverythingClient) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return []float64{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// go-embedeverything does not support context yet
	e.mu.Lock()
	results, err := e.reranker.Rerank(query, candidates)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to score candidates: %w", err)
	}

	if len(results) != len(candidates) {
		return nil, fmt.Errorf("model returned %d scores for %d candidates", len(results), len(candidates))
	}

	// The library returns results ordered by score. Map them back onto the
	// candidate positions so scores[i] pairs with candidates[i], handling
	// duplicate candidate texts.
	pending := make(map[string][]int, len(candidates))
	for i, c := range candidates {
		pending[c] = append(pending[c], i)
	}

	scores := make([]float64, len(candidates))
	for _, result := range results {
		idxs := pending[result.Text]
		if len(idxs) == 0 {
			return nil, fmt.Errorf("model returned a passage that was not submitted")
		}
		scores[idxs[0]] = float64(result.Score)
		pending[result.Text] = idxs[1:]
	}

	return scores, nil
}

// Close releases the loaded model.
func (e *EmbedEverythingClient) Close() error {
	e.reranker.Close()
	return nil
}
