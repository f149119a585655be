package crossencoder

import (
	"context"
	"hash/fnv"
)

// MockScorerClient implements the Client interface with deterministic
// pseudo-scores derived from hashing the (query, candidate) pair. Intended
// for tests that need stable, repeatable output without any model.
type MockScorerClient struct {
	config Config

	// Err, when set, is returned by every Score call. Lets tests exercise
	// engine-fault paths.
	Err error
}

// NewMockScorerClient creates a new mock scorer.
func NewMockScorerClient(config Config) *MockScorerClient {
	return &MockScorerClient{config: config}
}

// Score returns a deterministic score in [0, 1) for each candidate.
func (c *MockScorerClient) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if len(candidates) == 0 {
		return []float64{}, nil
	}

	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		h := fnv.New32a()
		h.Write([]byte(query))
		h.Write([]byte{0})
		h.Write([]byte(candidate))
		scores[i] = float64(h.Sum32()%10000) / 10000
	}

	return scores, nil
}

// Close implements the Client interface. Nothing to release.
func (c *MockScorerClient) Close() error {
	return nil
}
