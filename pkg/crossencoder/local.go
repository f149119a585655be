package crossencoder

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// LocalScorerClient implements the Client interface with cosine similarity
// over term-frequency vectors. Not a true cross-encoder, but deterministic
// and dependency-free, which makes it useful for tests and environments
// where model downloads are not an option.
type LocalScorerClient struct {
	config Config
}

// NewLocalScorerClient creates a new local similarity scorer.
func NewLocalScorerClient(config Config) *LocalScorerClient {
	return &LocalScorerClient{config: config}
}

// Score scores the given candidates against the query.
func (c *LocalScorerClient) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return []float64{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryVec := termFrequencies(query)
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		scores[i] = cosineSimilarity(queryVec, termFrequencies(candidate))
	}

	return scores, nil
}

// Close implements the Client interface. Nothing to release.
func (c *LocalScorerClient) Close() error {
	return nil
}

// termFrequencies tokenizes text into lowercase terms and counts them.
func termFrequencies(text string) map[string]float64 {
	freqs := make(map[string]float64)
	for _, token := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		freqs[token]++
	}
	return freqs
}

// cosineSimilarity computes the cosine of the angle between two sparse
// term-frequency vectors. Returns 0 when either vector is empty.
func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, weight := range a {
		normA += weight * weight
		if other, ok := b[term]; ok {
			dot += weight * other
		}
	}
	for _, weight := range b {
		normB += weight * weight
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
