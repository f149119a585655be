package crossencoder

import (
	"context"
	"fmt"
)

// Client scores candidate passages against a query.
type Client interface {
	// Score returns one relevance score per candidate, preserving candidate
	// order: scores[i] pairs with candidates[i]. An empty candidate list
	// returns an empty score list.
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)

	// Close releases any resources held by the client.
	Close() error
}

// Config holds common configuration shared by all providers
type Config struct {
	Model          string `json:"model,omitempty"`
	MaxConcurrency int    `json:"max_concurrency,omitempty"`
}

// Provider represents the type of cross-encoder provider
type Provider string

const (
	// ProviderEmbedEverything runs a pretrained cross-encoder locally via
	// go-embedeverything
	ProviderEmbedEverything Provider = "embedeverything"

	// ProviderReranker calls a Jina-compatible rerank API (Jina, vLLM,
	// LocalAI, etc.)
	ProviderReranker Provider = "reranker"

	// ProviderOpenAI grades relevance with an OpenAI-compatible chat model
	ProviderOpenAI Provider = "openai"

	// ProviderLocal uses deterministic local term-overlap scoring
	ProviderLocal Provider = "local"

	// ProviderMock uses a deterministic mock implementation for testing
	ProviderMock Provider = "mock"
)

// ClientConfig holds configuration for creating cross-encoder clients
type ClientConfig struct {
	Provider       Provider        `json:"provider"`
	Config         Config          `json:"config"`
	RerankerConfig *RerankerConfig `json:"reranker_config,omitempty"` // Jina-compatible reranker config
	OpenAIConfig   *OpenAIConfig   `json:"openai_config,omitempty"`   // OpenAI-specific config
}

// NewClient creates a new cross-encoder client based on the provider type
func NewClient(clientConfig ClientConfig) (Client, error) {
	switch clientConfig.Provider {
	case ProviderEmbedEverything:
		return NewEmbedEverythingClient(clientConfig.Config)

	case ProviderReranker:
		rerankerConfig := RerankerConfig{Config: clientConfig.Config}
		if clientConfig.RerankerConfig != nil {
			rerankerConfig = *clientConfig.RerankerConfig
		}
		return NewRerankerClient(rerankerConfig)

	case ProviderOpenAI:
		openaiConfig := OpenAIConfig{Config: clientConfig.Config}
		if clientConfig.OpenAIConfig != nil {
			openaiConfig = *clientConfig.OpenAIConfig
		}
		return NewOpenAIScorerClient(openaiConfig)

	case ProviderLocal:
		return NewLocalScorerClient(clientConfig.Config), nil

	case ProviderMock:
		return NewMockScorerClient(clientConfig.Config), nil

	default:
		return nil, fmt.Errorf("unsupported cross-encoder provider: %s", clientConfig.Provider)
	}
}

// DefaultConfig returns a default configuration for the given provider
func DefaultConfig(provider Provider) Config {
	switch provider {
	case ProviderEmbedEverything:
		return Config{
			Model:          "cross-encoder/ms-marco-MiniLM-L-12-v2",
			MaxConcurrency: 1, // local inference is serialized
		}
	case ProviderReranker:
		return Config{
			Model:          "reranker", // generic default, should be overridden
			MaxConcurrency: 3,          // conservative for external APIs
		}
	case ProviderOpenAI:
		return Config{
			Model:          "gpt-4o-mini",
			MaxConcurrency: 10,
		}
	case ProviderLocal, ProviderMock:
		return Config{}
	default:
		return Config{}
	}
}
