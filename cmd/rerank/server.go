package rerank

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kobe4cn/kb-rerank/pkg/config"
	"github.com/kobe4cn/kb-rerank/pkg/crossencoder"
	"github.com/kobe4cn/kb-rerank/pkg/logger"
	"github.com/kobe4cn/kb-rerank/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the kb-rerank HTTP server",
	Long: `Start the kb-rerank HTTP server.

The server exposes:
- POST /rerank  score candidates against a query
- GET  /health  liveness check

The cross-encoder model is loaded once at startup; a load failure aborts the
process. Configuration can be provided through a config file, environment
variables, or command-line flags. Setting RERANK_TOKEN enables a static
bearer-token check on /rerank.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server flags
	serverCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8000, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "release", "Server mode (debug, release, test)")

	// Engine flags
	serverCmd.Flags().String("provider", "embedeverything", "Scoring provider (embedeverything, reranker, openai, local, mock)")
	serverCmd.Flags().String("model", config.DefaultModel, "Cross-encoder model name")
	serverCmd.Flags().String("base-url", "", "Base URL for remote providers")
	serverCmd.Flags().String("api-key", "", "API key for remote providers")

	// Auth flags
	serverCmd.Flags().String("token", "", "Shared secret for the bearer-token check (empty disables auth)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.Log.Level))

	// Load the scoring engine. This is the slow, failure-prone step: model
	// weights are fetched and loaded here, once.
	log.Info("loading scoring engine", "provider", cfg.Rerank.Provider, "model", cfg.Rerank.Model)
	scorer, err := buildScorer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize scoring engine: %w", err)
	}
	defer scorer.Close()

	// Create and setup server
	srv := server.New(cfg, scorer, log)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Engine flags
	if cmd.Flags().Changed("provider") {
		cfg.Rerank.Provider, _ = cmd.Flags().GetString("provider")
	}
	if cmd.Flags().Changed("model") {
		cfg.Rerank.Model, _ = cmd.Flags().GetString("model")
	}
	if cmd.Flags().Changed("base-url") {
		cfg.Rerank.BaseURL, _ = cmd.Flags().GetString("base-url")
	}
	if cmd.Flags().Changed("api-key") {
		cfg.Rerank.APIKey, _ = cmd.Flags().GetString("api-key")
	}

	// Auth flags
	if cmd.Flags().Changed("token") {
		cfg.Auth.Token, _ = cmd.Flags().GetString("token")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	switch crossencoder.Provider(cfg.Rerank.Provider) {
	case crossencoder.ProviderEmbedEverything, crossencoder.ProviderLocal, crossencoder.ProviderMock:
	case crossencoder.ProviderReranker:
		if cfg.Rerank.BaseURL == "" {
			return fmt.Errorf("base URL is required for the reranker provider")
		}
	case crossencoder.ProviderOpenAI:
		if cfg.Rerank.APIKey == "" {
			return fmt.Errorf("API key is required for the openai provider")
		}
	default:
		return fmt.Errorf("unsupported provider: %s", cfg.Rerank.Provider)
	}
	return nil
}

// buildScorer constructs the scoring engine from config, wrapping remote
// providers in a circuit breaker when enabled.
func buildScorer(cfg *config.Config, log *slog.Logger) (crossencoder.Client, error) {
	provider := crossencoder.Provider(cfg.Rerank.Provider)

	clientConfig := crossencoder.ClientConfig{
		Provider: provider,
		Config: crossencoder.Config{
			Model:          cfg.Rerank.Model,
			MaxConcurrency: cfg.Rerank.MaxConcurrency,
		},
	}

	switch provider {
	case crossencoder.ProviderReranker:
		clientConfig.RerankerConfig = &crossencoder.RerankerConfig{
			Config:  clientConfig.Config,
			BaseURL: cfg.Rerank.BaseURL,
			APIKey:  cfg.Rerank.APIKey,
		}
	case crossencoder.ProviderOpenAI:
		clientConfig.OpenAIConfig = &crossencoder.OpenAIConfig{
			Config:  clientConfig.Config,
			APIKey:  cfg.Rerank.APIKey,
			BaseURL: cfg.Rerank.BaseURL,
		}
	}

	scorer, err := crossencoder.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	// Circuit breaking only makes sense in front of a remote upstream
	if cfg.CircuitBreaker.Enabled && (provider == crossencoder.ProviderReranker || provider == crossencoder.ProviderOpenAI) {
		scorer = crossencoder.NewCircuitBreakerClient(scorer, cfg.CircuitBreaker, log, string(provider))
	}

	return scorer, nil
}
