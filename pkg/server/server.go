// Package server wires the HTTP layer of the rerank service: routing,
// middleware, the optional bearer-token check, and graceful shutdown.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kobe4cn/kb-rerank/pkg/config"
	"github.com/kobe4cn/kb-rerank/pkg/crossencoder"
	"github.com/kobe4cn/kb-rerank/pkg/server/dto"
	"github.com/kobe4cn/kb-rerank/pkg/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	scorer crossencoder.Client
	server *http.Server
	logger *slog.Logger
}

// New creates a new server instance. The scoring engine is constructed by
// the caller and injected here; the server never builds its own.
func New(cfg *config.Config, scorer crossencoder.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		scorer: scorer,
		logger: logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(requestIDMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	s.server = &http.Server{
		Addr:    s.config.Addr(),
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler()
	rerankHandler := handlers.NewRerankHandler(s.scorer, dto.RerankLimits{
		MaxCandidates:   s.config.Rerank.MaxCandidates,
		MaxCandidateLen: s.config.Rerank.MaxCandidateLen,
		MaxQueryLen:     s.config.Rerank.MaxQueryLen,
	}, s.logger)

	// Health endpoint is public regardless of auth configuration
	s.router.GET("/health", healthHandler.HealthCheck)

	rerank := s.router.Group("/")
	if s.config.HasToken() {
		rerank.Use(authMiddleware(s.config.Auth.Token))
	}
	rerank.POST("/rerank", rerankHandler.Rerank)
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr, "provider", s.config.Rerank.Provider)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.server.Shutdown(ctx)
}
