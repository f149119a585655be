package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kobe4cn/kb-rerank/pkg/crossencoder"
	"github.com/kobe4cn/kb-rerank/pkg/server/dto"
)

// RerankHandler handles POST /rerank. The scoring engine is injected once
// at construction and shared read-only across requests.
type RerankHandler struct {
	scorer crossencoder.Client
	limits dto.RerankLimits
	logger *slog.Logger
}

// NewRerankHandler creates a new rerank handler
func NewRerankHandler(scorer crossencoder.Client, limits dto.RerankLimits, logger *slog.Logger) *RerankHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RerankHandler{
		scorer: scorer,
		limits: limits,
		logger: logger,
	}
}

// Rerank handles POST /rerank
func (h *RerankHandler) Rerank(c *gin.Context) {
	var req dto.RerankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := req.Validate(h.limits); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	scores, err := h.scorer.Score(c.Request.Context(), req.Query, req.Candidates)
	if err != nil {
		h.logger.Error("scoring failed",
			"error", err,
			"candidates", len(req.Candidates),
			"request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "rerank_failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.RerankResponse{Scores: scores})
}
