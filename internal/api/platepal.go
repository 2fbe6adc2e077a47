package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/platepal/backend/internal/logger"
	"github.com/pageza/platepal/backend/internal/metrics"
	"github.com/pageza/platepal/backend/internal/service"
)

var errMissingPrompt = errors.New("invalid request body: prompt is required")

// PlatePalHandler proxies prompts to the generation API.
type PlatePalHandler struct {
	generator service.GenerationService
	logger    *zap.Logger
}

// NewPlatePalHandler creates a new PlatePalHandler instance
func NewPlatePalHandler(generator service.GenerationService, log *zap.Logger) *PlatePalHandler {
	return &PlatePalHandler{
		generator: generator,
		logger:    logger.OrNop(log),
	}
}

// RegisterRoutes registers the proxy route. Extra middleware, such as a rate
// limiter, runs before the handler.
func (h *PlatePalHandler) RegisterRoutes(router *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(middleware, h.Generate)
	router.POST("/platepal", handlers...)
}

// Generate handles POST /api/platepal. Failures are attached with c.Error and
// rendered by middleware.ErrorHandler.
func (h *PlatePalHandler) Generate(c *gin.Context) {
	// The credential is checked before the body is read so a misconfigured
	// server never forwards anything.
	if !h.generator.Configured() {
		metrics.ProxyRequests.WithLabelValues(metrics.OutcomeMissingKey).Inc()
		_ = c.Error(service.ErrAPIKeyNotConfigured)
		return
	}

	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ProxyRequests.WithLabelValues(metrics.OutcomeInternalError).Inc()
		_ = c.Error(fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Prompt == nil {
		metrics.ProxyRequests.WithLabelValues(metrics.OutcomeInternalError).Inc()
		_ = c.Error(errMissingPrompt)
		return
	}

	text, err := h.generator.GenerateText(c.Request.Context(), *req.Prompt)
	if err != nil {
		metrics.ProxyRequests.WithLabelValues(outcome(err)).Inc()
		h.logger.Error("API route error", zap.Error(err))
		_ = c.Error(err)
		return
	}

	metrics.ProxyRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.JSON(http.StatusOK, TextResponse{Text: text})
}

func outcome(err error) string {
	var upstreamErr *service.UpstreamError
	switch {
	case errors.Is(err, service.ErrAPIKeyNotConfigured):
		return metrics.OutcomeMissingKey
	case errors.As(err, &upstreamErr):
		return metrics.OutcomeUpstreamError
	default:
		return metrics.OutcomeInternalError
	}
}
