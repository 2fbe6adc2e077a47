package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageza/platepal/backend/internal/api"
	"github.com/pageza/platepal/backend/internal/logger"
	"github.com/pageza/platepal/backend/internal/middleware"
	"github.com/pageza/platepal/backend/internal/service"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Generator      service.GenerationService
	AllowedOrigins []string
	// Limiter rate limits the proxy route; nil disables limiting.
	Limiter middleware.Limiter
	Logger  *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	log := logger.OrNop(deps.Logger)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(deps.AllowedOrigins),
		middleware.ErrorHandler(),
	)

	// Health check and metrics endpoints
	router.GET("/health", api.HealthCheck)
	router.GET("/api/health", api.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var proxyMiddleware []gin.HandlerFunc
	if deps.Limiter != nil {
		proxyMiddleware = append(proxyMiddleware, middleware.RateLimit(deps.Limiter, log))
	}

	platepalHandler := api.NewPlatePalHandler(deps.Generator, log)
	platepalHandler.RegisterRoutes(router.Group("/api"), proxyMiddleware...)

	return router
}
