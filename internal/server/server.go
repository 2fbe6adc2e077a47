package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/platepal/backend/config"
	"github.com/pageza/platepal/backend/internal/database"
	"github.com/pageza/platepal/backend/internal/logger"
	"github.com/pageza/platepal/backend/internal/middleware"
	"github.com/pageza/platepal/backend/internal/router"
	"github.com/pageza/platepal/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	redis  *redis.Client
	logger *zap.Logger
}

// New creates a server instance wired from cfg.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	log = logger.OrNop(log)

	if !cfg.HasAPIKey() {
		log.Warn("GEMINI_API_KEY is not set; /api/platepal will answer with a configuration error")
	}

	gemini := service.NewGeminiService(service.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		APIURL:  cfg.GeminiAPIURL,
		Timeout: cfg.UpstreamTimeout,
	}, log.Named("gemini"))

	s := &Server{logger: log}

	limiter, err := s.newLimiter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.router = router.SetupRouter(router.Dependencies{
		Generator:      gemini,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        limiter,
		Logger:         log,
	})
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func (s *Server) newLimiter(ctx context.Context, cfg *config.Config) (middleware.Limiter, error) {
	if !cfg.RateLimitEnabled() {
		return nil, nil
	}

	rlCfg := middleware.RateLimitConfig{
		Window: cfg.RateLimitWindow,
		Limit:  cfg.RateLimitRequests,
	}

	if cfg.RedisURL == "" {
		s.logger.Info("rate limiting with in-process limiter",
			zap.Int("limit", rlCfg.Limit), zap.Duration("window", rlCfg.Window))
		return middleware.NewLocalLimiter(rlCfg), nil
	}

	client, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	s.redis = client
	s.logger.Info("rate limiting with Redis",
		zap.Int("limit", rlCfg.Limit), zap.Duration("window", rlCfg.Window))
	return middleware.NewRedisLimiter(client, rlCfg), nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until the server is shut down. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases the Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
