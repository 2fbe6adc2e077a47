package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/platepal/backend/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:     config.Test,
		ServerPort:      "0",
		GeminiAPIURL:    config.DefaultGeminiAPIURL,
		LogLevel:        "debug",
		LogFormat:       "console",
		AllowedOrigins:  []string{"*"},
		RateLimitWindow: time.Minute,
	}
}

func TestNew(t *testing.T) {
	srv, err := New(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, srv)

	for _, path := range []string{"/health", "/api/health"} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := New(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	// one proxy call so the counter has a sample
	req := httptest.NewRequest(http.MethodPost, "/api/platepal", strings.NewReader(`{"prompt":"p"}`))
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `platepal_proxy_requests_total{outcome="missing_key"}`)
}

func TestProxyWithoutKey(t *testing.T) {
	srv, err := New(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/platepal", strings.NewReader(`{"prompt":"p"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"API key not configured"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRateLimitedProxy(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := testConfig()
	cfg.RateLimitRequests = 1
	cfg.RedisURL = "redis://" + mr.Addr()

	srv, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/platepal", strings.NewReader(`{"prompt":"p"}`)))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusInternalServerError, http.StatusTooManyRequests}, codes)
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.RateLimitRequests = 1
	cfg.RedisURL = "redis://" + addr

	_, err = New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "failed to initialize rate limiter")
}

func TestStartAndShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.ServerHost = "127.0.0.1"
	srv, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}
