package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLimiter(t *testing.T) {
	mr, client := newMiniRedis(t)
	limiter := NewRedisLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 2})
	fixed := time.Date(2026, 10, 18, 12, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	ctx := context.Background()

	d, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, fixed.Truncate(time.Minute).Add(time.Minute), d.Reset)

	d, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	// other callers have their own window
	d, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	key := "rate_limit:platepal:10.0.0.1:" + strconv.FormatInt(fixed.Truncate(time.Minute).Unix(), 10)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestRedisLimiterUnavailable(t *testing.T) {
	mr, client := newMiniRedis(t)
	limiter := NewRedisLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 2})
	mr.Close()

	_, err := limiter.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
}

func TestLocalLimiter(t *testing.T) {
	limiter := NewLocalLimiter(RateLimitConfig{Window: time.Minute, Limit: 2})
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 2, d.Limit)

	// one token refills every Window/Limit
	now = now.Add(30 * time.Second)
	d, err = limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLocalLimiterSweepsIdleBuckets(t *testing.T) {
	limiter := NewLocalLimiter(RateLimitConfig{Window: time.Second, Limit: 1})
	now := time.Now()
	limiter.now = func() time.Time { return now }

	_, _ = limiter.Allow(context.Background(), "old")
	now = now.Add(2 * time.Second)
	limiter.mu.Lock()
	limiter.sweep(now)
	limiter.mu.Unlock()

	assert.Empty(t, limiter.buckets)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	newRouter := func(l Limiter) *gin.Engine {
		router := gin.New()
		router.Use(RateLimit(l, zaptest.NewLogger(t)))
		router.POST("/api/platepal", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"text": "ok"})
		})
		return router
	}

	t.Run("rejects over limit", func(t *testing.T) {
		router := newRouter(NewLocalLimiter(RateLimitConfig{Window: time.Hour, Limit: 1}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/platepal", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/platepal", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "rate limit exceeded")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("fails open", func(t *testing.T) {
		router := newRouter(failingLimiter{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/platepal", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
	})
}
