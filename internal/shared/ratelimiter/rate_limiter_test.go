package ratelimiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimiter_Allow(t *testing.T) {
	mr, rdb := newMiniredis(t)
	rl := NewRateLimiter(rdb, 2, time.Minute, "rl")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := rl.Allow(ctx, "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, retry, err := rl.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Minute)

	// Other keys are independent.
	ok, _, err = rl.Allow(ctx, "login:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)

	// The window resets after the interval.
	mr.FastForward(time.Minute + time.Second)
	ok, _, err = rl.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_Disabled(t *testing.T) {
	tests := []struct {
		name string
		rl   *RateLimiter
	}{
		{name: "nil redis", rl: NewRateLimiter(nil, 1, time.Minute, "")},
		{name: "zero limit", rl: NewRateLimiter(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0, time.Minute, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				ok, _, err := tt.rl.Allow(context.Background(), "k")
				require.NoError(t, err)
				assert.True(t, ok)
			}
		})
	}
}

func TestRateLimiter_RedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()
	mock.ExpectEvalSha(fixedWindowScript.Hash(), []string{"ratelimit:k"}, int64(60000)).
		SetErr(errors.New("connection refused"))

	ok, _, err := NewRateLimiter(rdb, 1, time.Minute, "").Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, ok, "errors fail open")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RearmsKeyWithoutTTL(t *testing.T) {
	mr, rdb := newMiniredis(t)
	rl := NewRateLimiter(rdb, 2, time.Minute, "rl")
	ctx := context.Background()

	// 以前の書き込みでTTLが付かなかったカウンタ
	require.NoError(t, mr.Set("rl:login:10.0.0.1", "7"))
	require.Zero(t, mr.TTL("rl:login:10.0.0.1"))

	ok, retry, err := rl.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)
	assert.Equal(t, time.Minute, mr.TTL("rl:login:10.0.0.1"))

	mr.FastForward(time.Minute + time.Second)
	ok, _, err = rl.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "counter resets once the re-armed window expires")
}

func TestRateLimiter_WindowNotExtended(t *testing.T) {
	mr, rdb := newMiniredis(t)
	rl := NewRateLimiter(rdb, 5, time.Minute, "rl")
	ctx := context.Background()

	_, _, err := rl.Allow(ctx, "k")
	require.NoError(t, err)
	mr.FastForward(40 * time.Second)
	_, _, err = rl.Allow(ctx, "k")
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, mr.TTL("rl:k"))
	got, err := mr.Get("rl:k")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

type stubLimiter struct {
	allowed bool
	retry   time.Duration
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return s.allowed, s.retry, s.err
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		limiter        RateLimiterInterface
		expectedStatus int
		retryAfter     string
	}{
		{name: "nil limiter", limiter: nil, expectedStatus: http.StatusOK},
		{name: "allowed", limiter: stubLimiter{allowed: true}, expectedStatus: http.StatusOK},
		{name: "rejected", limiter: stubLimiter{retry: 1500 * time.Millisecond}, expectedStatus: http.StatusTooManyRequests, retryAfter: "2"},
		{name: "limiter error fails open", limiter: stubLimiter{err: errors.New("down")}, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/login", Middleware(tt.limiter), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"msg": "ok"})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.retryAfter, w.Header().Get("Retry-After"))
			if w.Code == http.StatusTooManyRequests {
				assert.JSONEq(t, `{"msg":"too many requests"}`, w.Body.String())
			}
		})
	}
}

func TestMiddleware_WithRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, rdb := newMiniredis(t)

	r := gin.New()
	r.POST("/login", Middleware(NewRateLimiter(rdb, 3, time.Minute, "")), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
