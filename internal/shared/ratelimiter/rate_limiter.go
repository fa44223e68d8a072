// Package ratelimiter はRedisの固定ウィンドウでリクエスト頻度を制限します。
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"attendance_backend/internal/api"
)

// RateLimiterInterface は、キー単位で操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// fixedWindowLua はカウンタのINCRとTTL設定を1回の呼び出しで原子的に行います。
// TTLのないキー（PTTLが負）は呼び出しのたびに再設定されるため、
// カウンタが永久に残ることはありません。
// 戻り値は {カウント, 残りミリ秒} です。
const fixedWindowLua = `
local n = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {n, ttl}
`

var fixedWindowScript = redis.NewScript(fixedWindowLua)

// RateLimiter は、キーごとに interval あたり limit 回まで許可します。
// カウンタはRedisに置くため、複数インスタンス間で共有されます。
type RateLimiter struct {
	rdb       *redis.Client
	limit     int           // ウィンドウあたりの上限
	interval  time.Duration // どの単位でリセットするか
	namespace string
	script    *redis.Script
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// rdbがnilまたはlimitが0以下の場合、すべてのリクエストを許可します。
func NewRateLimiter(rdb *redis.Client, limit int, interval time.Duration, namespace string) *RateLimiter {
	if interval <= 0 {
		interval = time.Minute
	}
	if namespace == "" {
		namespace = "ratelimit"
	}
	return &RateLimiter{rdb: rdb, limit: limit, interval: interval, namespace: namespace, script: fixedWindowScript}
}

// Allow はkeyのカウンタをLuaスクリプトで加算し、上限を超えたかを判定します。
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if rl.rdb == nil || rl.limit <= 0 {
		return true, 0, nil
	}
	k := fmt.Sprintf("%s:%s", rl.namespace, key)

	res, err := rl.script.Run(ctx, rl.rdb, []string{k}, rl.interval.Milliseconds()).Int64Slice()
	if err != nil {
		return true, 0, err
	}
	if len(res) != 2 {
		return true, 0, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	n, ttl := res[0], time.Duration(res[1])*time.Millisecond
	if n <= int64(rl.limit) {
		return true, 0, nil
	}
	if ttl <= 0 {
		ttl = rl.interval
	}
	return false, ttl, nil
}

// Middleware はクライアントIPとルートごとに頻度を制限するginミドルウェアを返します。
// Redisのエラー時はリクエストを通します。
func Middleware(rl RateLimiterInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}
		key := c.FullPath() + ":" + c.ClientIP()
		allowed, retry, err := rl.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}
		if !allowed {
			slog.Warn("[RATE LIMIT] request rejected", "path", c.FullPath(), "remote_addr", c.ClientIP(), "retry_after", retry)
			secs := int(retry.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Message: "too many requests"})
			return
		}
		c.Next()
	}
}
