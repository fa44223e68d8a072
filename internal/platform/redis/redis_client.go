// Package redis はユーザーキャッシュとレート制限で共有するRedisクライアントを生成します。
package redis

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config はRedisの接続設定です。Hostが空の場合、Redisは無効として扱います。
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr はhost:port形式のアドレスを返します。
func (c Config) Addr() string {
	port := c.Port
	if port == "" {
		port = "6379"
	}
	return net.JoinHostPort(c.Host, port)
}

// NewRedisClient はRedisに接続し、Pingで疎通を確認します。
// Hostが未設定の場合は (nil, nil) を返し、呼び出し側はキャッシュとレート制限を無効にします。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Host == "" {
		slog.Info("Redis disabled: REDIS_HOST is not set")
		return nil, nil
	}
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
