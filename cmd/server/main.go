package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"attendance_backend/internal/app/di"
	"attendance_backend/internal/app/router"
	"attendance_backend/internal/platform/config"
	"attendance_backend/internal/platform/logger"
	"attendance_backend/internal/platform/metrics"
	"attendance_backend/internal/shared/clock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.NewSystem(cfg.TimeZone)

	// db
	stores, err := di.NewStores(ctx, cfg, clk)
	if err != nil {
		slog.Error("open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}

	// Redis（なければキャッシュとレート制限なしで動作）
	rdb := di.NewRedis(ctx, cfg)
	stores.WithUserCache(rdb, cfg.UserCacheTTL)

	deps := di.NewRouterDeps(cfg, stores, rdb, clk, metrics.New())
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("api server listening", "addr", cfg.HTTPAddr, "store", cfg.Store, "redis", rdb != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server run failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down api server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	if err := stores.Close(shutdownCtx); err != nil {
		slog.Error("close resources failed", "error", err)
	}
}
