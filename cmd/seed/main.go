// Command seed replaces all users and attendance with demo data.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"attendance_backend/internal/app/di"
	"attendance_backend/internal/app/seed"
	"attendance_backend/internal/platform/config"
	"attendance_backend/internal/platform/logger"
	"attendance_backend/internal/shared/clock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	clk := clock.NewSystem(cfg.TimeZone)
	stores, err := di.NewStores(ctx, cfg, clk)
	if err != nil {
		slog.Error("open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			slog.Error("close store", "error", err)
		}
	}()

	// キャッシュ経由で削除し、古いディレクトリエントリも消す
	rdb := di.NewRedis(ctx, cfg)
	stores.WithUserCache(rdb, cfg.UserCacheTTL)

	res, err := seed.Run(ctx, stores.Users, stores.Attendance, seed.Options{Clock: clk})
	if err != nil {
		slog.Error("seed failed", "error", err)
		cancel()
		os.Exit(1)
	}
	slog.Info("seed completed", "users", res.Users, "records", res.Records, "from", res.Dates[len(res.Dates)-1], "to", res.Dates[0])
}
