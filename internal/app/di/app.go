package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"attendance_backend/internal/app/router"
	attendancehandler "attendance_backend/internal/feature/attendance/transport/handler"
	attendanceuc "attendance_backend/internal/feature/attendance/usecase"
	authhandler "attendance_backend/internal/feature/auth/transport/handler"
	authuc "attendance_backend/internal/feature/auth/usecase"
	dashboardhandler "attendance_backend/internal/feature/dashboard/transport/handler"
	dashboarduc "attendance_backend/internal/feature/dashboard/usecase"
	reporthandler "attendance_backend/internal/feature/report/transport/handler"
	reportuc "attendance_backend/internal/feature/report/usecase"
	"attendance_backend/internal/platform/config"
	"attendance_backend/internal/platform/http/handler"
	jwtmw "attendance_backend/internal/platform/jwt"
	"attendance_backend/internal/platform/metrics"
	"attendance_backend/internal/shared/clock"
	"attendance_backend/internal/shared/ratelimiter"
)

// NewRouterDeps はリポジトリからユースケースとハンドラーを組み立てます。
// rdbがnilの場合、登録・ログインの頻度制限は無効になります。
func NewRouterDeps(cfg *config.Config, stores *Stores, rdb *redis.Client, clk clock.Clock, m *metrics.Metrics) router.Deps {
	// Usecase
	authUC := authuc.NewAuthUsecase(stores.Users, jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTTTL))
	attendanceUC := attendanceuc.NewAttendanceUsecase(stores.Attendance, stores.Users, clk)
	dashboardUC := dashboarduc.NewDashboardUsecase(stores.Attendance, stores.Users, clk)
	reportUC := reportuc.NewReportUsecase(stores.Attendance, stores.Users)

	var limiter ratelimiter.RateLimiterInterface
	if rdb != nil && cfg.AuthRateLimit > 0 {
		limiter = ratelimiter.NewRateLimiter(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow, "ratelimit:auth")
	}

	// Handler
	return router.Deps{
		Auth:        authhandler.NewAuthHandler(authUC),
		Attendance:  attendancehandler.NewAttendanceHandler(attendanceUC),
		Dashboard:   dashboardhandler.NewDashboardHandler(dashboardUC),
		Report:      reporthandler.NewReportHandler(reportUC),
		Health:      handler.NewHealthHandler(2*time.Second, stores.Checks...),
		Metrics:     m,
		AuthLimiter: limiter,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
	}
}
