package router

import (
	"slices"
	"time"

	attendancehandler "attendance_backend/internal/feature/attendance/transport/handler"
	authentity "attendance_backend/internal/feature/auth/domain/entity"
	authhandler "attendance_backend/internal/feature/auth/transport/handler"
	dashboardhandler "attendance_backend/internal/feature/dashboard/transport/handler"
	reporthandler "attendance_backend/internal/feature/report/transport/handler"
	"attendance_backend/internal/platform/http/handler"
	"attendance_backend/internal/platform/http/middleware"
	jwtmw "attendance_backend/internal/platform/jwt"
	"attendance_backend/internal/platform/metrics"
	"attendance_backend/internal/shared/ratelimiter"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps はルーターが組み立てるハンドラーとミドルウェアの依存です。
type Deps struct {
	Auth       *authhandler.AuthHandler
	Attendance *attendancehandler.AttendanceHandler
	Dashboard  *dashboardhandler.DashboardHandler
	Report     *reporthandler.ReportHandler
	Health     *handler.HealthHandler

	// Metrics がnilなら /metrics は公開しません。
	Metrics *metrics.Metrics
	// AuthLimiter がnilなら登録・ログインの頻度制限は行いません。
	AuthLimiter ratelimiter.RateLimiterInterface

	JWTSecret   string
	CORSOrigins []string
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(nil), gin.Recovery())
	r.Use(cors.New(corsConfig(d.CORSOrigins)))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// 認証不要
	// 導通確認用
	health := d.Health
	if health == nil {
		health = handler.NewHealthHandler(0)
	}
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)

	api := r.Group("/api")
	authRequired := jwtmw.AuthRequired(d.JWTSecret)
	employee := jwtmw.RequireRole(string(authentity.RoleEmployee))
	manager := jwtmw.RequireRole(string(authentity.RoleManager))

	auth := api.Group("/auth")
	{
		limited := auth.Group("", ratelimiter.Middleware(d.AuthLimiter))
		// 新規ユーザー登録
		limited.POST("/register", d.Auth.Register)
		// ログイン（JWT 発行）
		limited.POST("/login", d.Auth.Login)

		// ロールを問わずトークンが必要
		auth.GET("/me", authRequired, d.Auth.Me)
		auth.PUT("/update", authRequired, d.Auth.UpdateProfile)
	}

	att := api.Group("/attendance", authRequired)
	{
		// 従業員
		att.POST("/checkin", employee, d.Attendance.CheckIn)
		att.POST("/checkout", employee, d.Attendance.CheckOut)
		att.POST("/apply-leave", employee, d.Attendance.ApplyLeave)
		att.GET("/my-history", employee, d.Attendance.MyHistory)
		att.GET("/my-summary", employee, d.Attendance.MySummary)
		att.GET("/today", employee, d.Attendance.TodayStatus)

		// 管理者
		att.GET("/all", manager, d.Attendance.AllAttendance)
		att.GET("/employee/:id", manager, d.Attendance.EmployeeAttendance)
		att.GET("/summary", manager, d.Attendance.TeamSummary)
		att.GET("/today-status", manager, d.Attendance.TodayStatusAll)
		att.GET("/export", manager, d.Report.ExportCSV)
	}

	dash := api.Group("/dashboard", authRequired)
	{
		dash.GET("/employee", employee, d.Dashboard.Employee)
		dash.GET("/manager", manager, d.Dashboard.Manager)
	}

	return r
}
