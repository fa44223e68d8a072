// Package handler はダッシュボードのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance_backend/internal/api"
	"attendance_backend/internal/feature/dashboard/domain/entity"
	"attendance_backend/internal/feature/dashboard/transport/http/dto"
	jwtmw "attendance_backend/internal/platform/jwt"
)

// DashboardUsecase はダッシュボード集計のユースケースを定義します。
type DashboardUsecase interface {
	EmployeeDashboard(ctx context.Context, userID uint) (*entity.EmployeeDashboard, error)
	ManagerDashboard(ctx context.Context) (*entity.ManagerDashboard, error)
}

// DashboardHandler はダッシュボードのHTTPリクエストを処理します。
type DashboardHandler struct {
	dashboard DashboardUsecase
}

// NewDashboardHandler はDashboardHandlerの新しいインスタンスを生成します。
func NewDashboardHandler(dashboard DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Employee はログイン中の社員のダッシュボードを返します。
func (h *DashboardHandler) Employee(c *gin.Context) {
	d, err := h.dashboard.EmployeeDashboard(c.Request.Context(), jwtmw.UserID(c))
	if err != nil {
		slog.Error("employee dashboard failed", "error", err, "user_id", jwtmw.UserID(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromEmployeeDashboard(d))
}

// Manager は管理者向けダッシュボードを返します。
func (h *DashboardHandler) Manager(c *gin.Context) {
	d, err := h.dashboard.ManagerDashboard(c.Request.Context())
	if err != nil {
		slog.Error("manager dashboard failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromManagerDashboard(d))
}
