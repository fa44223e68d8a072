// Package handler は出勤管理フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance_backend/internal/api"
	"attendance_backend/internal/feature/attendance/domain/entity"
	"attendance_backend/internal/feature/attendance/usecase"
	"attendance_backend/internal/shared/apperr"
)

// AttendanceUsecase は出勤管理のユースケースを定義します。
type AttendanceUsecase interface {
	CheckIn(ctx context.Context, userID uint) (*entity.Attendance, error)
	CheckOut(ctx context.Context, userID uint) (*entity.Attendance, error)
	ApplyLeave(ctx context.Context, userID uint, date, reason string) (*entity.Attendance, error)
	MyHistory(ctx context.Context, userID uint) ([]entity.Attendance, error)
	MySummary(ctx context.Context, userID uint, month string) (entity.Summary, error)
	TodayStatus(ctx context.Context, userID uint) (*entity.Attendance, bool, error)

	TeamSummary(ctx context.Context) (entity.TeamSummary, error)
	AllAttendance(ctx context.Context, f usecase.Filter) ([]entity.AttendanceWithUser, error)
	EmployeeAttendance(ctx context.Context, userID uint) ([]entity.AttendanceWithUser, error)
	TodayStatusAll(ctx context.Context) ([]entity.AttendanceWithUser, error)
}

// AttendanceHandler は出勤管理のHTTPリクエストを処理します。
// 社員向けはemployee_handler.go、管理者向けはmanager_handler.goに定義しています。
type AttendanceHandler struct {
	attendance AttendanceUsecase
}

// NewAttendanceHandler はAttendanceHandlerの新しいインスタンスを生成します。
func NewAttendanceHandler(attendance AttendanceUsecase) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// writeError はユースケースのエラーをHTTPステータスに変換して返却します。
func writeError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: verr.Message})
	case errors.Is(err, usecase.ErrAlreadyCheckedIn):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "Already checked in today"})
	case errors.Is(err, usecase.ErrAlreadyCheckedOut):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "Already checked out today"})
	case errors.Is(err, usecase.ErrNoCheckIn):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "No check-in recorded for today"})
	case errors.Is(err, usecase.ErrAttendanceExists):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "Attendance already recorded for this date"})
	case errors.Is(err, usecase.ErrNotCheckedIn):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "You have not checked in today"})
	case errors.Is(err, usecase.ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "Employee not found"})
	default:
		slog.Error("attendance request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
	}
}
