package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance_backend/internal/api"
	"attendance_backend/internal/feature/attendance/transport/http/dto"
	jwtmw "attendance_backend/internal/platform/jwt"
)

// CheckIn は本日の出勤打刻を記録します。
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	userID := jwtmw.UserID(c)
	rec, err := h.attendance.CheckIn(c.Request.Context(), userID)
	if err != nil {
		slog.Warn("check-in failed", "error", err, "user_id", userID)
		writeError(c, err)
		return
	}
	slog.Info("checked in", "user_id", userID, "status", rec.Status, "time", *rec.CheckInTime)
	c.JSON(http.StatusCreated, dto.AttendanceMessageRes{Message: "Checked in successfully", Attendance: dto.FromAttendance(rec)})
}

// CheckOut は本日の退勤打刻を記録します。
// - 本日の記録がない場合は404
// - 退勤済み・休暇の記録の場合は400
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	userID := jwtmw.UserID(c)
	rec, err := h.attendance.CheckOut(c.Request.Context(), userID)
	if err != nil {
		slog.Warn("check-out failed", "error", err, "user_id", userID)
		writeError(c, err)
		return
	}
	slog.Info("checked out", "user_id", userID, "total_hours", rec.TotalHours)
	c.JSON(http.StatusOK, dto.AttendanceMessageRes{Message: "Checked out successfully", Attendance: dto.FromAttendance(rec)})
}

// ApplyLeave は休暇を申請します。ボディは省略可能です。
func (h *AttendanceHandler) ApplyLeave(c *gin.Context) {
	var req dto.ApplyLeaveReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		return
	}
	userID := jwtmw.UserID(c)
	rec, err := h.attendance.ApplyLeave(c.Request.Context(), userID, req.Date, req.Reason)
	if err != nil {
		slog.Warn("apply leave failed", "error", err, "user_id", userID, "date", req.Date)
		writeError(c, err)
		return
	}
	slog.Info("leave applied", "user_id", userID, "date", rec.Date)
	c.JSON(http.StatusCreated, dto.AttendanceMessageRes{Message: "Leave applied successfully", Attendance: dto.FromAttendance(rec)})
}

// MyHistory はログインユーザーの全記録を返します。
func (h *AttendanceHandler) MyHistory(c *gin.Context) {
	records, err := h.attendance.MyHistory(c.Request.Context(), jwtmw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAttendances(records))
}

// MySummary はクエリパラメータmonth（YYYY-MM）の月次サマリーを返します。
func (h *AttendanceHandler) MySummary(c *gin.Context) {
	summary, err := h.attendance.MySummary(c.Request.Context(), jwtmw.UserID(c), c.Query("month"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSummary(summary))
}

// TodayStatus は本日の記録を返します。未打刻の場合はメッセージのみを返します。
func (h *AttendanceHandler) TodayStatus(c *gin.Context) {
	rec, found, err := h.attendance.TodayStatus(c.Request.Context(), jwtmw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, api.MessageResponse{Message: "Not checked in yet"})
		return
	}
	c.JSON(http.StatusOK, dto.FromAttendance(rec))
}
