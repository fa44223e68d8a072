package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendance_backend/internal/api"
	"attendance_backend/internal/feature/attendance/transport/http/dto"
	"attendance_backend/internal/feature/attendance/usecase"
)

// AllAttendance は全社員の記録を返します。
// クエリパラメータ employee（ユーザーIDまたは社員コード）、date、status で絞り込めます。
func (h *AttendanceHandler) AllAttendance(c *gin.Context) {
	var q dto.FilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		return
	}
	records, err := h.attendance.AllAttendance(c.Request.Context(), usecase.Filter{
		Employee: q.Employee,
		Date:     q.Date,
		Status:   q.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromJoined(records))
}

// EmployeeAttendance はパスパラメータidの社員の記録を返します。
func (h *AttendanceHandler) EmployeeAttendance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid employee id"})
		return
	}
	records, err := h.attendance.EmployeeAttendance(c.Request.Context(), uint(id))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromJoined(records))
}

// TeamSummary はチーム全体のサマリーを返します。
func (h *AttendanceHandler) TeamSummary(c *gin.Context) {
	s, err := h.attendance.TeamSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TeamSummaryRes{
		TotalEmployees: s.TotalEmployees,
		Present:        s.Present,
		Absent:         s.Absent,
		Late:           s.Late,
		HalfDay:        s.HalfDay,
	})
}

// TodayStatusAll は本日の全社員の記録を返します。
func (h *AttendanceHandler) TodayStatusAll(c *gin.Context) {
	records, err := h.attendance.TodayStatusAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromJoined(records))
}
