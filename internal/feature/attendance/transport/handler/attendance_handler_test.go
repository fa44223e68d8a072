package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance_backend/internal/feature/attendance/domain/entity"
	"attendance_backend/internal/feature/attendance/usecase"
	jwtmw "attendance_backend/internal/platform/jwt"
	"attendance_backend/internal/shared/apperr"
)

// mockAttendanceUsecase is a mock implementation of the AttendanceUsecase interface.
type mockAttendanceUsecase struct {
	CheckInFunc            func(ctx context.Context, userID uint) (*entity.Attendance, error)
	CheckOutFunc           func(ctx context.Context, userID uint) (*entity.Attendance, error)
	ApplyLeaveFunc         func(ctx context.Context, userID uint, date, reason string) (*entity.Attendance, error)
	MyHistoryFunc          func(ctx context.Context, userID uint) ([]entity.Attendance, error)
	MySummaryFunc          func(ctx context.Context, userID uint, month string) (entity.Summary, error)
	TodayStatusFunc        func(ctx context.Context, userID uint) (*entity.Attendance, bool, error)
	TeamSummaryFunc        func(ctx context.Context) (entity.TeamSummary, error)
	AllAttendanceFunc      func(ctx context.Context, f usecase.Filter) ([]entity.AttendanceWithUser, error)
	EmployeeAttendanceFunc func(ctx context.Context, userID uint) ([]entity.AttendanceWithUser, error)
	TodayStatusAllFunc     func(ctx context.Context) ([]entity.AttendanceWithUser, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockAttendanceUsecase) CheckIn(ctx context.Context, userID uint) (*entity.Attendance, error) {
	if m.CheckInFunc != nil {
		return m.CheckInFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockAttendanceUsecase) CheckOut(ctx context.Context, userID uint) (*entity.Attendance, error) {
	if m.CheckOutFunc != nil {
		return m.CheckOutFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockAttendanceUsecase) ApplyLeave(ctx context.Context, userID uint, date, reason string) (*entity.Attendance, error) {
	if m.ApplyLeaveFunc != nil {
		return m.ApplyLeaveFunc(ctx, userID, date, reason)
	}
	return nil, errNotImplemented
}

func (m *mockAttendanceUsecase) MyHistory(ctx context.Context, userID uint) ([]entity.Attendance, error) {
	if m.MyHistoryFunc != nil {
		return m.MyHistoryFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockAttendanceUsecase) MySummary(ctx context.Context, userID uint, month string) (entity.Summary, error) {
	if m.MySummaryFunc != nil {
		return m.MySummaryFunc(ctx, userID, month)
	}
	return entity.Summary{}, errNotImplemented
}

func (m *mockAttendanceUsecase) TodayStatus(ctx context.Context, userID uint) (*entity.Attendance, bool, error) {
	if m.TodayStatusFunc != nil {
		return m.TodayStatusFunc(ctx, userID)
	}
	return nil, false, errNotImplemented
}

func (m *mockAttendanceUsecase) TeamSummary(ctx context.Context) (entity.TeamSummary, error) {
	if m.TeamSummaryFunc != nil {
		return m.TeamSummaryFunc(ctx)
	}
	return entity.TeamSummary{}, errNotImplemented
}

func (m *mockAttendanceUsecase) AllAttendance(ctx context.Context, f usecase.Filter) ([]entity.AttendanceWithUser, error) {
	if m.AllAttendanceFunc != nil {
		return m.AllAttendanceFunc(ctx, f)
	}
	return nil, errNotImplemented
}

func (m *mockAttendanceUsecase) EmployeeAttendance(ctx context.Context, userID uint) ([]entity.AttendanceWithUser, error) {
	if m.EmployeeAttendanceFunc != nil {
		return m.EmployeeAttendanceFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockAttendanceUsecase) TodayStatusAll(ctx context.Context) ([]entity.AttendanceWithUser, error) {
	if m.TodayStatusAllFunc != nil {
		return m.TodayStatusAllFunc(ctx)
	}
	return nil, errNotImplemented
}

func strp(s string) *string { return &s }

func newRouter(m *mockAttendanceUsecase, userID uint) (*gin.Engine, *AttendanceHandler) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextUserID, userID)
		c.Next()
	})
	return r, NewAttendanceHandler(m)
}

func perform(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return w, out
}

func msgOf(body any) string {
	m, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["msg"].(string)
	return s
}

func TestAttendanceHandler_CheckIn(t *testing.T) {
	tests := []struct {
		name           string
		mockFunc       func(ctx context.Context, userID uint) (*entity.Attendance, error)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "success",
			mockFunc: func(ctx context.Context, userID uint) (*entity.Attendance, error) {
				return &entity.Attendance{ID: 1, UserID: userID, Date: "2024-01-15", CheckInTime: strp("08:45"), Status: entity.StatusPresent}, nil
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "Checked in successfully",
		},
		{
			name: "already checked in",
			mockFunc: func(ctx context.Context, userID uint) (*entity.Attendance, error) {
				return nil, usecase.ErrAlreadyCheckedIn
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Already checked in today",
		},
		{
			name: "storage failure",
			mockFunc: func(ctx context.Context, userID uint) (*entity.Attendance, error) {
				return nil, errors.New("connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, h := newRouter(&mockAttendanceUsecase{CheckInFunc: tt.mockFunc}, 3)
			r.POST("/checkin", h.CheckIn)

			w, body := perform(t, r, http.MethodPost, "/checkin", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedMsg, msgOf(body))
			if w.Code == http.StatusCreated {
				rec := body.(map[string]any)["attendance"].(map[string]any)
				assert.Equal(t, "08:45", rec["checkInTime"])
				assert.Nil(t, rec["checkOutTime"])
				assert.Equal(t, float64(3), rec["userId"])
			}
		})
	}
}

func TestAttendanceHandler_CheckOut(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{name: "success", expectedStatus: http.StatusOK, expectedMsg: "Checked out successfully"},
		{name: "not checked in", err: usecase.ErrNotCheckedIn, expectedStatus: http.StatusNotFound, expectedMsg: "You have not checked in today"},
		{name: "already checked out", err: usecase.ErrAlreadyCheckedOut, expectedStatus: http.StatusBadRequest, expectedMsg: "Already checked out today"},
		{name: "leave record", err: usecase.ErrNoCheckIn, expectedStatus: http.StatusBadRequest, expectedMsg: "No check-in recorded for today"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockAttendanceUsecase{CheckOutFunc: func(ctx context.Context, userID uint) (*entity.Attendance, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &entity.Attendance{ID: 1, UserID: userID, Date: "2024-01-15", CheckInTime: strp("08:45"), CheckOutTime: strp("17:30"), Status: entity.StatusPresent, TotalHours: 8.75}, nil
			}}
			r, h := newRouter(m, 3)
			r.POST("/checkout", h.CheckOut)

			w, body := perform(t, r, http.MethodPost, "/checkout", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedMsg, msgOf(body))
			if w.Code == http.StatusOK {
				rec := body.(map[string]any)["attendance"].(map[string]any)
				assert.Equal(t, 8.75, rec["totalHours"])
			}
		})
	}
}

func TestAttendanceHandler_ApplyLeave(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedDate   string
		expectedReason string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "with date and reason",
			body:           `{"date":"2024-01-20","reason":"Sick"}`,
			expectedDate:   "2024-01-20",
			expectedReason: "Sick",
			expectedStatus: http.StatusCreated,
			expectedMsg:    "Leave applied successfully",
		},
		{
			name:           "empty body defaults to today",
			expectedStatus: http.StatusCreated,
			expectedMsg:    "Leave applied successfully",
		},
		{
			name:           "malformed json",
			body:           `{"date":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid date",
			body:           `{"date":"20-01-2024"}`,
			expectedDate:   "20-01-2024",
			err:            apperr.Validation("date", "date must be in YYYY-MM-DD format"),
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "date must be in YYYY-MM-DD format",
		},
		{
			name:           "conflict",
			body:           `{"date":"2024-01-20"}`,
			expectedDate:   "2024-01-20",
			err:            usecase.ErrAttendanceExists,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Attendance already recorded for this date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockAttendanceUsecase{ApplyLeaveFunc: func(ctx context.Context, userID uint, date, reason string) (*entity.Attendance, error) {
				assert.Equal(t, tt.expectedDate, date)
				assert.Equal(t, tt.expectedReason, reason)
				if tt.err != nil {
					return nil, tt.err
				}
				if date == "" {
					date = "2024-01-15"
				}
				rec := &entity.Attendance{ID: 2, UserID: userID, Date: date, Status: entity.StatusAbsent}
				if reason != "" {
					rec.LeaveReason = &reason
				}
				return rec, nil
			}}
			r, h := newRouter(m, 3)
			r.POST("/apply-leave", h.ApplyLeave)

			w, body := perform(t, r, http.MethodPost, "/apply-leave", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, msgOf(body))
			}
			if w.Code == http.StatusCreated {
				rec := body.(map[string]any)["attendance"].(map[string]any)
				assert.Equal(t, "absent", rec["status"])
			}
		})
	}
}

func TestAttendanceHandler_MySummary(t *testing.T) {
	var gotMonth string
	m := &mockAttendanceUsecase{MySummaryFunc: func(ctx context.Context, userID uint, month string) (entity.Summary, error) {
		gotMonth = month
		if month == "bad" {
			return entity.Summary{}, apperr.Validation("month", "month must be in YYYY-MM format")
		}
		return entity.Summary{Present: 2, Absent: 1, Late: 1, TotalHours: 25.333}, nil
	}}
	r, h := newRouter(m, 3)
	r.GET("/my-summary", h.MySummary)

	w, body := perform(t, r, http.MethodGet, "/my-summary?month=2024-01", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01", gotMonth)
	assert.Equal(t, map[string]any{
		"present": float64(2), "absent": float64(1), "late": float64(1), "halfday": float64(0), "totalHours": 25.33,
	}, body)

	w, body = perform(t, r, http.MethodGet, "/my-summary?month=bad", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "month must be in YYYY-MM format", msgOf(body))
}

func TestAttendanceHandler_MyHistoryAndToday(t *testing.T) {
	m := &mockAttendanceUsecase{
		MyHistoryFunc: func(ctx context.Context, userID uint) ([]entity.Attendance, error) {
			return nil, nil
		},
		TodayStatusFunc: func(ctx context.Context, userID uint) (*entity.Attendance, bool, error) {
			if userID == 3 {
				return nil, false, nil
			}
			return &entity.Attendance{ID: 9, UserID: userID, Date: "2024-01-15", CheckInTime: strp("09:10"), Status: entity.StatusLate}, true, nil
		},
	}

	r, h := newRouter(m, 3)
	r.GET("/my-history", h.MyHistory)
	r.GET("/today", h.TodayStatus)

	w, body := perform(t, r, http.MethodGet, "/my-history", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, body)

	w, body = perform(t, r, http.MethodGet, "/today", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Not checked in yet", msgOf(body))

	r2, h2 := newRouter(m, 4)
	r2.GET("/today", h2.TodayStatus)
	w, body = perform(t, r2, http.MethodGet, "/today", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "late", body.(map[string]any)["status"])
}

func TestAttendanceHandler_AllAttendance(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedFilter usecase.Filter
		err            error
		expectedStatus int
	}{
		{
			name:           "no filter",
			query:          "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "all filters",
			query:          "?employee=EMP001&date=2024-01-15&status=late",
			expectedFilter: usecase.Filter{Employee: "EMP001", Date: "2024-01-15", Status: "late"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid status",
			query:          "?status=sleeping",
			expectedFilter: usecase.Filter{Status: "sleeping"},
			err:            apperr.Validation("status", "status must be one of present, absent, late, half-day"),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockAttendanceUsecase{AllAttendanceFunc: func(ctx context.Context, f usecase.Filter) ([]entity.AttendanceWithUser, error) {
				assert.Equal(t, tt.expectedFilter, f)
				if tt.err != nil {
					return nil, tt.err
				}
				return []entity.AttendanceWithUser{
					{
						Attendance: entity.Attendance{ID: 1, UserID: 2, Date: "2024-01-15", CheckInTime: strp("09:10"), Status: entity.StatusLate},
						User:       &entity.UserRef{ID: 2, Name: "Alice", Email: "alice@example.com", EmployeeID: "EMP001", Department: "IT"},
					},
					{
						Attendance: entity.Attendance{ID: 2, UserID: 99, Date: "2024-01-15", Status: entity.StatusAbsent},
					},
				}, nil
			}}
			r, h := newRouter(m, 1)
			r.GET("/all", h.AllAttendance)

			w, body := perform(t, r, http.MethodGet, "/all"+tt.query, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if w.Code != http.StatusOK {
				return
			}
			list := body.([]any)
			require.Len(t, list, 2)
			first := list[0].(map[string]any)
			assert.Equal(t, "EMP001", first["user"].(map[string]any)["employeeId"])
			assert.Nil(t, list[1].(map[string]any)["user"])
		})
	}
}

func TestAttendanceHandler_EmployeeAttendance(t *testing.T) {
	m := &mockAttendanceUsecase{EmployeeAttendanceFunc: func(ctx context.Context, userID uint) ([]entity.AttendanceWithUser, error) {
		if userID != 2 {
			return nil, usecase.ErrEmployeeNotFound
		}
		return []entity.AttendanceWithUser{}, nil
	}}
	r, h := newRouter(m, 1)
	r.GET("/employee/:id", h.EmployeeAttendance)

	w, body := perform(t, r, http.MethodGet, "/employee/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, body)

	w, body = perform(t, r, http.MethodGet, "/employee/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Employee not found", msgOf(body))

	w, _ = perform(t, r, http.MethodGet, "/employee/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandler_TeamSummaryAndTodayAll(t *testing.T) {
	m := &mockAttendanceUsecase{
		TeamSummaryFunc: func(ctx context.Context) (entity.TeamSummary, error) {
			return entity.TeamSummary{TotalEmployees: 3, Present: 10, Absent: 2, Late: 4, HalfDay: 1}, nil
		},
		TodayStatusAllFunc: func(ctx context.Context) ([]entity.AttendanceWithUser, error) {
			return nil, errors.New("boom")
		},
	}
	r, h := newRouter(m, 1)
	r.GET("/summary", h.TeamSummary)
	r.GET("/today-status", h.TodayStatusAll)

	w, body := perform(t, r, http.MethodGet, "/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{
		"totalEmployees": float64(3), "present": float64(10), "absent": float64(2), "late": float64(4), "halfDay": float64(1),
	}, body)

	w, body = perform(t, r, http.MethodGet, "/today-status", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", msgOf(body))
}
