package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance_backend/internal/feature/report/usecase"
	"attendance_backend/internal/shared/apperr"
)

type mockReportUsecase struct {
	ExportCSVFunc func(ctx context.Context, f usecase.Filter) ([]byte, error)
}

func (m *mockReportUsecase) ExportCSV(ctx context.Context, f usecase.Filter) ([]byte, error) {
	return m.ExportCSVFunc(ctx, f)
}

func TestReportHandler_ExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		query          string
		expectedFilter usecase.Filter
		result         []byte
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "success",
			query:          "?startDate=2024-01-01&endDate=2024-01-31&employeeId=EMP001",
			expectedFilter: usecase.Filter{StartDate: "2024-01-01", EndDate: "2024-01-31", EmployeeID: "EMP001"},
			result:         []byte("name,email\nAlice,alice@example.com\n"),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "validation error",
			query:          "?startDate=2024-02-01&endDate=2024-01-01",
			expectedFilter: usecase.Filter{StartDate: "2024-02-01", EndDate: "2024-01-01"},
			err:            apperr.Validation("startDate", "startDate must not be after endDate"),
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "startDate must not be after endDate",
		},
		{
			name:           "internal error",
			err:            errors.New("db down"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&mockReportUsecase{ExportCSVFunc: func(ctx context.Context, f usecase.Filter) ([]byte, error) {
				assert.Equal(t, tt.expectedFilter, f)
				return tt.result, tt.err
			}})
			r := gin.New()
			r.GET("/export", h.ExportCSV)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if w.Code == http.StatusOK {
				assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
				assert.Equal(t, `attachment; filename="attendance_report.csv"`, w.Header().Get("Content-Disposition"))
				assert.Equal(t, string(tt.result), w.Body.String())
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedMsg, body["msg"])
		})
	}
}
