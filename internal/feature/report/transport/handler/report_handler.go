// Package handler はレポート出力のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance_backend/internal/api"
	"attendance_backend/internal/feature/report/usecase"
	"attendance_backend/internal/shared/apperr"
)

// Filename はダウンロード時のファイル名です。
const Filename = "attendance_report.csv"

// ReportUsecase はCSVレポート出力のユースケースを定義します。
type ReportUsecase interface {
	ExportCSV(ctx context.Context, f usecase.Filter) ([]byte, error)
}

// ReportHandler はレポート出力のHTTPリクエストを処理します。
type ReportHandler struct {
	report ReportUsecase
}

// NewReportHandler はReportHandlerの新しいインスタンスを生成します。
func NewReportHandler(report ReportUsecase) *ReportHandler {
	return &ReportHandler{report: report}
}

// ExportCSV は出勤記録をCSV添付ファイルとして返却します。
// クエリパラメータ startDate、endDate、employeeId で絞り込めます。
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	f := usecase.Filter{
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		EmployeeID: c.Query("employeeId"),
	}
	data, err := h.report.ExportCSV(c.Request.Context(), f)
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: verr.Message})
			return
		}
		slog.Error("csv export failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
		return
	}
	slog.Info("csv exported", "bytes", len(data), "start", f.StartDate, "end", f.EndDate, "employee", f.EmployeeID)
	c.Header("Content-Disposition", `attachment; filename="`+Filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
