// Package usecase は出勤記録のCSVレポート出力を実装します。
package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"attendance_backend/internal/feature/attendance/domain/entity"
	attendanceuc "attendance_backend/internal/feature/attendance/usecase"
	"attendance_backend/internal/shared/apperr"
)

// Header はCSVの列見出しです。
var Header = []string{"name", "email", "employeeId", "department", "date", "checkInTime", "checkOutTime", "status", "totalHours"}

const notAvailable = "N/A"

// AttendanceLister は条件に一致する出勤記録を返します。
type AttendanceLister interface {
	List(ctx context.Context, q entity.Query) ([]entity.Attendance, error)
}

// Filter はレポートの絞り込み条件です。日付の範囲は両端を含みます。
type Filter struct {
	StartDate  string
	EndDate    string
	EmployeeID string // 数値のユーザーID、または社員コード
}

// reportUsecase はCSVレポートの生成を実装します。
type reportUsecase struct {
	records AttendanceLister
	users   attendanceuc.UserDirectory
}

// NewReportUsecase はreportUsecaseの新しいインスタンスを生成します。
func NewReportUsecase(records AttendanceLister, users attendanceuc.UserDirectory) *reportUsecase {
	return &reportUsecase{records: records, users: users}
}

func (u *reportUsecase) query(ctx context.Context, f Filter) (entity.Query, bool, error) {
	q := entity.Query{Ascending: true}
	if s := strings.TrimSpace(f.StartDate); s != "" {
		if !entity.IsDate(s) {
			return q, false, apperr.Validation("startDate", "startDate must be in YYYY-MM-DD format")
		}
		q.From = s
	}
	if e := strings.TrimSpace(f.EndDate); e != "" {
		if !entity.IsDate(e) {
			return q, false, apperr.Validation("endDate", "endDate must be in YYYY-MM-DD format")
		}
		q.To = e
	}
	// YYYY-MM-DD は文字列比較で日付順になります。
	if q.From != "" && q.To != "" && q.From > q.To {
		return q, false, apperr.Validation("startDate", "startDate must not be after endDate")
	}
	if ref := strings.TrimSpace(f.EmployeeID); ref != "" {
		id, found, err := attendanceuc.ResolveEmployee(ctx, u.users, ref)
		if err != nil {
			return q, false, fmt.Errorf("failed to resolve employee: %w", err)
		}
		if !found {
			return q, false, nil
		}
		q.UserID = &id
	}
	return q, true, nil
}

// ExportCSV は条件に一致する記録をユーザー情報付きのCSVとして返します。
// 該当する社員がいない場合は見出し行のみを返します。
func (u *reportUsecase) ExportCSV(ctx context.Context, f Filter) ([]byte, error) {
	q, ok, err := u.query(ctx, f)
	if err != nil {
		return nil, err
	}

	var joined []entity.AttendanceWithUser
	if ok {
		records, err := u.records.List(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to list attendance: %w", err)
		}
		joined, err = attendanceuc.JoinUsers(ctx, u.users, records)
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range joined {
		if err := w.Write(row(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func row(r entity.AttendanceWithUser) []string {
	var name, email, code, dept string
	if r.User != nil {
		name, email, code, dept = r.User.Name, r.User.Email, r.User.EmployeeID, r.User.Department
	}
	return []string{
		name,
		email,
		code,
		dept,
		r.Date,
		orNA(r.CheckInTime),
		orNA(r.CheckOutTime),
		string(r.Status),
		strconv.FormatFloat(r.TotalHours, 'f', -1, 64),
	}
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return notAvailable
	}
	return *s
}
