// Package usecase はダッシュボード表示用の集計を実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	attendance "attendance_backend/internal/feature/attendance/domain/entity"
	attendanceuc "attendance_backend/internal/feature/attendance/usecase"
	authentity "attendance_backend/internal/feature/auth/domain/entity"
	"attendance_backend/internal/feature/dashboard/domain/entity"
	"attendance_backend/internal/shared/clock"
)

// AttendanceReader はダッシュボードが参照する出勤記録の読み取り操作です。
type AttendanceReader interface {
	FindByUserAndDate(ctx context.Context, userID uint, date string) (*attendance.Attendance, error)
	List(ctx context.Context, q attendance.Query) ([]attendance.Attendance, error)
	Aggregate(ctx context.Context, q attendance.Query) (attendance.Summary, error)
}

// EmployeeLister はロール別のユーザー一覧を返します。
type EmployeeLister interface {
	ListByRole(ctx context.Context, role authentity.Role) ([]authentity.User, error)
}

// dashboardUsecase はダッシュボードの集計ロジックを実装します。
type dashboardUsecase struct {
	records AttendanceReader
	users   EmployeeLister
	clock   clock.Clock
}

// NewDashboardUsecase はdashboardUsecaseの新しいインスタンスを生成します。
func NewDashboardUsecase(records AttendanceReader, users EmployeeLister, clk clock.Clock) *dashboardUsecase {
	return &dashboardUsecase{records: records, users: users, clock: clk}
}

// isPresent はpresentまたはlateを出勤として扱います。
func isPresent(s attendance.Status) bool {
	return s == attendance.StatusPresent || s == attendance.StatusLate
}

// EmployeeDashboard は本日の状況、当月の集計、直近7日間の記録を返します。
func (u *dashboardUsecase) EmployeeDashboard(ctx context.Context, userID uint) (*entity.EmployeeDashboard, error) {
	now := u.clock.Now()
	today := now.Format(attendance.DateLayout)

	var status entity.TodayStatus
	rec, err := u.records.FindByUserAndDate(ctx, userID, today)
	switch {
	case err == nil:
		status = entity.TodayStatus{
			CheckedIn:    rec.CheckedIn(),
			CheckedOut:   rec.CheckedOut(),
			CheckInTime:  rec.CheckInTime,
			CheckOutTime: rec.CheckOutTime,
			Status:       rec.Status,
		}
	case errors.Is(err, attendanceuc.ErrAttendanceNotFound):
	default:
		return nil, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	month, err := u.records.Aggregate(ctx, attendance.Query{UserID: &userID, MonthPrefix: now.Format(attendance.MonthLayout)})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate month: %w", err)
	}

	recent, err := u.records.List(ctx, attendance.Query{
		UserID: &userID,
		From:   now.AddDate(0, 0, -(entity.RecentDays - 1)).Format(attendance.DateLayout),
		To:     today,
		Limit:  entity.RecentDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent attendance: %w", err)
	}

	return &entity.EmployeeDashboard{
		Today: status,
		Month: entity.MonthlyStats{
			Present:    month.Present,
			Absent:     month.Absent,
			Late:       month.Late,
			TotalHours: attendance.Round2(month.TotalHours),
		},
		Recent: recent,
	}, nil
}

// ManagerDashboard は社員数、本日の集計、週次推移、部署別出勤率、欠勤者一覧を返します。
// 集計対象はロールがemployeeのユーザーのみです。
func (u *dashboardUsecase) ManagerDashboard(ctx context.Context) (*entity.ManagerDashboard, error) {
	now := u.clock.Now()
	today := now.Format(attendance.DateLayout)

	employees, err := u.users.ListByRole(ctx, authentity.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	isEmployee := make(map[uint]bool, len(employees))
	for _, e := range employees {
		isEmployee[e.ID] = true
	}

	// 週次推移は1回の範囲クエリで取得し、本日分もここから切り出します。
	weekStart := now.AddDate(0, 0, -6)
	week, err := u.records.List(ctx, attendance.Query{
		From:      weekStart.Format(attendance.DateLayout),
		To:        today,
		Ascending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly attendance: %w", err)
	}

	presentByDate := make(map[string]int, 7)
	todayStatus := make(map[uint]attendance.Status)
	for _, r := range week {
		if !isEmployee[r.UserID] {
			continue
		}
		if isPresent(r.Status) {
			presentByDate[r.Date]++
		}
		if r.Date == today {
			todayStatus[r.UserID] = r.Status
		}
	}

	trend := make([]entity.DayTrend, 0, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i).Format(attendance.DateLayout)
		trend = append(trend, entity.DayTrend{Date: d, Present: presentByDate[d]})
	}

	var stats entity.TodayStats
	depts := make(map[string]*entity.DepartmentStat)
	absent := make([]entity.AbsentEmployee, 0)
	for _, e := range employees {
		d, ok := depts[e.Department]
		if !ok {
			d = &entity.DepartmentStat{Department: e.Department}
			depts[e.Department] = d
		}
		d.Total++

		s, recorded := todayStatus[e.ID]
		switch {
		case recorded && isPresent(s):
			stats.Present++
			d.Present++
			if s == attendance.StatusLate {
				stats.Late++
			}
		case recorded && s == attendance.StatusAbsent:
			stats.OnLeave++
			absent = append(absent, absentEmployee(e, entity.AbsenceOnLeave))
		case !recorded:
			stats.Unaccounted++
			absent = append(absent, absentEmployee(e, entity.AbsenceUnaccounted))
		}
	}
	stats.Absent = len(employees) - stats.Present

	deptStats := make([]entity.DepartmentStat, 0, len(depts))
	for _, d := range depts {
		if d.Total > 0 {
			d.Percentage = int(math.Round(float64(d.Present) / float64(d.Total) * 100))
		}
		deptStats = append(deptStats, *d)
	}
	sort.Slice(deptStats, func(i, j int) bool { return deptStats[i].Department < deptStats[j].Department })

	return &entity.ManagerDashboard{
		TotalEmployees:  len(employees),
		Today:           stats,
		WeeklyTrend:     trend,
		DepartmentStats: deptStats,
		AbsentEmployees: absent,
	}, nil
}

func absentEmployee(u authentity.User, reason string) entity.AbsentEmployee {
	return entity.AbsentEmployee{
		ID:         u.ID,
		Name:       u.Name,
		EmployeeID: u.EmployeeID,
		Department: u.Department,
		Reason:     reason,
	}
}
