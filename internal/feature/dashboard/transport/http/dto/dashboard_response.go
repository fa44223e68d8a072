package dto

import (
	attendancedto "attendance_backend/internal/feature/attendance/transport/http/dto"
	"attendance_backend/internal/feature/dashboard/domain/entity"
)

// TodayStatusRes は社員ダッシュボードの本日の状況です。
type TodayStatusRes struct {
	CheckedIn    bool    `json:"checkedIn"`
	CheckedOut   bool    `json:"checkedOut"`
	CheckInTime  *string `json:"checkInTime,omitempty"`
	CheckOutTime *string `json:"checkOutTime,omitempty"`
	Status       string  `json:"status,omitempty"`
}

// MonthlyStatsRes は当月の集計です。
type MonthlyStatsRes struct {
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	TotalHours float64 `json:"totalHours"`
}

// EmployeeDashboardRes は /api/dashboard/employee のレスポンスです。
type EmployeeDashboardRes struct {
	TodayStatus      TodayStatusRes                `json:"todayStatus"`
	MonthlyStats     MonthlyStatsRes               `json:"monthlyStats"`
	RecentAttendance []attendancedto.AttendanceRes `json:"recentAttendance"`
}

// TodayStatsRes は本日の全社員の集計です。
type TodayStatsRes struct {
	Present     int `json:"present"`
	Absent      int `json:"absent"`
	Late        int `json:"late"`
	OnLeave     int `json:"onLeave"`
	Unaccounted int `json:"unaccounted"`
}

// DayTrendRes は週次推移の1日分です。
type DayTrendRes struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
}

// DepartmentStatRes は部署別の出勤率です。
type DepartmentStatRes struct {
	Department string `json:"department"`
	Total      int    `json:"total"`
	Present    int    `json:"present"`
	Percentage int    `json:"percentage"`
}

// AbsentEmployeeRes は本日出勤していない社員です。
type AbsentEmployeeRes struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
	Reason     string `json:"reason"`
}

// ManagerDashboardRes は /api/dashboard/manager のレスポンスです。
type ManagerDashboardRes struct {
	TotalEmployees  int                 `json:"totalEmployees"`
	TodayStats      TodayStatsRes       `json:"todayStats"`
	WeeklyTrend     []DayTrendRes       `json:"weeklyTrend"`
	DepartmentStats []DepartmentStatRes `json:"departmentStats"`
	AbsentEmployees []AbsentEmployeeRes `json:"absentEmployees"`
}

// FromEmployeeDashboard はドメインの集計をレスポンスDTOに変換します。
func FromEmployeeDashboard(d *entity.EmployeeDashboard) EmployeeDashboardRes {
	return EmployeeDashboardRes{
		TodayStatus: TodayStatusRes{
			CheckedIn:    d.Today.CheckedIn,
			CheckedOut:   d.Today.CheckedOut,
			CheckInTime:  d.Today.CheckInTime,
			CheckOutTime: d.Today.CheckOutTime,
			Status:       string(d.Today.Status),
		},
		MonthlyStats: MonthlyStatsRes{
			Present:    d.Month.Present,
			Absent:     d.Month.Absent,
			Late:       d.Month.Late,
			TotalHours: d.Month.TotalHours,
		},
		RecentAttendance: attendancedto.FromAttendances(d.Recent),
	}
}

// FromManagerDashboard はドメインの集計をレスポンスDTOに変換します。
func FromManagerDashboard(d *entity.ManagerDashboard) ManagerDashboardRes {
	res := ManagerDashboardRes{
		TotalEmployees: d.TotalEmployees,
		TodayStats: TodayStatsRes{
			Present:     d.Today.Present,
			Absent:      d.Today.Absent,
			Late:        d.Today.Late,
			OnLeave:     d.Today.OnLeave,
			Unaccounted: d.Today.Unaccounted,
		},
		WeeklyTrend:     make([]DayTrendRes, 0, len(d.WeeklyTrend)),
		DepartmentStats: make([]DepartmentStatRes, 0, len(d.DepartmentStats)),
		AbsentEmployees: make([]AbsentEmployeeRes, 0, len(d.AbsentEmployees)),
	}
	for _, t := range d.WeeklyTrend {
		res.WeeklyTrend = append(res.WeeklyTrend, DayTrendRes(t))
	}
	for _, s := range d.DepartmentStats {
		res.DepartmentStats = append(res.DepartmentStats, DepartmentStatRes(s))
	}
	for _, e := range d.AbsentEmployees {
		res.AbsentEmployees = append(res.AbsentEmployees, AbsentEmployeeRes(e))
	}
	return res
}
