// Package entity defines the read models served by the dashboard feature.
package entity

import attendance "attendance_backend/internal/feature/attendance/domain/entity"

// Absence tags for employees who are not present today.
const (
	AbsenceOnLeave     = "on-leave"
	AbsenceUnaccounted = "unaccounted"
)

// RecentDays is the window, including today, shown in an employee's recent attendance.
const RecentDays = 7

// TodayStatus describes the caller's record for today.
type TodayStatus struct {
	CheckedIn    bool
	CheckedOut   bool
	CheckInTime  *string
	CheckOutTime *string
	Status       attendance.Status // empty when no record exists
}

// MonthlyStats is the current month's roll-up for one employee.
type MonthlyStats struct {
	Present    int
	Absent     int
	Late       int
	TotalHours float64
}

// EmployeeDashboard is the employee landing page.
type EmployeeDashboard struct {
	Today  TodayStatus
	Month  MonthlyStats
	Recent []attendance.Attendance
}

// TodayStats counts today's attendance across all employees.
// Absent is derived as TotalEmployees - Present; OnLeave and Unaccounted
// split it by whether an explicit leave record exists.
type TodayStats struct {
	Present     int
	Absent      int
	Late        int
	OnLeave     int
	Unaccounted int
}

// DayTrend is the present count for one date.
type DayTrend struct {
	Date    string
	Present int
}

// DepartmentStat is today's attendance for one department.
type DepartmentStat struct {
	Department string
	Total      int
	Present    int
	Percentage int
}

// AbsentEmployee is an employee with no present or late record today.
type AbsentEmployee struct {
	ID         uint
	Name       string
	EmployeeID string
	Department string
	Reason     string // AbsenceOnLeave or AbsenceUnaccounted
}

// ManagerDashboard is the manager landing page.
type ManagerDashboard struct {
	TotalEmployees  int
	Today           TodayStats
	WeeklyTrend     []DayTrend
	DepartmentStats []DepartmentStat
	AbsentEmployees []AbsentEmployee
}
