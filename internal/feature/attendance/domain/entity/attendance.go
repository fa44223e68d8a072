// Package entity defines the domain entities for the attendance feature.
package entity

import "time"

// Status is the attendance outcome for one user on one day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half-day"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay:
		return true
	}
	return false
}

const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04"
	MonthLayout = "2006-01"
)

// Attendance is the single record kept per (UserID, Date).
// Check-in and check-out are stored as time-of-day only, so a shift cannot span midnight.
type Attendance struct {
	ID           uint
	UserID       uint
	Date         string
	CheckInTime  *string
	CheckOutTime *string
	Status       Status
	TotalHours   float64
	LeaveReason  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CheckedIn reports whether the record has a check-in time.
func (a Attendance) CheckedIn() bool { return a.CheckInTime != nil }

// CheckedOut reports whether the record has a check-out time.
func (a Attendance) CheckedOut() bool { return a.CheckOutTime != nil }

// UserRef is the subset of user fields joined into manager views.
type UserRef struct {
	ID         uint
	Name       string
	Email      string
	EmployeeID string
	Department string
}

// AttendanceWithUser is an attendance record joined with its owner.
// User is nil when the owner no longer resolves.
type AttendanceWithUser struct {
	Attendance
	User *UserRef
}

// Query filters attendance listings. Zero values mean "no filter".
type Query struct {
	UserID      *uint
	Date        string
	From        string // inclusive
	To          string // inclusive
	MonthPrefix string // "YYYY-MM"
	Status      Status
	Ascending   bool
	Limit       int
}

// Summary is a monthly roll-up for one user.
type Summary struct {
	Present    int
	Absent     int
	Late       int
	HalfDay    int
	TotalHours float64
}

// TeamSummary counts every record by status across all users.
type TeamSummary struct {
	TotalEmployees int
	Present        int
	Absent         int
	Late           int
	HalfDay        int
}
