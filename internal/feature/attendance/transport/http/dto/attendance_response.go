package dto

import (
	"time"

	"attendance_backend/internal/feature/attendance/domain/entity"
)

// AttendanceRes は出勤記録のレスポンスDTOです。
type AttendanceRes struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"userId"`
	Date         string    `json:"date"`         // YYYY-MM-DD
	CheckInTime  *string   `json:"checkInTime"`  // HH:mm
	CheckOutTime *string   `json:"checkOutTime"` // HH:mm
	Status       string    `json:"status"`
	TotalHours   float64   `json:"totalHours"`
	LeaveReason  *string   `json:"leaveReason"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRefRes は記録に結合されるユーザー情報です。
type UserRefRes struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
}

// AttendanceWithUserRes はユーザー情報付きの出勤記録です。
// 所有者が解決できない場合、userはnullになります。
type AttendanceWithUserRes struct {
	AttendanceRes
	User *UserRefRes `json:"user"`
}

// AttendanceMessageRes は打刻・休暇申請のレスポンスです。
type AttendanceMessageRes struct {
	Message    string        `json:"msg"`
	Attendance AttendanceRes `json:"attendance"`
}

// SummaryRes は月次サマリーのレスポンスです。
type SummaryRes struct {
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	HalfDay    int     `json:"halfday"`
	TotalHours float64 `json:"totalHours"`
}

// TeamSummaryRes はチーム全体のサマリーのレスポンスです。
type TeamSummaryRes struct {
	TotalEmployees int `json:"totalEmployees"`
	Present        int `json:"present"`
	Absent         int `json:"absent"`
	Late           int `json:"late"`
	HalfDay        int `json:"halfDay"`
}

// FromAttendance はドメインの記録をレスポンスDTOに変換します。
func FromAttendance(a *entity.Attendance) AttendanceRes {
	return AttendanceRes{
		ID:           a.ID,
		UserID:       a.UserID,
		Date:         a.Date,
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
		Status:       string(a.Status),
		TotalHours:   a.TotalHours,
		LeaveReason:  a.LeaveReason,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// FromAttendances はスライスを変換します。空の場合も空配列を返します。
func FromAttendances(records []entity.Attendance) []AttendanceRes {
	out := make([]AttendanceRes, 0, len(records))
	for i := range records {
		out = append(out, FromAttendance(&records[i]))
	}
	return out
}

// FromJoined はユーザー情報付きの記録を変換します。
func FromJoined(records []entity.AttendanceWithUser) []AttendanceWithUserRes {
	out := make([]AttendanceWithUserRes, 0, len(records))
	for i := range records {
		r := AttendanceWithUserRes{AttendanceRes: FromAttendance(&records[i].Attendance)}
		if u := records[i].User; u != nil {
			r.User = &UserRefRes{
				ID:         u.ID,
				Name:       u.Name,
				Email:      u.Email,
				EmployeeID: u.EmployeeID,
				Department: u.Department,
			}
		}
		out = append(out, r)
	}
	return out
}

// FromSummary は月次サマリーを変換します。合計時間は小数第2位で丸めます。
func FromSummary(s entity.Summary) SummaryRes {
	return SummaryRes{
		Present:    s.Present,
		Absent:     s.Absent,
		Late:       s.Late,
		HalfDay:    s.HalfDay,
		TotalHours: entity.Round2(s.TotalHours),
	}
}
