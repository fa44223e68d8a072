// Package seed wipes the stores and fills them with demo users and a week of attendance.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/crypto/bcrypt"

	attendance "attendance_backend/internal/feature/attendance/domain/entity"
	authentity "attendance_backend/internal/feature/auth/domain/entity"
	"attendance_backend/internal/shared/clock"
)

const (
	// WorkingDays is how many weekdays of history are generated, counting back from today.
	WorkingDays = 7

	ManagerPassword  = "manager123"
	EmployeePassword = "123456"
)

// UserWriter is the part of the user repository the seeder needs.
type UserWriter interface {
	Create(ctx context.Context, u *authentity.User) error
	DeleteAll(ctx context.Context) error
}

// AttendanceWriter is the part of the attendance repository the seeder needs.
type AttendanceWriter interface {
	Create(ctx context.Context, a *attendance.Attendance) error
	DeleteAll(ctx context.Context) error
}

// Options controls randomness and time. Zero values select the system clock,
// a time-seeded generator and bcrypt.DefaultCost.
type Options struct {
	Clock    clock.Clock
	Rand     *rand.Rand
	HashCost int
}

// Result reports what was written.
type Result struct {
	Users   int
	Records int
	Dates   []string
}

type account struct {
	user     authentity.User
	password string
}

func demoAccounts() []account {
	return []account{
		{authentity.User{Name: "Manager", Email: "manager@example.com", Role: authentity.RoleManager, EmployeeID: "MGR001", Department: "Management"}, ManagerPassword},
		{authentity.User{Name: "John Doe", Email: "john@example.com", Role: authentity.RoleEmployee, EmployeeID: "EMP001", Department: "IT"}, EmployeePassword},
		{authentity.User{Name: "Priya Sharma", Email: "priya@example.com", Role: authentity.RoleEmployee, EmployeeID: "EMP002", Department: "HR"}, EmployeePassword},
		{authentity.User{Name: "Amit Kumar", Email: "amit@example.com", Role: authentity.RoleEmployee, EmployeeID: "EMP003", Department: "Finance"}, EmployeePassword},
	}
}

// WorkingDates returns the n most recent weekdays up to and including today, newest first.
func WorkingDates(today time.Time, n int) []string {
	dates := make([]string, 0, n)
	for d := today; len(dates) < n; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, d.Format(attendance.DateLayout))
	}
	return dates
}

// Record draws one day for one employee:
// 15% absent, 75% present (08:00-08:29), 10% late (09:01-09:59),
// with check-out between 17:30 and 17:59.
func Record(r *rand.Rand, userID uint, date string) (attendance.Attendance, error) {
	a := attendance.Attendance{UserID: userID, Date: date}

	p := r.Float64()
	if p < 0.15 {
		a.Status = attendance.StatusAbsent
		return a, nil
	}

	var in string
	if p < 0.90 {
		a.Status = attendance.StatusPresent
		in = fmt.Sprintf("08:%02d", r.IntN(30))
	} else {
		a.Status = attendance.StatusLate
		in = fmt.Sprintf("09:%02d", r.IntN(59)+1)
	}
	out := fmt.Sprintf("17:%02d", 30+r.IntN(30))

	hours, err := attendance.WorkedHours(in, out)
	if err != nil {
		return a, err
	}
	a.CheckInTime = &in
	a.CheckOutTime = &out
	a.TotalHours = attendance.Round2(hours)
	return a, nil
}

// Run deletes every user and attendance record, then writes the demo data.
func Run(ctx context.Context, users UserWriter, records AttendanceWriter, opts Options) (Result, error) {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem(nil)
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}

	if err := records.DeleteAll(ctx); err != nil {
		return Result{}, fmt.Errorf("clear attendance: %w", err)
	}
	if err := users.DeleteAll(ctx); err != nil {
		return Result{}, fmt.Errorf("clear users: %w", err)
	}
	slog.Info("old data removed")

	var res Result
	var employees []authentity.User
	for _, acc := range demoAccounts() {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), opts.HashCost)
		if err != nil {
			return res, fmt.Errorf("hash password: %w", err)
		}
		u := acc.user
		u.Password = string(hash)
		if err := users.Create(ctx, &u); err != nil {
			return res, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		res.Users++
		if u.Role == authentity.RoleEmployee {
			employees = append(employees, u)
		}
	}
	slog.Info("users created", "count", res.Users)

	res.Dates = WorkingDates(opts.Clock.Now(), WorkingDays)
	for _, emp := range employees {
		for _, date := range res.Dates {
			a, err := Record(opts.Rand, emp.ID, date)
			if err != nil {
				return res, err
			}
			if err := records.Create(ctx, &a); err != nil {
				return res, fmt.Errorf("create attendance %s/%s: %w", emp.EmployeeID, date, err)
			}
			res.Records++
		}
	}
	slog.Info("attendance seeded", "records", res.Records, "days", len(res.Dates))
	return res, nil
}
