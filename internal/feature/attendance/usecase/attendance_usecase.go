package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"attendance_backend/internal/feature/attendance/domain/entity"
	authdomain "attendance_backend/internal/feature/auth/domain"
	authentity "attendance_backend/internal/feature/auth/domain/entity"
	"attendance_backend/internal/shared/apperr"
	"attendance_backend/internal/shared/clock"
)

// AttendanceRepository は出勤記録の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type AttendanceRepository interface {
	// Create は(UserID, Date)の記録が存在しない場合のみ挿入します。
	// 既に存在する場合はErrAttendanceExistsを返します。判定はストレージ側で原子的に行われます。
	Create(ctx context.Context, a *entity.Attendance) error

	// FindByUserAndDate は指定ユーザー・日付の記録を返します。
	// 存在しない場合はErrAttendanceNotFoundを返します。
	FindByUserAndDate(ctx context.Context, userID uint, date string) (*entity.Attendance, error)

	// MarkCheckedOut はチェックアウト時刻が未設定の場合のみ退勤時刻と勤務時間を記録します。
	// 既に設定済みの場合はErrAlreadyCheckedOutを返します。
	MarkCheckedOut(ctx context.Context, id uint, checkOut string, totalHours float64) error

	// List はクエリに一致する記録を日付順に返します。
	List(ctx context.Context, q entity.Query) ([]entity.Attendance, error)

	// Aggregate はクエリに一致する記録をステータス別に集計し、勤務時間を合計します。
	Aggregate(ctx context.Context, q entity.Query) (entity.Summary, error)
}

// UserDirectory は出勤記録に結合するユーザー情報の参照先です。
type UserDirectory interface {
	// FindByIDs は指定されたIDのユーザーを返します。存在しないIDは無視されます。
	FindByIDs(ctx context.Context, ids []uint) ([]authentity.User, error)

	// FindByEmployeeID は社員コードでユーザーを返します。
	FindByEmployeeID(ctx context.Context, code string) (*authentity.User, error)

	// ListByRole は指定ロールのユーザーを返します。
	ListByRole(ctx context.Context, role authentity.Role) ([]authentity.User, error)
}

// Filter は管理者向け一覧の絞り込み条件です。空文字は「指定なし」を意味します。
type Filter struct {
	Employee string // 数値のユーザーID、または社員コード
	Date     string
	Status   string
}

// attendanceUsecase は出勤管理のビジネスロジックを実装します。
type attendanceUsecase struct {
	records AttendanceRepository
	users   UserDirectory
	clock   clock.Clock
}

// NewAttendanceUsecase はattendanceUsecaseの新しいインスタンスを生成します。
func NewAttendanceUsecase(records AttendanceRepository, users UserDirectory, clk clock.Clock) *attendanceUsecase {
	return &attendanceUsecase{records: records, users: users, clock: clk}
}

func (u *attendanceUsecase) today() string {
	return u.clock.Now().Format(entity.DateLayout)
}

// CheckIn は本日の出勤を記録します。09:00:00より後の打刻はlateになります。
func (u *attendanceUsecase) CheckIn(ctx context.Context, userID uint) (*entity.Attendance, error) {
	now := u.clock.Now()
	checkIn := now.Format(entity.TimeLayout)
	rec := &entity.Attendance{
		UserID:      userID,
		Date:        now.Format(entity.DateLayout),
		CheckInTime: &checkIn,
		Status:      entity.CheckInStatus(now),
	}
	if err := u.records.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrAttendanceExists) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}
	return rec, nil
}

// CheckOut は本日の記録に退勤時刻と勤務時間を設定します。
func (u *attendanceUsecase) CheckOut(ctx context.Context, userID uint) (*entity.Attendance, error) {
	now := u.clock.Now()
	rec, err := u.records.FindByUserAndDate(ctx, userID, now.Format(entity.DateLayout))
	if err != nil {
		if errors.Is(err, ErrAttendanceNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, fmt.Errorf("failed to load today's attendance: %w", err)
	}
	if rec.CheckedOut() {
		return nil, ErrAlreadyCheckedOut
	}
	if !rec.CheckedIn() {
		return nil, ErrNoCheckIn
	}

	checkOut := now.Format(entity.TimeLayout)
	hours, err := entity.WorkedHours(*rec.CheckInTime, checkOut)
	if err != nil {
		return nil, fmt.Errorf("stored check-in time %q is malformed: %w", *rec.CheckInTime, err)
	}
	if err := u.records.MarkCheckedOut(ctx, rec.ID, checkOut, hours); err != nil {
		if errors.Is(err, ErrAlreadyCheckedOut) {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, fmt.Errorf("failed to record check-out: %w", err)
	}
	rec.CheckOutTime = &checkOut
	rec.TotalHours = hours
	rec.UpdatedAt = now
	return rec, nil
}

// ApplyLeave は指定日（省略時は本日）をabsentとして記録します。
func (u *attendanceUsecase) ApplyLeave(ctx context.Context, userID uint, date, reason string) (*entity.Attendance, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = u.today()
	}
	if !entity.IsDate(date) {
		return nil, apperr.Validation("date", "date must be in YYYY-MM-DD format")
	}
	rec := &entity.Attendance{
		UserID: userID,
		Date:   date,
		Status: entity.StatusAbsent,
	}
	if r := strings.TrimSpace(reason); r != "" {
		rec.LeaveReason = &r
	}
	if err := u.records.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrAttendanceExists) {
			return nil, ErrAttendanceExists
		}
		return nil, fmt.Errorf("failed to record leave: %w", err)
	}
	return rec, nil
}

// MyHistory はユーザーの全記録を日付の降順で返します。
func (u *attendanceUsecase) MyHistory(ctx context.Context, userID uint) ([]entity.Attendance, error) {
	return u.records.List(ctx, entity.Query{UserID: &userID})
}

// MySummary は指定月（YYYY-MM、省略時は当月）のステータス別件数と合計勤務時間を返します。
func (u *attendanceUsecase) MySummary(ctx context.Context, userID uint, month string) (entity.Summary, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		month = u.clock.Now().Format(entity.MonthLayout)
	}
	if !entity.IsMonth(month) {
		return entity.Summary{}, apperr.Validation("month", "month must be in YYYY-MM format")
	}
	return u.records.Aggregate(ctx, entity.Query{UserID: &userID, MonthPrefix: month})
}

// TodayStatus は本日の記録を返します。未打刻の場合はfoundがfalseになります。
func (u *attendanceUsecase) TodayStatus(ctx context.Context, userID uint) (*entity.Attendance, bool, error) {
	rec, err := u.records.FindByUserAndDate(ctx, userID, u.today())
	if err != nil {
		if errors.Is(err, ErrAttendanceNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rec, true, nil
}

// TeamSummary は社員数と全記録のステータス別件数を返します。
func (u *attendanceUsecase) TeamSummary(ctx context.Context) (entity.TeamSummary, error) {
	employees, err := u.users.ListByRole(ctx, authentity.RoleEmployee)
	if err != nil {
		return entity.TeamSummary{}, fmt.Errorf("failed to list employees: %w", err)
	}
	agg, err := u.records.Aggregate(ctx, entity.Query{})
	if err != nil {
		return entity.TeamSummary{}, err
	}
	return entity.TeamSummary{
		TotalEmployees: len(employees),
		Present:        agg.Present,
		Absent:         agg.Absent,
		Late:           agg.Late,
		HalfDay:        agg.HalfDay,
	}, nil
}

// AllAttendance は条件に一致する全社員の記録をユーザー情報付きで返します。
func (u *attendanceUsecase) AllAttendance(ctx context.Context, f Filter) ([]entity.AttendanceWithUser, error) {
	var q entity.Query
	if d := strings.TrimSpace(f.Date); d != "" {
		if !entity.IsDate(d) {
			return nil, apperr.Validation("date", "date must be in YYYY-MM-DD format")
		}
		q.Date = d
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		status := entity.Status(s)
		if !status.Valid() {
			return nil, apperr.Validation("status", "status must be one of present, absent, late, half-day")
		}
		q.Status = status
	}
	if e := strings.TrimSpace(f.Employee); e != "" {
		id, found, err := u.ResolveEmployee(ctx, e)
		if err != nil {
			return nil, err
		}
		if !found {
			return []entity.AttendanceWithUser{}, nil
		}
		q.UserID = &id
	}

	records, err := u.records.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return JoinUsers(ctx, u.users, records)
}

// EmployeeAttendance は指定社員の記録をユーザー情報付きで日付の降順に返します。
func (u *attendanceUsecase) EmployeeAttendance(ctx context.Context, userID uint) ([]entity.AttendanceWithUser, error) {
	users, err := u.users.FindByIDs(ctx, []uint{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrEmployeeNotFound
	}
	records, err := u.records.List(ctx, entity.Query{UserID: &userID})
	if err != nil {
		return nil, err
	}
	return JoinUsers(ctx, u.users, records)
}

// TodayStatusAll は本日の全記録をユーザー情報付きで返します。
func (u *attendanceUsecase) TodayStatusAll(ctx context.Context) ([]entity.AttendanceWithUser, error) {
	records, err := u.records.List(ctx, entity.Query{Date: u.today()})
	if err != nil {
		return nil, err
	}
	return JoinUsers(ctx, u.users, records)
}

// ResolveEmployee は数値のユーザーIDまたは社員コードをユーザーIDに解決します。
// 該当するユーザーがいない場合はfoundがfalseになります。
func (u *attendanceUsecase) ResolveEmployee(ctx context.Context, ref string) (uint, bool, error) {
	return ResolveEmployee(ctx, u.users, ref)
}

// ResolveEmployee は数値のユーザーIDまたは社員コードをユーザーIDに解決します。
// 数値として解釈できる場合はユーザーIDを優先し、見つからなければ社員コードとして検索します。
func ResolveEmployee(ctx context.Context, users UserDirectory, ref string) (uint, bool, error) {
	if n, err := strconv.ParseUint(ref, 10, 0); err == nil && n > 0 {
		found, err := users.FindByIDs(ctx, []uint{uint(n)})
		if err != nil {
			return 0, false, err
		}
		if len(found) > 0 {
			return found[0].ID, true, nil
		}
	}
	user, err := users.FindByEmployeeID(ctx, ref)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return user.ID, true, nil
}

// JoinUsers は記録にユーザー情報を結合します。ユーザーの取得は1回のクエリで行います。
func JoinUsers(ctx context.Context, users UserDirectory, records []entity.Attendance) ([]entity.AttendanceWithUser, error) {
	out := make([]entity.AttendanceWithUser, 0, len(records))
	if len(records) == 0 {
		return out, nil
	}

	seen := make(map[uint]struct{}, len(records))
	ids := make([]uint, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to join users: %w", err)
	}
	refs := make(map[uint]*entity.UserRef, len(found))
	for _, u := range found {
		refs[u.ID] = &entity.UserRef{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			EmployeeID: u.EmployeeID,
			Department: u.Department,
		}
	}
	for _, r := range records {
		out = append(out, entity.AttendanceWithUser{Attendance: r, User: refs[r.UserID]})
	}
	return out, nil
}
