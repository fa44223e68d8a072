// Package adapters はattendanceフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendance_backend/internal/feature/attendance/domain/entity"
	"attendance_backend/internal/feature/attendance/usecase"
	"attendance_backend/internal/platform/db"
)

// AttendanceModel は出勤記録テーブルのGORMモデルです。
// (user_id, work_date) のユニークインデックスで1日1件を保証します。
type AttendanceModel struct {
	ID           uint    `gorm:"primaryKey"`
	UserID       uint    `gorm:"not null;uniqueIndex:attendance_user_date,priority:1"`
	WorkDate     string  `gorm:"column:work_date;type:varchar(10);not null;uniqueIndex:attendance_user_date,priority:2;index"`
	CheckInTime  *string `gorm:"type:varchar(5)"`
	CheckOutTime *string `gorm:"type:varchar(5)"`
	Status       string  `gorm:"type:varchar(16);not null;index"`
	TotalHours   float64 `gorm:"not null"`
	LeaveReason  *string `gorm:"type:varchar(500)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName はテーブル名を返します。
func (AttendanceModel) TableName() string { return "attendances" }

func toModel(a *entity.Attendance) AttendanceModel {
	return AttendanceModel{
		ID:           a.ID,
		UserID:       a.UserID,
		WorkDate:     a.Date,
		CheckInTime:  a.CheckInTime,
		CheckOutTime: a.CheckOutTime,
		Status:       string(a.Status),
		TotalHours:   a.TotalHours,
		LeaveReason:  a.LeaveReason,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toEntity(m AttendanceModel) entity.Attendance {
	return entity.Attendance{
		ID:           m.ID,
		UserID:       m.UserID,
		Date:         m.WorkDate,
		CheckInTime:  m.CheckInTime,
		CheckOutTime: m.CheckOutTime,
		Status:       entity.Status(m.Status),
		TotalHours:   m.TotalHours,
		LeaveReason:  m.LeaveReason,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// attendanceSQL はAttendanceRepositoryインターフェースのGORM実装です。
type attendanceSQL struct {
	db *gorm.DB
}

// attendanceSQLがAttendanceRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.AttendanceRepository = (*attendanceSQL)(nil)

// NewAttendanceSQL は指定されたgorm.DB接続でattendanceSQLの新しいインスタンスを生成します。
func NewAttendanceSQL(db *gorm.DB) *attendanceSQL {
	return &attendanceSQL{db: db}
}

// Create は(user_id, work_date)が未登録の場合のみ挿入します。
// ON CONFLICT DO NOTHING（MySQLではON DUPLICATE KEY UPDATE id=id）で競合を検出し、
// 影響行数が0の場合はusecase.ErrAttendanceExistsを返します。
func (r *attendanceSQL) Create(ctx context.Context, a *entity.Attendance) error {
	m := toModel(a)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "work_date"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		if db.IsDuplicateKey(res.Error) {
			return usecase.ErrAttendanceExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrAttendanceExists
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByUserAndDate は指定ユーザー・日付の記録を取得します。
// 存在しない場合、usecase.ErrAttendanceNotFoundを返します。
func (r *attendanceSQL) FindByUserAndDate(ctx context.Context, userID uint, date string) (*entity.Attendance, error) {
	var m AttendanceModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date = ?", userID, date).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAttendanceNotFound
		}
		return nil, err
	}
	a := toEntity(m)
	return &a, nil
}

// MarkCheckedOut はcheck_out_timeがNULLの行のみを更新します。
// 更新行数が0の場合は既に退勤済みとしてusecase.ErrAlreadyCheckedOutを返します。
func (r *attendanceSQL) MarkCheckedOut(ctx context.Context, id uint, checkOut string, totalHours float64) error {
	res := r.db.WithContext(ctx).
		Model(&AttendanceModel{}).
		Where("id = ? AND check_out_time IS NULL", id).
		Updates(map[string]any{
			"check_out_time": checkOut,
			"total_hours":    totalHours,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrAlreadyCheckedOut
	}
	return nil
}

// scope はQueryの絞り込み条件をクエリに適用します。
func scope(q entity.Query) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if q.UserID != nil {
			tx = tx.Where("user_id = ?", *q.UserID)
		}
		if q.Date != "" {
			tx = tx.Where("work_date = ?", q.Date)
		}
		if q.From != "" {
			tx = tx.Where("work_date >= ?", q.From)
		}
		if q.To != "" {
			tx = tx.Where("work_date <= ?", q.To)
		}
		if q.MonthPrefix != "" {
			tx = tx.Where("work_date LIKE ?", q.MonthPrefix+"-%")
		}
		if q.Status != "" {
			tx = tx.Where("status = ?", string(q.Status))
		}
		return tx
	}
}

// List は条件に一致する記録を返します。既定は日付の降順です。
func (r *attendanceSQL) List(ctx context.Context, q entity.Query) ([]entity.Attendance, error) {
	order := "work_date DESC, id DESC"
	if q.Ascending {
		order = "work_date ASC, id ASC"
	}
	tx := r.db.WithContext(ctx).Model(&AttendanceModel{}).Scopes(scope(q)).Order(order)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var models []AttendanceModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Attendance, 0, len(models))
	for _, m := range models {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// Aggregate はステータス別件数と勤務時間の合計をGROUP BYで集計します。
func (r *attendanceSQL) Aggregate(ctx context.Context, q entity.Query) (entity.Summary, error) {
	var rows []struct {
		Status string
		Total  int
		Hours  float64
	}
	err := r.db.WithContext(ctx).
		Model(&AttendanceModel{}).
		Scopes(scope(q)).
		Select("status, COUNT(*) AS total, COALESCE(SUM(total_hours), 0) AS hours").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return entity.Summary{}, err
	}

	var s entity.Summary
	for _, row := range rows {
		switch entity.Status(row.Status) {
		case entity.StatusPresent:
			s.Present = row.Total
		case entity.StatusAbsent:
			s.Absent = row.Total
		case entity.StatusLate:
			s.Late = row.Total
		case entity.StatusHalfDay:
			s.HalfDay = row.Total
		}
		s.TotalHours += row.Hours
	}
	return s, nil
}

// DeleteAll は全記録を削除します。シードデータ投入時のみ使用します。
func (r *attendanceSQL) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&AttendanceModel{}).Error
}
