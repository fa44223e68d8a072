// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"attendance_backend/internal/feature/auth/domain/entity"
	"attendance_backend/internal/feature/auth/usecase"
	"attendance_backend/internal/platform/db"
)

// userSQL はUserRepositoryインターフェースのGORM実装です。
// MySQL・PostgreSQL・SQLiteのいずれでも動作します。
type userSQL struct {
	db *gorm.DB
}

// userSQLがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userSQL)(nil)

// NewUserSQL は指定されたgorm.DB接続でuserSQLの新しいインスタンスを生成します。
func NewUserSQL(db *gorm.DB) *userSQL {
	return &userSQL{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userSQL) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userSQL) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userSQL) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update はプロフィール項目を保存します。ロールは更新しません。
func (r *userSQL) Update(ctx context.Context, u *entity.User) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":        u.Name,
		"email":       u.Email,
		"password":    u.Password,
		"employee_id": u.EmployeeID,
		"department":  u.Department,
	})
	if res.Error != nil {
		if db.IsDuplicateKey(res.Error) {
			return usecase.ErrEmailAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// FindByIDs は指定されたIDのユーザーをまとめて取得します。存在しないIDは無視します。
func (r *userSQL) FindByIDs(ctx context.Context, ids []uint) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []entity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmployeeID は組織の社員コードでユーザーを取得します。
func (r *userSQL) FindByEmployeeID(ctx context.Context, code string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("employee_id = ?", code).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListByRole は指定ロールのユーザーをID順で返します。
func (r *userSQL) ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteAll は全ユーザーを削除します。シードデータ投入時のみ使用します。
func (r *userSQL) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entity.User{}).Error
}
