// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"attendance_backend/internal/feature/auth/domain/entity"
	"attendance_backend/internal/shared/apperr"

	"golang.org/x/crypto/bcrypt"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 6
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Update はユーザーのプロフィール項目を保存します。
	// メールアドレスが他のユーザーと重複する場合、ErrEmailAlreadyExistsを返します。
	Update(ctx context.Context, user *entity.User) error
}

// TokenGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenGenerator interface {
	// GenerateToken はユーザーIDとロールを埋め込んだ署名済みJWTトークンを生成します。
	GenerateToken(userID uint, role string) (string, error)
}

// RegisterInput は新規登録の入力値です。
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	EmployeeID string
	Department string
}

// ProfileUpdate はプロフィール更新の入力値です。空文字のフィールドは「指定なし」として扱います。
// ロールは更新対象に含めません。
type ProfileUpdate struct {
	Name       string
	Email      string
	Password   string
	EmployeeID string
	Department string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users  UserRepository
	tokens TokenGenerator
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenGenerator) *authUsecase {
	return &authUsecase{
		users:  users,
		tokens: tokens,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Validation("password", "password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// normalizeEmail は前後の空白を除去して小文字化し、形式を検証します。
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Validation("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("email", "invalid email address")
	}
	return email, nil
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
// ロールが空の場合はemployeeとして登録します。
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role := entity.Role(strings.TrimSpace(in.Role))
	if role == "" {
		role = entity.RoleEmployee
	}
	if !role.Valid() {
		return nil, apperr.Validation("role", "role must be %q or %q", entity.RoleEmployee, entity.RoleManager)
	}

	// 事前チェック。並行登録はユニークインデックスで検出されます。
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Name:       name,
		Email:      email,
		Password:   string(hashed),
		Role:       role,
		EmployeeID: strings.TrimSpace(in.EmployeeID),
		Department: strings.TrimSpace(in.Department),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、成功時にJWTトークンとユーザーを返します。
// ユーザーが存在しない場合はErrUserNotFound、パスワード不一致の場合はErrInvalidCredentialsを返します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := u.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// CurrentUser はトークンから解決したユーザーIDのユーザーを返します。
func (u *authUsecase) CurrentUser(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// UpdateProfile は指定されたフィールドのみを更新します。
// メールアドレスを変更する場合は重複を再チェックし、パスワードは再ハッシュします。
func (u *authUsecase) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if strings.TrimSpace(in.Email) != "" {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			other, err := u.users.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, ErrEmailAlreadyExists
			case err != nil && !errors.Is(err, ErrUserNotFound):
				return nil, fmt.Errorf("failed to look up email: %w", err)
			}
			user.Email = email
		}
	}
	if v := strings.TrimSpace(in.Department); v != "" {
		user.Department = v
	}
	if v := strings.TrimSpace(in.EmployeeID); v != "" {
		user.EmployeeID = v
	}
	if in.Password != "" {
		if err := validatePassword(in.Password); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
