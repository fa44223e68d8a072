// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance_backend/internal/api"
	"attendance_backend/internal/feature/auth/domain/entity"
	"attendance_backend/internal/feature/auth/transport/http/dto"
	"attendance_backend/internal/feature/auth/usecase"
	jwtmw "attendance_backend/internal/platform/jwt"
	"attendance_backend/internal/shared/apperr"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録します。
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	// Login はユーザーを認証し、成功時にJWTトークンとユーザーを返します。
	Login(ctx context.Context, email, password string) (string, *entity.User, error)
	// CurrentUser はユーザーIDに対応するユーザーを返します。
	CurrentUser(ctx context.Context, userID uint) (*entity.User, error)
	// UpdateProfile は指定されたプロフィール項目を更新します。
	UpdateProfile(ctx context.Context, userID uint, in usecase.ProfileUpdate) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// writeError はユースケースのエラーをHTTPステータスに変換して返却します。
func writeError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: verr.Message})
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "Email already exists"})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "User not found"})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Incorrect password"})
	default:
		slog.Error("auth request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
	}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - リクエストJSONをRegisterReqにバインド（メール形式はデコード時に検証）
// - 入力不正・メール重複時は400を返却
// - 成功時は登録したユーザーを返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		return
	}
	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Name:       req.Name,
		Email:      string(req.Email),
		Password:   req.Password,
		Role:       req.Role,
		EmployeeID: req.EmployeeID,
		Department: req.Department,
	})
	if err != nil {
		slog.Warn("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "role", user.Role, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.UserMessageRes{Message: "User registered successfully", User: dto.FromUser(user)})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - ユーザー未検出時は404、パスワード不一致時は401を返却
// - 認証成功時はJWTトークンとユーザー概要を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), string(req.Email), req.Password)
	if err != nil {
		slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
		writeError(c, err)
		return
	}
	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginRes{
		Message: "Login successful",
		Token:   token,
		User: dto.LoginUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		},
	})
}

// Me は認証済みユーザーのプロフィールを返却します。
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), jwtmw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}

// UpdateProfile は認証済みユーザーのプロフィールを部分更新します。
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update profile validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		return
	}
	in := usecase.ProfileUpdate{
		Name:       req.Name,
		Password:   req.Password,
		EmployeeID: req.EmployeeID,
		Department: req.Department,
	}
	if req.Email != nil {
		in.Email = string(*req.Email)
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), jwtmw.UserID(c), in)
	if err != nil {
		slog.Warn("update profile failed", "error", err, "user_id", jwtmw.UserID(c))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserMessageRes{Message: "Profile updated successfully", User: dto.FromUser(user)})
}
