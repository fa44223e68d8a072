// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import openapi_types "github.com/oapi-codegen/runtime/types"

// LoginReq は/api/auth/loginエンドポイントのリクエストボディを表します。
// Emailはデコード時に形式が検証されます。
type LoginReq struct {
	Email    openapi_types.Email `json:"email" binding:"required"`
	Password string              `json:"password" binding:"required"`
}

// LoginUser はログイン応答に含めるユーザー概要です。
type LoginUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginRes は/api/auth/loginの成功レスポンスです。
type LoginRes struct {
	Message string    `json:"msg"`
	Token   string    `json:"token"`
	User    LoginUser `json:"user"`
}
