// Package jwtmw issues bearer tokens and authenticates requests that carry them.
package jwtmw

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"attendance_backend/internal/api"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// Parse verifies tokenStr with secret and returns its claims.
// Only HS256 is accepted and an expiry is required.
func Parse(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
// The Authorization header may carry the token with or without the "Bearer " prefix.
// The scheme is matched case-insensitively.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "No token, authorization denied"})
			return
		}

		if secret == "" {
			// Server misconfiguration (JWT_SECRET not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Message: "server misconfigured"})
			return
		}

		// 2. Parse and verify signature, algorithm and expiry
		claims, err := Parse(tokenStr, secret)
		if err != nil {
			slog.Warn("token rejected", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid token"})
			return
		}
		id, err := strconv.ParseUint(claims.Subject, 10, 0)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid token"})
			return
		}

		// 3. Expose identity to handlers
		c.Set(ContextUserID, uint(id))
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// bearerToken は "Bearer <token>" からトークンを取り出します。スキーム名の大文字小文字は区別しません。
func bearerToken(header string) string {
	const scheme = "bearer "
	if len(header) >= len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		header = header[len(scheme):]
	}
	return strings.TrimSpace(header)
}

// RequireRole aborts with 403 unless the authenticated role is one of roles.
// It must run after AuthRequired.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, Role(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Message: "Access denied"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or 0 outside AuthRequired.
func UserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

// Role returns the authenticated role, or "" outside AuthRequired.
func Role(c *gin.Context) string {
	return c.GetString(ContextRole)
}
