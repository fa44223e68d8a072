package dto

import (
	"time"

	"attendance_backend/internal/feature/auth/domain/entity"
)

// UserRes is the public view of a user. The password hash is never included.
type UserRes struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	EmployeeID string    `json:"employeeId"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserMessageRes wraps a user with a status message.
type UserMessageRes struct {
	Message string  `json:"msg"`
	User    UserRes `json:"user"`
}

// FromUser converts a domain user to its public view.
func FromUser(u *entity.User) UserRes {
	return UserRes{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		EmployeeID: u.EmployeeID,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}
