// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// Role is the access level carried in a user's token.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// User represents a registered user in the system.
// Role is fixed at registration; no operation changes it afterwards.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	Name string `gorm:"size:255;not null"`

	// Email is the user's login identifier.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash of the user's password.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	Role Role `gorm:"size:16;not null;default:employee;index"`

	// EmployeeID is the organisation-assigned code (e.g. "EMP001"), not the primary key.
	EmployeeID string `gorm:"size:64;index"`

	Department string `gorm:"size:128"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
