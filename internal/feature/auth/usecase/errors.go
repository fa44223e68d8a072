// Package usecase implements the business logic for the auth feature.
package usecase

import "attendance_backend/internal/feature/auth/domain"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = domain.ErrUserNotFound

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = domain.ErrUserAlreadyExists

	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = domain.ErrInvalidCredentials
)
