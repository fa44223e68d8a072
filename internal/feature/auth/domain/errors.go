// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
// Adapters return these so that upper layers can branch with errors.Is.
var (
	// ErrUserAlreadyExists indicates that a user with the given email already exists.
	ErrUserAlreadyExists = errors.New("email already exists")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates that the password did not match the stored hash.
	ErrInvalidCredentials = errors.New("incorrect password")
)
