// Package usecase implements the business logic for the attendance feature.
package usecase

import "errors"

var (
	// ErrAttendanceExists is returned when a record already exists for the user and date.
	ErrAttendanceExists = errors.New("attendance already recorded for this date")

	// ErrAttendanceNotFound is returned when no record exists for the user and date.
	ErrAttendanceNotFound = errors.New("attendance not found")

	// ErrAlreadyCheckedIn is returned by CheckIn when today's record already exists.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// ErrNotCheckedIn is returned by CheckOut when there is no record today.
	ErrNotCheckedIn = errors.New("you have not checked in today")

	// ErrAlreadyCheckedOut is returned by CheckOut when the record already has a check-out time.
	ErrAlreadyCheckedOut = errors.New("already checked out today")

	// ErrNoCheckIn is returned by CheckOut when today's record is a leave without a check-in.
	ErrNoCheckIn = errors.New("no check-in recorded today")

	// ErrEmployeeNotFound is returned when a manager looks up an unknown user.
	ErrEmployeeNotFound = errors.New("employee not found")
)
