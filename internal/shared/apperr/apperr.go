// Package apperr defines error kinds shared by every feature.
// Feature packages keep their own sentinel errors; these types cover input
// validation, which has no single sentinel because the message varies.
package apperr

import "fmt"

// ValidationError reports malformed or missing input. Handlers map it to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation builds a ValidationError for field with a formatted message.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
