package service

import "fmt"

// ValidationError marks client mistakes surfaced before any persistence
// or relay action takes place.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
