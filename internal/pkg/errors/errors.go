package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRegistered means the login identifier matched no user record.
	ErrNotRegistered = errors.New("User not registered")
	// ErrInvalidCredentials means the secret did not match the stored hash.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrNotFound is returned when a lookup (including a session reference)
	// resolves to nothing.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a format or invariant violation on a write. It is
// never retried; the boundary surfaces it as a client error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// DuplicateError reports a uniqueness conflict, naming the conflicting field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}
