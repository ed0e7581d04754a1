package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when an insert or update violates the
	// unique email constraint.
	ErrDuplicateEmail = errors.New("email already taken")

	// ErrDuplicateUsername is returned when an insert or update violates
	// the unique username constraint. Callers may treat this as retryable
	// when deriving usernames.
	ErrDuplicateUsername = errors.New("username already taken")
)
