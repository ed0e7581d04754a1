package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapUniqueViolation(t *testing.T) {
	emailErr := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}
	assert.ErrorIs(t, mapUniqueViolation(emailErr), ErrDuplicateEmail)

	usernameErr := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_username_key"}
	assert.ErrorIs(t, mapUniqueViolation(usernameErr), ErrDuplicateUsername)
}

func TestMapUniqueViolationPassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapUniqueViolation(plain))

	otherPg := &pgconn.PgError{Code: "23503", ConstraintName: "users_email_key"}
	assert.Equal(t, error(otherPg), mapUniqueViolation(otherPg))
}
