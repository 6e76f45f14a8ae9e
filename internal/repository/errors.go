package repository

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrNotFound is returned by writes that matched no row. Reads return (nil, nil) instead.
	ErrNotFound = errors.New("not found")
)

const uniqueViolationMsg = "UNIQUE constraint failed"

// uniqueViolation maps a SQLite unique-index failure on users to a sentinel, or returns nil.
func uniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, uniqueViolationMsg) {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	}
	return nil
}
