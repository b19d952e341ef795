// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Precondition errors.
	ErrAlreadyRunning = errors.New("an operation is already running")
	ErrNoSource       = errors.New("no source folder chosen")
	ErrInvalidSource  = errors.New("source is not a directory")
	ErrEmptySelection = errors.New("nothing selected")
	ErrInvalidRule    = errors.New("invalid rule")

	// Quarantine errors.
	ErrNotQuarantined = errors.New("path is not in quarantine")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsPrecondition reports whether err means an operation was refused before it started.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrAlreadyRunning) ||
		errors.Is(err, ErrNoSource) ||
		errors.Is(err, ErrInvalidSource) ||
		errors.Is(err, ErrEmptySelection)
}
