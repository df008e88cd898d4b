// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Store errors.
	ErrNotFound        = errors.New("not found")
	ErrDuplicateEntry  = errors.New("duplicate entry")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")

	// Workflow errors.
	ErrSaveInProgress = errors.New("save already in progress")
	ErrInvalidInput   = errors.New("invalid input")

	// Import errors.
	ErrPlaidConnection = errors.New("plaid connection failed")
	ErrPlaidRateLimit  = errors.New("plaid rate limit exceeded")
	ErrNoBalances      = errors.New("no balances found")

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

// UserMessage returns the message meant for a status banner.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

// ErrorClass buckets failures by how the caller should react to them.
type ErrorClass int

const (
	// ClassNone means there was no error.
	ClassNone ErrorClass = iota
	// ClassUnauthenticated means no session; treated as "no data yet".
	ClassUnauthenticated
	// ClassValidation means the remote rejected a partial record; suppressed during autosave.
	ClassValidation
	// ClassLocal means bad local input such as an unknown field name.
	ClassLocal
	// ClassRemote is any other failure; surfaced once and logged.
	ClassRemote
)

func (c ErrorClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassUnauthenticated:
		return "expected-unauthenticated"
	case ClassValidation:
		return "suppressed-validation"
	case ClassLocal:
		return "local"
	default:
		return "unexpected-remote"
	}
}

// Classify maps an error onto its ErrorClass.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrUnauthenticated):
		return ClassUnauthenticated
	case errors.Is(err, ErrValidation):
		return ClassValidation
	case errors.Is(err, ErrInvalidInput):
		return ClassLocal
	default:
		return ClassRemote
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrPlaidRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
