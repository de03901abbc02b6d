// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Engine errors.
var (
	// ErrInvalidArgument marks a caller bug such as an unknown item kind or a malformed pair key.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStorageUnavailable marks a persistence failure. Local state stays authoritative.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNoContent means the catalog has nothing left to practice.
	ErrNoContent = errors.New("no content available")

	// ErrInvalidConfig is returned when loaded configuration fails validation.
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

// InvalidArgumentf wraps ErrInvalidArgument with a formatted detail.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrInvalidArgument) || errors.Is(err, context.Canceled) {
		return false
	}
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
