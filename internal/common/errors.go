// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors.
	ErrInvalidInput = errors.New("invalid input")

	// Currency errors.
	ErrConversionFailure = errors.New("currency conversion failed")

	// Persistence errors.
	ErrCorruptSnapshot = errors.New("corrupt ledger snapshot")

	// Export errors.
	ErrExportFailure = errors.New("report export failed")

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

// InvalidInput wraps ErrInvalidInput with a user-facing reason.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// UserMessage returns the message to show for err. Known error kinds get a
// short, friendly message; everything else falls back to err.Error().
func UserMessage(err error) string {
	var userErr *UserError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &userErr):
		return userErr.UserMessage
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	case errors.Is(err, ErrConversionFailure):
		return "Currency conversion failed"
	case errors.Is(err, ErrExportFailure):
		return "Report export failed"
	default:
		return err.Error()
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
