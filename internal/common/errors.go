// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors, rejected before any external call.
	ErrEmptyMessage = errors.New("message is empty")
	ErrInvalidInput = errors.New("invalid input")

	// Storage errors.
	ErrNotFound     = errors.New("not found")
	ErrCatalogFetch = errors.New("catalog fetch failed")

	// Generation backend errors.
	ErrRateLimit = errors.New("rate limit exceeded")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
)

// GenerationError indicates the generation backend failed to produce
// schema-conformant output. RawOutput carries whatever the backend returned,
// when available, so operators can diagnose nonconformance.
type GenerationError struct {
	Err       error
	Reason    string
	RawOutput string
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError creates a GenerationError with the given reason.
func NewGenerationError(reason string, rawOutput string, err error) error {
	return &GenerationError{Reason: reason, RawOutput: rawOutput, Err: err}
}

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
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
