package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for provider operations.
var (
	// ErrUnknownProvider indicates the requested provider is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnavailable indicates the LLM service is unavailable.
	ErrUnavailable = errors.New("LLM service unavailable")

	// ErrContextTooLong indicates the input exceeds the context window.
	ErrContextTooLong = errors.New("context exceeds maximum length")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest indicates the request is malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrCredentialsNotFound indicates credentials are missing or rejected.
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrPermissionDenied indicates the credentials lack access to the model.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrCapabilityNotSupported indicates the provider doesn't support the requested capability.
	ErrCapabilityNotSupported = errors.New("capability not supported by provider")
)

// Error wraps provider errors with context.
type Error struct {
	Provider  string // Provider name ("azure-openai", "anthropic", etc.)
	Op        string // Operation that failed ("complete", "stream")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new provider error.
func NewError(provider, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  provider,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// StatusError maps an HTTP status code returned by a provider API to the
// matching sentinel error and reports whether the failure is transient.
// Unrecognized statuses return (nil, false).
func StatusError(status int) (error, bool) {
	switch {
	case status == http.StatusUnauthorized:
		return ErrCredentialsNotFound, false
	case status == http.StatusForbidden:
		return ErrPermissionDenied, false
	case status == http.StatusRequestTimeout:
		return ErrTimeout, true
	case status == http.StatusRequestEntityTooLarge:
		return ErrContextTooLong, false
	case status == http.StatusTooManyRequests:
		return ErrRateLimited, true
	case status == http.StatusBadRequest, status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
		return ErrInvalidRequest, false
	case status >= 500:
		return ErrUnavailable, true
	}
	return nil, false
}

// ContextError converts a context cancellation or deadline into a provider
// error. Deadlines are retryable; explicit cancellation is not.
func ContextError(provider, op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(provider, op, fmt.Errorf("%w: %w", ErrTimeout, err), true)
	}
	return NewError(provider, op, err, false)
}

// IsRetryable checks if an error is likely transient and worth retrying.
// Retrying is the caller's decision; nothing in this module retries on its own.
func IsRetryable(err error) bool {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}

	// Check for known retryable sentinel errors
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsCapabilityError checks if an error is due to missing provider capability.
func IsCapabilityError(err error) bool {
	return errors.Is(err, ErrCapabilityNotSupported)
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrCredentialsNotFound) ||
		errors.Is(err, ErrPermissionDenied)
}
