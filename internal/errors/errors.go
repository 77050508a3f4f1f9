package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the bell client
var (
	// Session errors
	ErrAuthorizationExpired = errors.New("authorization expired")
	ErrNotAuthenticated     = errors.New("not authenticated")

	// Transport errors
	ErrTimeout = errors.New("request timed out")

	// Domain errors raised without a network round trip
	ErrNoSchedules = errors.New("No schedules available to trigger")
	ErrValidation  = errors.New("validation failed")

	// General errors
	ErrNotFound = errors.New("not found")
)

// HTTPError is a response that came back with a non-2xx status.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string // server supplied "error" or "message" field, if any
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets a 401 match ErrAuthorizationExpired.
func (e *HTTPError) Is(target error) bool {
	return target == ErrAuthorizationExpired && e.StatusCode == http.StatusUnauthorized
}

// NetworkError is a request that never produced a response: timeouts,
// refused connections, DNS failures.
type NetworkError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: %s", e.Op, ErrTimeout)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}

// AuthError wraps any failure of a session lifecycle intent (login,
// register, password reset and change).
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError is a client side rejection of an intent's input.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap matches ErrValidation and, when set, the more specific Err.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Err, ErrValidation}
	}
	return []error{ErrValidation}
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DisplayMessage returns the message a store records for a failed intent.
// A server supplied message wins, then the text of a client side validation
// failure, then the fallback phrase.
func DisplayMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	if errors.Is(err, ErrNoSchedules) {
		return ErrNoSchedules.Error()
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
