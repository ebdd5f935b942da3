// Package errors defines errors that carry their HTTP rendering.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeInternal          = "INTERNAL_ERROR"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
)

// ServiceError is an error with a stable code and HTTP status.
type ServiceError struct {
	Code       string `json:"-"`
	Title      string `json:"error"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	RetryAfter int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Internal wraps an unexpected failure. The message shown to clients is the
// cause's text when debug is set, a fixed string otherwise.
func Internal(err error, debug bool) *ServiceError {
	msg := "An error occurred"
	if debug && err != nil {
		msg = err.Error()
	}
	return &ServiceError{
		Code:       CodeInternal,
		Title:      "Internal server error",
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// RateLimitExceeded reports an exhausted request budget.
func RateLimitExceeded(limit int, window string, retryAfterSeconds int) *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimitExceeded,
		Title:      "Rate limit exceeded",
		Message:    fmt.Sprintf("limit of %d requests per %s reached", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
		RetryAfter: retryAfterSeconds,
	}
}

// Unavailable reports a dependency that cannot serve requests.
func Unavailable(component string, err error) *ServiceError {
	return &ServiceError{
		Code:       CodeUnavailable,
		Title:      "Service unavailable",
		Message:    component + " unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// As extracts a ServiceError from err.
func As(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
