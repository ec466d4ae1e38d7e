// Package errors provides the structured error taxonomy for Soundstake.
//
// Every precondition failure carries a stable code, a specific message and a
// Kind. The HTTP layer maps Kind to a status; callers never string-match.
//
// Import Path: soundstake.io/soundstake/internal/pkg/errors
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindStateConflict Kind = "state_conflict"
	KindExternal      Kind = "external_service"
	KindInvariant     Kind = "invariant_violation"
	KindInternal      Kind = "internal"
)

// AppError is a structured application error with HTTP status and error code.
type AppError struct {
	// Code is a machine-readable error code (e.g., "FUNDING_SHORTFALL").
	Code string `json:"code"`

	// Message is a human-readable reason.
	Message string `json:"message"`

	Kind Kind `json:"-"`

	// HTTPStatus is the corresponding HTTP status code.
	HTTPStatus int `json:"-"`

	// Retryable marks transient external failures that are safe to retry.
	Retryable bool `json:"retryable,omitempty"`

	// Params carries structured context (amounts, ids) for the caller.
	Params map[string]interface{} `json:"params,omitempty"`

	// FieldErrors carries field-level validation details.
	FieldErrors []FieldError `json:"field_errors,omitempty"`

	// Err is the wrapped underlying error.
	Err error `json:"-"`
}

// FieldError describes a field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError. Kind is derived from the status.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Kind:       kindForStatus(httpStatus),
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	e := New(code, message, httpStatus)
	e.Err = err
	return e
}

// WithParams attaches structured parameters to the error.
func (e *AppError) WithParams(params map[string]interface{}) *AppError {
	if e == nil || len(params) == 0 {
		return e
	}
	e.Params = params
	return e
}

// WithFieldErrors attaches field-level errors to the AppError.
func (e *AppError) WithFieldErrors(fieldErrors []FieldError) *AppError {
	if e == nil || len(fieldErrors) == 0 {
		return e
	}
	e.FieldErrors = fieldErrors
	return e
}

// WithCause sets the wrapped error.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return e
	}
	e.Err = err
	return e
}

// Validation creates a 400 error for malformed or missing input.
func Validation(code, message string) *AppError {
	return New(code, message, http.StatusBadRequest)
}

// NotFound creates a 404 error.
func NotFound(code, message string) *AppError {
	return New(code, message, http.StatusNotFound)
}

// Unauthorized creates a 401 error.
func Unauthorized(code, message string) *AppError {
	return New(code, message, http.StatusUnauthorized)
}

// Forbidden creates a 403 authorization error.
func Forbidden(code, message string) *AppError {
	return New(code, message, http.StatusForbidden)
}

// Conflict creates a 409 state-conflict error.
func Conflict(code, message string) *AppError {
	return New(code, message, http.StatusConflict)
}

// External creates an external-service failure. Retryable failures map to 503.
func External(code, message string, retryable bool, err error) *AppError {
	status := http.StatusBadGateway
	if retryable {
		status = http.StatusServiceUnavailable
	}
	e := Wrap(err, code, message, status)
	e.Kind = KindExternal
	e.Retryable = retryable
	return e
}

// Invariant creates an invariant-violation error. These are never corrected silently.
func Invariant(message string) *AppError {
	e := New(CodeInvariantViolation, message, http.StatusInternalServerError)
	e.Kind = KindInvariant
	return e
}

// Internal creates a 500 error.
func Internal(code, message string) *AppError {
	return New(code, message, http.StatusInternalServerError)
}

// IsAppError checks if an error is an AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err is a retryable external failure.
func IsRetryable(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Retryable
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthorization
	case http.StatusConflict:
		return KindStateConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindExternal
	default:
		return KindInternal
	}
}
