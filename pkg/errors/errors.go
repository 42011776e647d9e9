package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Request errors
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeBadAddress      ErrorType = "BAD_ADDRESS"
	ErrorTypeUnsupportedKind ErrorType = "UNSUPPORTED_KIND"
	ErrorTypeValidation      ErrorType = "VALIDATION"
	ErrorTypeRateLimited     ErrorType = "RATE_LIMITED"

	// Upstream errors
	ErrorTypeRenderFailed    ErrorType = "RENDER_FAILED"
	ErrorTypeUpstreamTimeout ErrorType = "UPSTREAM_TIMEOUT"
	ErrorTypeOversize        ErrorType = "OVERSIZE"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewNotFoundError creates a not found error. The resource argument names
// what was looked up ("publication", "article", "profile").
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewBadAddressError creates an error for an address that failed to decode
// or decoded to a variant the call site cannot use.
func NewBadAddressError(address string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeBadAddress,
		Message:    fmt.Sprintf("invalid address %q", address),
		Cause:      err,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewUnsupportedKindError creates an error for an event kind outside the
// recognized set for the endpoint.
func NewUnsupportedKindError(kind int) *AppError {
	return &AppError{
		Type:       ErrorTypeUnsupportedKind,
		Message:    fmt.Sprintf("unsupported event kind %d", kind),
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewRateLimitedError creates an error for a client that drained its
// conversion budget.
func NewRateLimitedError() *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Message:    "too many conversion requests, retry shortly",
		HTTPStatus: http.StatusTooManyRequests,
		StackTrace: captureStackTrace(),
	}
}

// NewRenderFailedError creates an error for a failed document conversion
func NewRenderFailedError(format string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeRenderFailed,
		Message:    fmt.Sprintf("document conversion to %s failed", format),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewUpstreamTimeoutError creates an error for an upstream call that
// exceeded its time budget.
func NewUpstreamTimeoutError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstreamTimeout,
		Message:    fmt.Sprintf("upstream operation '%s' timed out", operation),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewOversizeError creates an error for media exceeding the absolute size
// ceiling, whether declared up front or observed while reading.
func NewOversizeError(size, limit int64) *AppError {
	return &AppError{
		Type:       ErrorTypeOversize,
		Message:    fmt.Sprintf("media size %d exceeds limit %d", size, limit),
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsBadAddress checks if an error is a bad address error
func IsBadAddress(err error) bool {
	return IsType(err, ErrorTypeBadAddress)
}

// IsRenderFailed checks if an error is a failed conversion error
func IsRenderFailed(err error) bool {
	return IsType(err, ErrorTypeRenderFailed)
}
