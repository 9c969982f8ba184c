// Package errors defines the application error type shared by the workflows,
// the Lambda adapters and the REST API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeConflict    ErrorType = "CONFLICT"
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeDatabase    ErrorType = "DATABASE"
	ErrorTypeExternal    ErrorType = "EXTERNAL"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:  http.StatusBadRequest,
	ErrorTypeNotFound:    http.StatusNotFound,
	ErrorTypeConflict:    http.StatusConflict,
	ErrorTypeInternal:    http.StatusInternalServerError,
	ErrorTypeUnavailable: http.StatusServiceUnavailable,
	ErrorTypeDatabase:    http.StatusInternalServerError,
	ErrorTypeExternal:    http.StatusBadGateway,
}

// AppError is an error with a type, a client-safe message and the HTTP
// status the API layer answers with
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func newAppError(t ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		Cause:      cause,
		HTTPStatus: statusByType[t],
		StackTrace: stack(),
	}
}

// stack renders the frames above the exported constructor
func stack() string {
	var pcs [32]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, message, nil)
}

// NewNotFoundError reports a missing resource, e.g. "employee not found"
func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, resource+" not found", nil)
}

func NewConflictError(message string) *AppError {
	return newAppError(ErrorTypeConflict, message, nil)
}

func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, message, nil)
}

// NewUnavailableError reports a dependency that is refusing calls, such as
// the face service behind an open circuit breaker
func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, fmt.Sprintf("service '%s' is unavailable", service), nil)
}

// NewDatabaseError wraps a failed store operation
func NewDatabaseError(operation string, err error) *AppError {
	return newAppError(ErrorTypeDatabase, fmt.Sprintf("database operation '%s' failed", operation), err)
}

// NewExternalError wraps a failed call to a managed service
func NewExternalError(service string, err error) *AppError {
	return newAppError(ErrorTypeExternal, fmt.Sprintf("external service '%s' error", service), err)
}

// GetAppError returns the first AppError in err's chain, or nil
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsValidation(err error) bool { return IsType(err, ErrorTypeValidation) }
func IsConflict(err error) bool   { return IsType(err, ErrorTypeConflict) }

// HTTPStatus returns the status code carried by err, or 500 when err is not
// an AppError.
func HTTPStatus(err error) int {
	if appErr := GetAppError(err); appErr != nil && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Wrap prefixes the message of an AppError, keeping its type and status.
// Other errors become INTERNAL with err as the cause.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if appErr := GetAppError(err); appErr != nil {
		wrapped := *appErr
		wrapped.Message = message + ": " + appErr.Message
		return &wrapped
	}

	return NewInternalError(message).WithCause(err)
}
