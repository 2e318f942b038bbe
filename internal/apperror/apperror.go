// Package apperror defines the error taxonomy shared by services and handlers.
//
// Services return *AppError values (usually wrapped with fmt.Errorf("...: %w")).
// Handlers unwrap them with errors.Is / errors.As and pick the HTTP status.
// Nothing below this package knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConfiguration = errors.New("configuration error")
	ErrBackend       = errors.New("backend error")
	ErrEmptyResponse = errors.New("empty backend response")
	ErrScriptFailure = errors.New("script failure")
	ErrSpawn         = errors.New("spawn failure")
	ErrUnavailable   = errors.New("unavailable")
)

// AppError carries a sentinel (for errors.Is) plus the message that is safe
// to show to the caller.
type AppError struct {
	Err     error  // sentinel from the list above
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying error, for logs only
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// MissingParameters is the validation error returned when a required request
// field is empty.
func MissingParameters() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Missing required parameters",
	}
}

// Conflict reports that a unique value is already in use.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// NotConfigured reports a missing required setting, such as the backend
// credential. It is never retried.
func NotConfigured(message string) *AppError {
	return &AppError{
		Err:     ErrConfiguration,
		Message: message,
	}
}

// BackendFailed relays a transport or backend-reported failure. The cause's
// message is passed through as-is.
func BackendFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrBackend,
		Message: cause.Error(),
		Cause:   cause,
	}
}

func EmptyResponse(message string) *AppError {
	return &AppError{
		Err:     ErrEmptyResponse,
		Message: message,
	}
}

// ScriptFailed carries the interpreter's own diagnostic text (stderr).
func ScriptFailed(stderr string) *AppError {
	return &AppError{
		Err:     ErrScriptFailure,
		Message: stderr,
	}
}

// SpawnFailed means the interpreter could not be started or its script file
// could not be written. The cause stays out of the message.
func SpawnFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrSpawn,
		Message: "Internal server error",
		Cause:   cause,
	}
}

func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}
