// Package errors provides unified error handling for the library.
// It implements structured error types with machine-readable codes,
// retryable detection and cause chaining.
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified library error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// Configuration creates a new AppError for invalid configuration.
// Configuration errors are fatal and never retried.
func Configuration(message string) *AppError {
	return &AppError{
		Code: ErrCodeConfiguration, Message: message, Retryable: false,
	}
}

// Configurationf creates a configuration error with a formatted message.
func Configurationf(format string, args ...any) *AppError {
	return Configuration(fmt.Sprintf(format, args...))
}

// StateConflict creates a new AppError for an operation invoked in an illegal
// state. These signal caller misuse and are never retried.
func StateConflict(message string) *AppError {
	return &AppError{
		Code: ErrCodeStateConflict, Message: message, Retryable: false,
	}
}

// Execution creates a new AppError for a subprocess spawn, supervision or
// I/O failure. Execution errors are transient and retryable.
func Execution(message string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExecution, Message: message, Retryable: true, Cause: cause,
	}
}

// Interrupted creates a new AppError for an operation cancelled mid-flight.
func Interrupted(message string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInterrupted, Message: message, Retryable: false, Cause: cause,
	}
}

// Validation creates a new AppError for a failed validation.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeValidation, Message: message, Retryable: false,
	}
}

// Encryption creates a new AppError for a key-resolution or cipher failure.
func Encryption(message string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeEncryption, Message: message, Retryable: false, Cause: cause,
	}
}

// --- Inspection helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err (or any error in its chain) is an AppError
// carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether an error is marked retryable. Errors that are
// not AppErrors are considered retryable, matching the behavior of retrying
// arbitrary failures unless a filter says otherwise.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return true
}

// FromError wraps an arbitrary error into an AppError, passing AppErrors
// through unchanged.
func FromError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Execution(err.Error(), err)
}
