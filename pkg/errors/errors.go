// Package errors defines common error types for the explosion runtime.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the runtime.
const (
	CodeUnknown      = "UNKNOWN_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeScratchAlloc = "SCRATCH_ALLOC"
	CodeColumnError  = "COLUMN_ERROR"
	CodePhaseLength  = "PHASE_LENGTH_MISMATCH"
	CodeCatalogError = "CATALOG_ERROR"
	CodeStorageError = "STORAGE_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConfigError  = "CONFIG_ERROR"
)

// AppError represents a runtime error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrInvalidInput = New(CodeInvalidInput, "invalid input")
	ErrScratchAlloc = New(CodeScratchAlloc, "scratch allocation failed")
	ErrColumnError  = New(CodeColumnError, "malformed column")
	ErrPhaseLength  = New(CodePhaseLength, "fill phase length differs from dry run")
	ErrCatalogError = New(CodeCatalogError, "catalog error")
	ErrStorageError = New(CodeStorageError, "storage error")
	ErrNotFound     = New(CodeNotFound, "resource not found")
	ErrConfigError  = New(CodeConfigError, "configuration error")
)

// IsInvalidInput checks if the error is an invalid-input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound checks if the error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStorageError checks if the error is a storage error.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageError)
}

// IsCatalogError checks if the error is a catalog error.
func IsCatalogError(err error) bool {
	return errors.Is(err, ErrCatalogError)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
