package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeSyntax     ErrorType = "SYNTAX"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeEmpty      ErrorType = "EMPTY"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewConfigError creates a configuration error. Configuration errors are
// always fatal to a load.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewSchemaError creates an error for a source whose headers lack a required column
func NewSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, message, cause)
}

// NewSyntaxError creates an error for a source whose tabular text is malformed
func NewSyntaxError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSyntax, message, cause)
}

// NewStorageError creates a file access error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewEmptyError creates an error describing a load that produced no usable rows
func NewEmptyError(message string) *AppError {
	return NewAppError(ErrTypeEmpty, message, nil)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "" if none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsIngestError reports whether err describes a source that could not be ingested.
func IsIngestError(err error) bool {
	switch TypeOf(err) {
	case ErrTypeConfig, ErrTypeSchema, ErrTypeSyntax, ErrTypeStorage:
		return true
	}
	return false
}
