package errors

import (
	"fmt"
	"net/http"
)

// Error codes carried in the error_code extension of problem responses
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeExportFailed     = "EXPORT_FAILED"
)

// APIError is a transport-level failure with a status and machine code.
// ErrorHandler renders it as a problem response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the details payload of a multi-field rejection
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates an APIError
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates an APIError carrying details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	e := New(statusCode, errorCode, message)
	e.Details = details
	return e
}

// InvalidRequestWithError reports a body that could not be decoded
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation rejects a single field
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

// NewValidationErrors rejects one or more fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationErrors{Errors: errs})
}

// NewValidationError rejects a request without field details
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}

// ExportError reports a transaction export that failed part way
func ExportError(format string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeExportFailed,
		fmt.Sprintf("Failed to export %s", format), err.Error())
}
