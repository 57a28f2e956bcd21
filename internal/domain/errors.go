package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeTransport     = "TRANSPORT_ERROR"
	ErrCodeStorage       = "STORAGE_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidPageURL       = NewDomainError(ErrCodeValidation, "source url has no document id segment")
	ErrEmptyBucket          = NewDomainError(ErrCodeValidation, "bucket name must be provided")
	ErrEmptyObjectKey       = NewDomainError(ErrCodeValidation, "object key must be provided")
	ErrInvalidOperation     = NewDomainError(ErrCodeValidation, "operation must be either 'get' or 'put'")
)

// Transport errors
var (
	ErrUploadFailed  = NewDomainError(ErrCodeTransport, "chunk upload failed")
	ErrListingFailed = NewDomainError(ErrCodeTransport, "remote chunk listing failed")
)

// Storage errors
var (
	ErrChunkReadFailed  = NewDomainError(ErrCodeStorage, "failed to read chunk file")
	ErrChunkWriteFailed = NewDomainError(ErrCodeStorage, "failed to write chunk file")
)
