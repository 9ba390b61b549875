package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes used across the clinic domain. Validation errors are surfaced to
// the caller and never retried; configuration errors abort the operation with
// nothing partially committed.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeStateTransition = "STATE_TRANSITION"
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodeOverpayment     = "OVERPAYMENT"
	CodeDeliveryFailure = "DELIVERY_FAILURE"
	CodeReconciliation  = "RECONCILIATION_FAILURE"
)

// NewValidationError creates a validation error
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewConfigurationError creates a configuration error for missing external setup
func NewConfigurationError(message string) *DomainError {
	return NewDomainError(CodeConfiguration, message)
}

// NewConfigurationErrorf creates a configuration error with a formatted message
func NewConfigurationErrorf(format string, args ...any) *DomainError {
	return NewDomainErrorf(CodeConfiguration, format, args...)
}

// IsDomainError reports whether err is (or wraps) a DomainError with the given code
func IsDomainError(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
