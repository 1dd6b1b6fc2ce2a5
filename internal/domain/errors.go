package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Input validation errors
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Lifecycle errors
	ErrorCodeInvalidTransition     ErrorCode = "INVALID_TRANSITION"
	ErrorCodeInvalidOperation      ErrorCode = "INVALID_OPERATION"
	ErrorCodeDateOrderingViolation ErrorCode = "DATE_ORDERING_VIOLATION"

	// Lookup errors
	ErrorCodeSubscriptionNotFound ErrorCode = "SUBSCRIPTION_NOT_FOUND"
	ErrorCodeOrderNotFound        ErrorCode = "ORDER_NOT_FOUND"

	// Internal errors
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// NewDateOrderingError creates a DATE_ORDERING_VIOLATION error carrying every
// violated relationship, not just the first one found.
func NewDateOrderingError(violations []string) *DomainError {
	err := NewDomainError(ErrorCodeDateOrderingViolation, strings.Join(violations, " "))
	err.Details["violations"] = violations
	return err
}

// DateOrderingViolations extracts the violated relationships from a
// DATE_ORDERING_VIOLATION error. Returns nil for any other error.
func DateOrderingViolations(err error) []string {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != ErrorCodeDateOrderingViolation {
		return nil
	}
	violations, _ := domainErr.Details["violations"].([]string)
	return violations
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeSubscriptionNotFound || code == ErrorCodeOrderNotFound
}

// Common domain errors
var (
	ErrSubscriptionNotFound = NewDomainError(ErrorCodeSubscriptionNotFound, "subscription not found")
	ErrOrderNotFound        = NewDomainError(ErrorCodeOrderNotFound, "order not found")

	ErrStartDateNotDeletable       = NewDomainError(ErrorCodeInvalidOperation, "the start date of a subscription can not be deleted, only updated")
	ErrLastPaymentDateNotDeletable = NewDomainError(ErrorCodeInvalidOperation, "the last payment date of a subscription can not be deleted, delete the order instead")
)
