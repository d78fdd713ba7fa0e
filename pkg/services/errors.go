// Package services provides the application layer between transport and the
// rule, flow, and persistence packages.
package services

import (
	"errors"
	"fmt"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrFlowIDRequired       = errors.New("flow id is required")
	ErrSubjectIDRequired    = errors.New("subject id is required")
	ErrAnswerRequired       = errors.New("answer is required")
	ErrEmployeeInfoRequired = errors.New("employee information is required")
	ErrSessionNotCompleted  = errors.New("question flow is not completed")

	// Not Found (404).
	ErrSessionNotFound = errors.New("session not found")
	ErrFlowNotFound    = errors.New("question flow not found")
	ErrOfficeNotFound  = errors.New("office master record not found")

	// Business Logic Conflicts (409 Conflict).
	ErrJudgmentStale = errors.New("saved judgment no longer matches the subject identity")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrFlowIDRequired) ||
		errors.Is(err, ErrSubjectIDRequired) ||
		errors.Is(err, ErrAnswerRequired) ||
		errors.Is(err, ErrEmployeeInfoRequired) ||
		errors.Is(err, ErrSessionNotCompleted)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrFlowNotFound) ||
		errors.Is(err, ErrOfficeNotFound)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrJudgmentStale)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
