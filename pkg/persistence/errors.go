// Package persistence provides standardized error types for judgment storage.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrJudgmentNotFound indicates no saved judgment exists for the subject.
	ErrJudgmentNotFound = errors.New("saved judgment not found")
)

// JudgmentStoreError wraps judgment-store errors with additional context.
type JudgmentStoreError struct {
	Op        string // Operation being performed (e.g., "Save", "Load")
	SubjectID string // Subject ID if applicable
	Err       error  // Underlying error
}

func (e *JudgmentStoreError) Error() string {
	return fmt.Sprintf("%s operation failed for subject %s: %v", e.Op, e.SubjectID, e.Err)
}

func (e *JudgmentStoreError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for judgment-store errors.
func (e *JudgmentStoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewJudgmentStoreError creates a new judgment-store error with context.
func NewJudgmentStoreError(op, subjectID string, err error) *JudgmentStoreError {
	return &JudgmentStoreError{Op: op, SubjectID: subjectID, Err: err}
}

// IsJudgmentNotFound checks if an error indicates a missing saved judgment.
func IsJudgmentNotFound(err error) bool {
	return errors.Is(err, ErrJudgmentNotFound)
}
