// Package judgment provides standardized error types for judgment execution.
package judgment

import (
	"errors"
	"fmt"
)

var (
	// ErrNoApplicableRules indicates no judgment configuration exists for
	// the subject's employment type. Surfaced distinctly so callers can
	// prompt for a valid category; the returned result is still the uniform
	// ineligible fallback.
	ErrNoApplicableRules = errors.New("no applicable judgment rules for employment type")
)

// JudgmentError wraps judgment-related errors with additional context.
type JudgmentError struct {
	Op             string // Operation being performed (e.g., "Execute")
	EmploymentType string // Employment type if applicable
	Err            error  // Underlying error
}

func (e *JudgmentError) Error() string {
	if e.EmploymentType != "" {
		return fmt.Sprintf("%s failed for employment type %q: %v", e.Op, e.EmploymentType, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *JudgmentError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for judgment errors.
func (e *JudgmentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsNoApplicableRules checks if an error indicates an unknown employment type.
func IsNoApplicableRules(err error) bool {
	return errors.Is(err, ErrNoApplicableRules)
}
