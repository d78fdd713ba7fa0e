// Package web provides HTTP handlers and REST API endpoints for the
// eligibility judgment service.
package web

import (
	"github.com/hokensys/shinsa/pkg/models"
)

// StartSessionRequest represents the request body for opening a question-flow session.
type StartSessionRequest struct {
	FlowID string `json:"flow_id" validate:"required"`
}

// AnswerRequest represents the request body for answering the current question.
// Date-range questions carry either a preset option value or both range parts.
type AnswerRequest struct {
	Value      string `json:"value,omitempty"`
	RangeStart string `json:"range_start,omitempty"`
	RangeEnd   string `json:"range_end,omitempty"`
}

// ExecuteJudgmentRequest represents the request body for running a judgment.
// Answers may be given inline or referenced from a completed session. When a
// birth date is supplied the age is derived from it at evaluation time and
// the age field is ignored.
type ExecuteJudgmentRequest struct {
	SubjectID      string            `json:"subject_id"           validate:"required"`
	SessionID      string            `json:"session_id,omitempty"`
	BirthDate      string            `json:"birth_date,omitempty"`
	Age            int               `json:"age"                  validate:"min=0"`
	EmploymentType string            `json:"employment_type"      validate:"required"`
	Answers        map[string]string `json:"answers,omitempty"`
}

// SaveJudgmentRequest represents the request body for persisting a judgment.
// The birth date uses the 2006-01-02 layout; when present, the stored age is
// derived from it at save time and the age field is ignored.
type SaveJudgmentRequest struct {
	EmployeeName   string                      `json:"employee_name"`
	EmployeeNumber string                      `json:"employee_number" validate:"required"`
	BirthDate      string                      `json:"birth_date,omitempty"`
	Age            int                         `json:"age"             validate:"min=0"`
	EmploymentType string                      `json:"employment_type"`
	CompanyID      string                      `json:"company_id"      validate:"required"`
	OfficeNumber   string                      `json:"office_number"   validate:"required"`
	Answers        map[string]string           `json:"answers,omitempty"`
	Eligibility    models.InsuranceEligibility `json:"eligibility"`
}

const birthDateLayout = "2006-01-02"
