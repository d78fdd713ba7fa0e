package models

import "time"

// SavedJudgment is the persisted snapshot of one completed judgment, keyed
// by subject id. Saves are unconditional overwrites; the engine never
// deletes a saved judgment.
type SavedJudgment struct {
	SubjectID      string               `json:"subject_id"      validate:"required"`
	EmployeeName   string               `json:"employee_name"`
	EmployeeNumber string               `json:"employee_number" validate:"required"`
	BirthDate      time.Time            `json:"birth_date"`
	Age            int                  `json:"age"`
	EmploymentType string               `json:"employment_type"`
	CompanyID      string               `json:"company_id"`
	OfficeNumber   string               `json:"office_number"`
	OfficeRegion   string               `json:"office_region"`
	Answers        map[string]string    `json:"answers"`
	Eligibility    InsuranceEligibility `json:"eligibility"`
	SavedAt        time.Time            `json:"saved_at"`
}

// MatchesSubject reports whether the snapshot still belongs to the given
// subject identity. A mismatch means the record is stale and must be hidden
// by the caller, never reassigned.
func (s *SavedJudgment) MatchesSubject(employeeNumber, officeNumber, companyID string) bool {
	return s.EmployeeNumber == employeeNumber &&
		s.OfficeNumber == officeNumber &&
		s.CompanyID == companyID
}
