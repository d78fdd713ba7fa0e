package models

import "time"

// EmployeeInfo is the ephemeral evaluation input assembled from a completed
// question flow session. It is never persisted on its own.
type EmployeeInfo struct {
	Age            int               `json:"age"             validate:"min=0"`
	EmploymentType string            `json:"employment_type" validate:"required"`
	Answers        map[string]string `json:"answers"`
}

// AgeAt derives a whole-year age from a birth date at the given moment.
func AgeAt(birthDate, at time.Time) int {
	age := at.Year() - birthDate.Year()

	// Birthday not reached yet this year.
	if at.Month() < birthDate.Month() ||
		(at.Month() == birthDate.Month() && at.Day() < birthDate.Day()) {
		age--
	}

	if age < 0 {
		return 0
	}

	return age
}
