package models

// EligibilityDecision is the outcome for one insurance category.
type EligibilityDecision struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

// InsuranceEligibility is the full judgment output. Health and pension are
// always present; care insurance is present only when it was derived from
// the subject's age.
type InsuranceEligibility struct {
	HealthInsurance  EligibilityDecision  `json:"health_insurance"`
	PensionInsurance EligibilityDecision  `json:"pension_insurance"`
	CareInsurance    *EligibilityDecision `json:"care_insurance,omitempty"`
}

// EligibleTypes lists the categories the subject is eligible for, in the
// fixed display order health, pension, care.
func (e *InsuranceEligibility) EligibleTypes() []InsuranceType {
	var eligible []InsuranceType

	if e.HealthInsurance.Eligible {
		eligible = append(eligible, InsuranceHealth)
	}

	if e.PensionInsurance.Eligible {
		eligible = append(eligible, InsurancePension)
	}

	if e.CareInsurance != nil && e.CareInsurance.Eligible {
		eligible = append(eligible, InsuranceCare)
	}

	return eligible
}
