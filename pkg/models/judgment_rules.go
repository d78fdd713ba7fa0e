package models

import "sort"

// InsuranceType identifies one insurance category covered by a judgment.
type InsuranceType string

const (
	InsuranceHealth  InsuranceType = "health"
	InsurancePension InsuranceType = "pension"
	InsuranceCare    InsuranceType = "care"
)

// DisplayName returns the human-readable category name used in summaries.
func (t InsuranceType) DisplayName() string {
	switch t {
	case InsuranceHealth:
		return "health insurance"
	case InsurancePension:
		return "pension insurance"
	case InsuranceCare:
		return "care insurance"
	default:
		return string(t)
	}
}

// ConditionOperator selects how a condition expression compares an answer.
type ConditionOperator string

const (
	OperatorEquals    ConditionOperator = "equals"
	OperatorNotEquals ConditionOperator = "not_equals"
	OperatorContains  ConditionOperator = "contains"
)

// ConditionExpression compares one recorded answer against an expected value.
// For contains, Values holds an allowed answer set; when Values is empty the
// single Value is treated as a substring of the answer instead.
type ConditionExpression struct {
	QuestionID string            `json:"question_id"      validate:"required"`
	Operator   ConditionOperator `json:"operator"         validate:"required,oneof=equals not_equals contains"`
	Value      string            `json:"value,omitempty"`
	Values     []string          `json:"values,omitempty"`
}

// AgeRestriction bounds the subject's age for a judgment condition. The
// minimum bound is inclusive unless stated otherwise; the maximum bound is
// EXCLUSIVE unless stated otherwise. The asymmetry matches how enrollment
// cutoffs are written in the source regulations ("until age 70" excludes
// the 70th birthday).
type AgeRestriction struct {
	MinAge       *int  `json:"min_age,omitempty"`
	MaxAge       *int  `json:"max_age,omitempty"`
	InclusiveMin *bool `json:"inclusive_min,omitempty"`
	InclusiveMax *bool `json:"inclusive_max,omitempty"`
}

// MinInclusive reports whether the minimum bound includes the boundary age.
func (a *AgeRestriction) MinInclusive() bool {
	if a.InclusiveMin == nil {
		return true
	}

	return *a.InclusiveMin
}

// MaxInclusive reports whether the maximum bound includes the boundary age.
func (a *AgeRestriction) MaxInclusive() bool {
	if a.InclusiveMax == nil {
		return false
	}

	return *a.InclusiveMax
}

// JudgmentResult is the outcome attached to a matching judgment condition.
// The reason is either a literal string or a reference to a reason template
// plus its parameter bag.
type JudgmentResult struct {
	Eligible         bool              `json:"eligible"`
	Reason           string            `json:"reason,omitempty"`
	ReasonTemplateID string            `json:"reason_template_id,omitempty"`
	ReasonParams     map[string]string `json:"reason_params,omitempty"`
}

// JudgmentCondition is one prioritized rule of an insurance type. Lower
// priority values are evaluated first. The expression list is conjunctive.
type JudgmentCondition struct {
	Priority       int                   `json:"priority"`
	Expressions    []ConditionExpression `json:"expressions,omitempty" validate:"dive"`
	AgeRestriction *AgeRestriction       `json:"age_restriction,omitempty"`
	Result         JudgmentResult        `json:"result"`
}

// InsuranceTypeRule holds the ordered condition list for one category.
type InsuranceTypeRule struct {
	InsuranceType InsuranceType       `json:"insurance_type" validate:"required,oneof=health pension care"`
	Conditions    []JudgmentCondition `json:"conditions"     validate:"dive"`
}

// SortedConditions returns the conditions ordered by ascending priority.
// The stored list is left untouched; configuration documents are read-only.
func (r *InsuranceTypeRule) SortedConditions() []JudgmentCondition {
	sorted := make([]JudgmentCondition, len(r.Conditions))
	copy(sorted, r.Conditions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	return sorted
}

// InsuranceJudgmentConfig is the versioned rule set for one employment type.
type InsuranceJudgmentConfig struct {
	ID             string              `json:"id"              validate:"required"`
	Version        int                 `json:"version"         validate:"required,min=1"`
	Active         bool                `json:"active"`
	EmploymentType string              `json:"employment_type" validate:"required"`
	Rules          []InsuranceTypeRule `json:"rules"           validate:"required,dive"`
}

// RuleFor locates the rule list for the given insurance type.
func (c *InsuranceJudgmentConfig) RuleFor(insuranceType InsuranceType) (*InsuranceTypeRule, bool) {
	for i := range c.Rules {
		if c.Rules[i].InsuranceType == insuranceType {
			return &c.Rules[i], true
		}
	}

	return nil, false
}
