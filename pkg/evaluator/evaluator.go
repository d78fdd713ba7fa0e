// Package evaluator provides the pure condition-evaluation layer of the
// eligibility engine: answer conditions, age restrictions, and reason
// template rendering. No state, no I/O.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/hokensys/shinsa/pkg/models"
)

// EvaluateConditions reports whether every expression holds against the
// answer map (conjunction). An unknown operator degrades to "not satisfied"
// rather than failing; the evaluator is error-free by construction.
func EvaluateConditions(expressions []models.ConditionExpression, answers map[string]string) bool {
	for _, exp := range expressions {
		if !evaluateExpression(exp, answers) {
			return false
		}
	}

	return true
}

func evaluateExpression(exp models.ConditionExpression, answers map[string]string) bool {
	answer, ok := answers[exp.QuestionID]

	switch exp.Operator {
	case models.OperatorEquals:
		return ok && answer == exp.Value
	case models.OperatorNotEquals:
		return ok && answer != exp.Value
	case models.OperatorContains:
		if !ok {
			return false
		}

		// Two caller conventions: an allowed answer set, or a single
		// expected substring of the answer.
		if len(exp.Values) > 0 {
			for _, v := range exp.Values {
				if v == answer {
					return true
				}
			}

			return false
		}

		return strings.Contains(answer, exp.Value)
	default:
		return false
	}
}

// AgeCheck is the outcome of an age-restriction evaluation. Reason is set
// only on failure and is surfaced as the condition's rejection reason.
type AgeCheck struct {
	Passed bool
	Reason string
}

// CheckAgeRestriction evaluates the restriction for the given age. A nil
// restriction passes trivially. The minimum bound is inclusive by default,
// the maximum bound exclusive by default: {min:60, max:70} means [60,70).
func CheckAgeRestriction(restriction *models.AgeRestriction, age int) AgeCheck {
	if restriction == nil {
		return AgeCheck{Passed: true}
	}

	if restriction.MinAge != nil {
		minAge := *restriction.MinAge

		failed := age < minAge || (!restriction.MinInclusive() && age == minAge)
		if failed {
			return AgeCheck{
				Passed: false,
				Reason: fmt.Sprintf("age %d is below the minimum age %d for this condition", age, minAge),
			}
		}
	}

	if restriction.MaxAge != nil {
		maxAge := *restriction.MaxAge

		failed := age > maxAge || (!restriction.MaxInclusive() && age == maxAge)
		if failed {
			return AgeCheck{
				Passed: false,
				Reason: fmt.Sprintf("age %d is above the maximum age %d for this condition", age, maxAge),
			}
		}
	}

	return AgeCheck{Passed: true}
}
