// Package judgment implements the eligibility judgment engine: it evaluates
// the prioritized rule set for a subject's employment type against the
// collected answers and derived age, and assembles the per-category result.
package judgment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/evaluator"
	"github.com/hokensys/shinsa/pkg/models"
)

const (
	// ReasonIndeterminate is used when no judgment condition matches.
	ReasonIndeterminate = "judgment condition indeterminate"

	// ReasonProcessingError is the uniform degraded reason when evaluation
	// fails unexpectedly after a rule set was located.
	ReasonProcessingError = "eligibility could not be determined due to a processing error"

	// Care insurance is age-gated independently of the rule configuration.
	careMinAge = 40
	careMaxAge = 65

	summarySeparator = ", "

	// SummaryNoneEligible is the fixed sentence for an all-ineligible result.
	SummaryNoneEligible = "not eligible for any insurance category"
)

// Engine orchestrates judgment execution against cached configuration.
type Engine struct {
	configs *configstore.Cache
	logger  *slog.Logger
}

func NewEngine(configs *configstore.Cache, logger *slog.Logger) *Engine {
	return &Engine{
		configs: configs,
		logger:  logger.With("module", "judgment_engine"),
	}
}

// ExecuteJudgment evaluates eligibility for health, pension and care
// insurance. Configuration fetch failures and an unknown employment type
// are returned as distinct errors alongside the uniform fallback result;
// once a rule set was found, any internal failure degrades to the fallback
// result without an error. Nothing escapes this boundary.
func (e *Engine) ExecuteJudgment(ctx context.Context, employee models.EmployeeInfo) (models.InsuranceEligibility, error) {
	configs, err := e.configs.JudgmentConfigs(ctx)
	if err != nil {
		return fallbackResult(), &JudgmentError{Op: "Execute", EmploymentType: employee.EmploymentType, Err: err}
	}

	config := configForEmploymentType(configs, employee.EmploymentType)
	if config == nil {
		return fallbackResult(), &JudgmentError{
			Op:             "Execute",
			EmploymentType: employee.EmploymentType,
			Err:            ErrNoApplicableRules,
		}
	}

	templates, err := e.reasonTemplates(ctx)
	if err != nil {
		e.logger.Error("Judgment degraded to fallback result", "employment_type", employee.EmploymentType, "error", err)

		return fallbackResult(), nil
	}

	result := models.InsuranceEligibility{
		HealthInsurance:  e.judgeCategory(config, models.InsuranceHealth, employee, templates),
		PensionInsurance: e.judgeCategory(config, models.InsurancePension, employee, templates),
	}

	care := judgeCareInsurance(employee.Age)
	result.CareInsurance = &care

	return result, nil
}

// judgeCategory walks the category's conditions in ascending priority. The
// first failing age restriction ends the whole category immediately with
// that restriction's reason, even when a lower-priority condition without a
// restriction would have matched; downstream paperwork depends on this
// order-sensitive behavior.
func (e *Engine) judgeCategory(
	config *models.InsuranceJudgmentConfig,
	insuranceType models.InsuranceType,
	employee models.EmployeeInfo,
	templates map[string]string,
) models.EligibilityDecision {
	rule, ok := config.RuleFor(insuranceType)
	if !ok {
		return models.EligibilityDecision{Eligible: false, Reason: ReasonIndeterminate}
	}

	for _, condition := range rule.SortedConditions() {
		ageCheck := evaluator.CheckAgeRestriction(condition.AgeRestriction, employee.Age)
		if !ageCheck.Passed {
			return models.EligibilityDecision{Eligible: false, Reason: ageCheck.Reason}
		}

		if evaluator.EvaluateConditions(condition.Expressions, employee.Answers) {
			return e.decisionFor(condition.Result, templates)
		}
	}

	return models.EligibilityDecision{Eligible: false, Reason: ReasonIndeterminate}
}

func (e *Engine) decisionFor(result models.JudgmentResult, templates map[string]string) models.EligibilityDecision {
	reason := result.Reason
	if result.ReasonTemplateID != "" {
		reason = evaluator.GenerateReason(templates, result.ReasonTemplateID, result.ReasonParams)
	}

	return models.EligibilityDecision{Eligible: result.Eligible, Reason: reason}
}

func (e *Engine) reasonTemplates(ctx context.Context) (map[string]string, error) {
	templates, err := e.configs.ReasonTemplates(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(templates))
	for _, tmpl := range templates {
		byID[tmpl.ID] = tmpl.Text
	}

	return byID, nil
}

// judgeCareInsurance derives care-insurance eligibility from age alone:
// category 2 insured persons are those aged 40 to 64.
func judgeCareInsurance(age int) models.EligibilityDecision {
	if age >= careMinAge && age < careMaxAge {
		return models.EligibilityDecision{
			Eligible: true,
			Reason:   fmt.Sprintf("age %d is within the care insurance bracket of %d to %d", age, careMinAge, careMaxAge-1),
		}
	}

	return models.EligibilityDecision{
		Eligible: false,
		Reason:   fmt.Sprintf("age %d is outside the care insurance bracket of %d to %d", age, careMinAge, careMaxAge-1),
	}
}

func configForEmploymentType(configs []*models.InsuranceJudgmentConfig, employmentType string) *models.InsuranceJudgmentConfig {
	for _, config := range configs {
		if config.EmploymentType == employmentType {
			return config
		}
	}

	return nil
}

// fallbackResult is the uniform degraded output: ineligible everywhere with
// the generic processing reason.
func fallbackResult() models.InsuranceEligibility {
	decision := models.EligibilityDecision{Eligible: false, Reason: ReasonProcessingError}

	return models.InsuranceEligibility{
		HealthInsurance:  decision,
		PensionInsurance: decision,
		CareInsurance:    &decision,
	}
}
