// Package models defines the core domain models for insurance eligibility screening.
package models

import (
	"fmt"
	"strings"
)

// QuestionType represents the kind of answer a question collects.
type QuestionType string

const (
	QuestionTypeYesNo          QuestionType = "yes_no"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeDateRange      QuestionType = "date_range"
)

// TransitionConditionType selects how a transition rule matches an answer.
type TransitionConditionType string

const (
	TransitionEquals   TransitionConditionType = "equals"
	TransitionContains TransitionConditionType = "contains"
	// TransitionRange is reserved in the configuration schema but has no
	// matching semantics yet. A rule using it never matches.
	TransitionRange TransitionConditionType = "range"
)

// ChoiceOption is one selectable answer of a multiple-choice question.
type ChoiceOption struct {
	Value       string `json:"value"                 validate:"required"`
	Label       string `json:"label"                 validate:"required"`
	Description string `json:"description,omitempty"`
}

// NextQuestionRule is an outgoing transition of a question node. Rules are
// evaluated in list order; the first match wins.
type NextQuestionRule struct {
	ConditionType  TransitionConditionType `json:"condition_type"             validate:"required,oneof=equals contains range"`
	ConditionValue string                  `json:"condition_value,omitempty"`
	// ConditionValues holds the allowed answer set for contains rules.
	ConditionValues []string `json:"condition_values,omitempty"`
	NextQuestionID  string   `json:"next_question_id,omitempty"`
	IsEndCondition  bool     `json:"is_end_condition"`
}

// Matches reports whether the rule applies to the submitted answer.
func (r *NextQuestionRule) Matches(answer string) bool {
	switch r.ConditionType {
	case TransitionEquals:
		return answer == r.ConditionValue
	case TransitionContains:
		for _, v := range r.ConditionValues {
			if v == answer {
				return true
			}
		}

		return false
	case TransitionRange:
		// Reserved: no range matching defined.
		return false
	default:
		return false
	}
}

// QuestionConfig is a single node of a question flow.
type QuestionConfig struct {
	ID      string             `json:"id"                validate:"required"`
	Text    string             `json:"text"              validate:"required"`
	Type    QuestionType       `json:"type"              validate:"required,oneof=yes_no multiple_choice date_range"`
	Options []ChoiceOption     `json:"options,omitempty" validate:"dive"`
	Next    []NextQuestionRule `json:"next,omitempty"    validate:"dive"`
}

// QuestionFlowConfig is a versioned, immutable question graph. It is owned by
// the configuration store; the engine never mutates it.
type QuestionFlowConfig struct {
	ID                string           `json:"id"                  validate:"required"`
	Version           int              `json:"version"             validate:"required,min=1"`
	Active            bool             `json:"active"`
	InitialQuestionID string           `json:"initial_question_id" validate:"required"`
	Questions         []QuestionConfig `json:"questions"           validate:"required,min=1,dive"`
}

// QuestionByID resolves a question node within the flow.
func (f *QuestionFlowConfig) QuestionByID(id string) (*QuestionConfig, bool) {
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			return &f.Questions[i], true
		}
	}

	return nil, false
}

// Validate checks the structural integrity of the flow graph: unique node
// ids, a resolvable initial question, and no dangling transition targets.
// End-condition rules are exempt from the target check.
func (f *QuestionFlowConfig) Validate() error {
	seen := make(map[string]bool, len(f.Questions))
	for _, q := range f.Questions {
		if seen[q.ID] {
			return fmt.Errorf("flow %s: duplicate question id %q", f.ID, q.ID)
		}

		seen[q.ID] = true
	}

	if !seen[f.InitialQuestionID] {
		return fmt.Errorf("flow %s: initial question %q not found", f.ID, f.InitialQuestionID)
	}

	var problems []string

	for _, q := range f.Questions {
		for i, rule := range q.Next {
			if rule.IsEndCondition {
				continue
			}

			if !seen[rule.NextQuestionID] {
				problems = append(problems, fmt.Sprintf(
					"question %q rule %d references unknown question %q", q.ID, i, rule.NextQuestionID))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("flow %s: %s", f.ID, strings.Join(problems, "; "))
	}

	return nil
}
