package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yesNoQuestion(id, next string) QuestionConfig {
	return QuestionConfig{
		ID:   id,
		Text: "Question " + id,
		Type: QuestionTypeYesNo,
		Next: []NextQuestionRule{
			{ConditionType: TransitionEquals, ConditionValue: "yes", NextQuestionID: next},
			{ConditionType: TransitionEquals, ConditionValue: "no", IsEndCondition: true},
		},
	}
}

func TestQuestionFlowConfig_Validate(t *testing.T) {
	flow := &QuestionFlowConfig{
		ID:                "flow-1",
		Version:           1,
		Active:            true,
		InitialQuestionID: "q1",
		Questions: []QuestionConfig{
			yesNoQuestion("q1", "q2"),
			yesNoQuestion("q2", "q3"),
			{ID: "q3", Text: "Question q3", Type: QuestionTypeYesNo, Next: []NextQuestionRule{
				{ConditionType: TransitionEquals, ConditionValue: "yes", IsEndCondition: true},
				{ConditionType: TransitionEquals, ConditionValue: "no", IsEndCondition: true},
			}},
		},
	}

	require.NoError(t, flow.Validate())
}

func TestQuestionFlowConfig_Validate_MissingInitialQuestion(t *testing.T) {
	flow := &QuestionFlowConfig{
		ID:                "flow-1",
		Version:           1,
		InitialQuestionID: "missing",
		Questions:         []QuestionConfig{yesNoQuestion("q1", "q1")},
	}

	err := flow.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial question")
}

func TestQuestionFlowConfig_Validate_DanglingReference(t *testing.T) {
	flow := &QuestionFlowConfig{
		ID:                "flow-1",
		Version:           1,
		InitialQuestionID: "q1",
		Questions:         []QuestionConfig{yesNoQuestion("q1", "nowhere")},
	}

	err := flow.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown question")
}

func TestQuestionFlowConfig_Validate_EndConditionNeedsNoTarget(t *testing.T) {
	flow := &QuestionFlowConfig{
		ID:                "flow-1",
		Version:           1,
		InitialQuestionID: "q1",
		Questions: []QuestionConfig{
			{ID: "q1", Text: "done?", Type: QuestionTypeYesNo, Next: []NextQuestionRule{
				{ConditionType: TransitionEquals, ConditionValue: "yes", IsEndCondition: true},
			}},
		},
	}

	require.NoError(t, flow.Validate())
}

func TestQuestionFlowConfig_Validate_DuplicateIDs(t *testing.T) {
	flow := &QuestionFlowConfig{
		ID:                "flow-1",
		Version:           1,
		InitialQuestionID: "q1",
		Questions: []QuestionConfig{
			yesNoQuestion("q1", "q1"),
			yesNoQuestion("q1", "q1"),
		},
	}

	err := flow.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNextQuestionRule_Matches(t *testing.T) {
	tests := []struct {
		name   string
		rule   NextQuestionRule
		answer string
		want   bool
	}{
		{"equals match", NextQuestionRule{ConditionType: TransitionEquals, ConditionValue: "yes"}, "yes", true},
		{"equals mismatch", NextQuestionRule{ConditionType: TransitionEquals, ConditionValue: "yes"}, "no", false},
		{"contains member", NextQuestionRule{ConditionType: TransitionContains, ConditionValues: []string{"a", "b"}}, "b", true},
		{"contains non-member", NextQuestionRule{ConditionType: TransitionContains, ConditionValues: []string{"a", "b"}}, "c", false},
		{"range never matches", NextQuestionRule{ConditionType: TransitionRange, ConditionValue: "1-10"}, "5", false},
		{"unknown type never matches", NextQuestionRule{ConditionType: "glob", ConditionValue: "*"}, "*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Matches(tt.answer))
		})
	}
}
