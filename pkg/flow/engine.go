package flow

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/models"
)

var (
	// ErrFlowCompleted indicates an answer was submitted to a session that
	// already reached the completed state.
	ErrFlowCompleted = errors.New("question flow already completed")

	// ErrIncompleteDateRange indicates a date-range answer with only one
	// side filled. The engine never advances past a half-answered range.
	ErrIncompleteDateRange = errors.New("date range answer requires both start and end")

	// ErrNoHistory indicates a back navigation on the initial question.
	ErrNoHistory = errors.New("no previous question to return to")

	// ErrEmptyAnswer indicates a submission without an answer value.
	ErrEmptyAnswer = errors.New("answer value is required")
)

// Engine drives sessions through a question flow. It holds no session
// state itself.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger.With("module", "flow_engine")}
}

// Start opens a session positioned at the flow's initial question.
func (e *Engine) Start(flow *models.QuestionFlowConfig) (Session, error) {
	if err := flow.Validate(); err != nil {
		return Session{}, configstore.NewConfigError("Start", configstore.KindQuestionFlow,
			fmt.Errorf("%w: %v", configstore.ErrConfigurationInvalid, err))
	}

	return Session{
		FlowID:            flow.ID,
		CurrentQuestionID: flow.InitialQuestionID,
		Answers:           make(map[string]string),
		Ranges:            make(map[string]DateRange),
	}, nil
}

// Advance records the answer for the current question and moves the session
// along the first matching transition rule. A matched end condition, or no
// matching rule at all, completes the flow; the latter is logged as a
// warning because it usually points at a gap in the rule configuration.
func (e *Engine) Advance(flow *models.QuestionFlowConfig, s Session, answer Answer) (Session, error) {
	if s.Completed {
		return s, ErrFlowCompleted
	}

	question, ok := flow.QuestionByID(s.CurrentQuestionID)
	if !ok {
		return s, configstore.NewConfigError("Advance", configstore.KindQuestionFlow,
			fmt.Errorf("%w: question %q not found in flow %q", configstore.ErrConfigurationInvalid, s.CurrentQuestionID, flow.ID))
	}

	logical, dateRange, err := resolveAnswer(question, answer)
	if err != nil {
		return s, err
	}

	next := s.clone()
	next.Answers[question.ID] = logical

	if dateRange != nil {
		next.Ranges[question.ID] = *dateRange
	}

	next.History = append(next.History, question.ID)
	next.Steps++

	// A flow whose rules cycle without an end condition would otherwise
	// walk forever; more steps than questions proves a revisit.
	if next.Steps > len(flow.Questions) {
		return s, configstore.NewConfigError("Advance", configstore.KindQuestionFlow,
			fmt.Errorf("%w: flow %q exceeded %d transitions, question graph contains a cycle without an end condition",
				configstore.ErrConfigurationInvalid, flow.ID, len(flow.Questions)))
	}

	for i := range question.Next {
		rule := &question.Next[i]
		if !rule.Matches(logical) {
			continue
		}

		if rule.IsEndCondition {
			next.CurrentQuestionID = ""
			next.Completed = true

			return next, nil
		}

		if _, ok := flow.QuestionByID(rule.NextQuestionID); !ok {
			return s, configstore.NewConfigError("Advance", configstore.KindQuestionFlow,
				fmt.Errorf("%w: transition from %q references unknown question %q",
					configstore.ErrConfigurationInvalid, question.ID, rule.NextQuestionID))
		}

		next.CurrentQuestionID = rule.NextQuestionID

		return next, nil
	}

	// Observable behavior: exhaustion completes the flow. It is still worth
	// flagging, because an intentional end should carry is_end_condition.
	e.logger.Warn("Question flow exhausted without end condition",
		"flow_id", flow.ID, "question_id", question.ID, "answer", logical)

	next.CurrentQuestionID = ""
	next.Completed = true

	return next, nil
}

// Back returns the session to the previously visited question. The answer
// recorded for that question is discarded, along with any answer state of
// the question being left, so both are collected fresh going forward. The
// question object itself is re-resolved from the flow, not from history.
func (e *Engine) Back(flow *models.QuestionFlowConfig, s Session) (Session, error) {
	if len(s.History) == 0 {
		return s, ErrNoHistory
	}

	next := s.clone()

	if s.CurrentQuestionID != "" {
		delete(next.Answers, s.CurrentQuestionID)
		delete(next.Ranges, s.CurrentQuestionID)
	}

	previous := next.History[len(next.History)-1]
	next.History = next.History[:len(next.History)-1]

	if _, ok := flow.QuestionByID(previous); !ok {
		return s, configstore.NewConfigError("Back", configstore.KindQuestionFlow,
			fmt.Errorf("%w: question %q not found in flow %q", configstore.ErrConfigurationInvalid, previous, flow.ID))
	}

	delete(next.Answers, previous)
	delete(next.Ranges, previous)

	next.CurrentQuestionID = previous
	next.Completed = false

	if next.Steps > 0 {
		next.Steps--
	}

	return next, nil
}

// resolveAnswer derives the logical answer for a question. Date-range
// questions answered with explicit parts require both sides and collapse to
// the "custom" logical answer.
func resolveAnswer(question *models.QuestionConfig, answer Answer) (string, *DateRange, error) {
	if question.Type == models.QuestionTypeDateRange {
		hasStart := answer.RangeStart != ""
		hasEnd := answer.RangeEnd != ""

		if hasStart != hasEnd {
			return "", nil, ErrIncompleteDateRange
		}

		if hasStart && hasEnd {
			return CustomRangeAnswer, &DateRange{Start: answer.RangeStart, End: answer.RangeEnd}, nil
		}

		if answer.Value == CustomRangeAnswer {
			return "", nil, ErrIncompleteDateRange
		}
	}

	if answer.Value == "" {
		return "", nil, ErrEmptyAnswer
	}

	return answer.Value, nil, nil
}
