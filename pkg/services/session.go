package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/flow"
	"github.com/hokensys/shinsa/pkg/models"
)

// InterviewSession is one questionnaire walk held in memory, addressed by a
// server-generated id. The embedded flow session is the authoritative state;
// CurrentQuestion is resolved per response for the transport layer.
type InterviewSession struct {
	ID              string                 `json:"id"`
	State           flow.Session           `json:"state"`
	CurrentQuestion *models.QuestionConfig `json:"current_question,omitempty"`
}

// Interview orchestrates question-flow sessions over the configuration cache.
// Session state lives in process memory; restarting the service discards
// sessions in progress.
type Interview struct {
	configs *configstore.Cache
	engine  *flow.Engine

	mu       sync.RWMutex
	sessions map[string]flow.Session
}

// NewInterview creates a new interview service.
func NewInterview(configs *configstore.Cache, engine *flow.Engine) *Interview {
	return &Interview{
		configs:  configs,
		engine:   engine,
		sessions: make(map[string]flow.Session),
	}
}

// HealthCheck checks the health of the configuration source.
func (i *Interview) HealthCheck(ctx context.Context) (string, bool) {
	err := i.configs.HealthCheck(ctx)
	if err != nil {
		return "Configuration source is unhealthy: " + err.Error(), false
	}

	return "Configuration source is healthy", true
}

// Start opens a session on the given flow, positioned at its initial question.
func (i *Interview) Start(ctx context.Context, flowID string) (*InterviewSession, error) {
	if flowID == "" {
		return nil, ErrFlowIDRequired
	}

	flowConfig, err := i.flowByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	state, err := i.engine.Start(flowConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to start question flow: %w", err)
	}

	id := uuid.New().String()

	i.mu.Lock()
	i.sessions[id] = state
	i.mu.Unlock()

	return i.view(id, state, flowConfig), nil
}

// Answer submits an answer for the session's current question and advances it.
func (i *Interview) Answer(ctx context.Context, sessionID string, answer flow.Answer) (*InterviewSession, error) {
	if answer.Value == "" && answer.RangeStart == "" && answer.RangeEnd == "" {
		return nil, NewValidationError("Answer", "answer_required",
			"an answer value is required", ErrAnswerRequired)
	}

	state, err := i.sessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	flowConfig, err := i.flowByID(ctx, state.FlowID)
	if err != nil {
		return nil, err
	}

	next, err := i.engine.Advance(flowConfig, state, answer)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	i.sessions[sessionID] = next
	i.mu.Unlock()

	return i.view(sessionID, next, flowConfig), nil
}

// Back returns the session to its previously visited question.
func (i *Interview) Back(ctx context.Context, sessionID string) (*InterviewSession, error) {
	state, err := i.sessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	flowConfig, err := i.flowByID(ctx, state.FlowID)
	if err != nil {
		return nil, err
	}

	next, err := i.engine.Back(flowConfig, state)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	i.sessions[sessionID] = next
	i.mu.Unlock()

	return i.view(sessionID, next, flowConfig), nil
}

// Get returns the current state of a session.
func (i *Interview) Get(ctx context.Context, sessionID string) (*InterviewSession, error) {
	state, err := i.sessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	flowConfig, err := i.flowByID(ctx, state.FlowID)
	if err != nil {
		return nil, err
	}

	return i.view(sessionID, state, flowConfig), nil
}

// Answers returns the answer map of a completed session for judgment input.
func (i *Interview) Answers(sessionID string) (map[string]string, error) {
	state, err := i.sessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	if !state.Completed {
		return nil, ErrSessionNotCompleted
	}

	answers := make(map[string]string, len(state.Answers))
	for k, v := range state.Answers {
		answers[k] = v
	}

	return answers, nil
}

func (i *Interview) sessionByID(sessionID string) (flow.Session, error) {
	i.mu.RLock()
	state, ok := i.sessions[sessionID]
	i.mu.RUnlock()

	if !ok {
		return flow.Session{}, ErrSessionNotFound
	}

	return state, nil
}

func (i *Interview) flowByID(ctx context.Context, flowID string) (*models.QuestionFlowConfig, error) {
	flows, err := i.configs.QuestionFlows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load question flows: %w", err)
	}

	for _, flowConfig := range flows {
		if flowConfig.ID == flowID {
			return flowConfig, nil
		}
	}

	return nil, ErrFlowNotFound
}

func (i *Interview) view(id string, state flow.Session, flowConfig *models.QuestionFlowConfig) *InterviewSession {
	session := &InterviewSession{ID: id, State: state}

	if state.CurrentQuestionID != "" {
		if question, ok := flowConfig.QuestionByID(state.CurrentQuestionID); ok {
			session.CurrentQuestion = question
		}
	}

	return session
}
