// Package events defines event types for judgment lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/models"
)

type EventType string

// Topic carries every judgment lifecycle event.
const Topic = "shinsa.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Configuration lifecycle events.
	ConfigurationUpdatedEvent EventType = "configuration.updated"

	// Judgment lifecycle events.
	JudgmentCompletedEvent EventType = "judgment.completed"
	JudgmentSavedEvent     EventType = "judgment.saved"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SubjectID string         `json:"subject_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ConfigurationUpdated signals that configuration documents changed upstream
// and cached copies must be discarded. An empty Kind means all kinds.
type ConfigurationUpdated struct {
	BaseEvent

	Kind      configstore.Kind `json:"kind,omitempty"`
	UpdatedBy string           `json:"updated_by,omitempty"`
}

func (c ConfigurationUpdated) GetType() EventType {
	return ConfigurationUpdatedEvent
}

// JudgmentCompleted is published after the rule engine produced a decision
// for a subject, whether or not the caller goes on to save it.
type JudgmentCompleted struct {
	BaseEvent

	EmploymentType string                      `json:"employment_type"`
	Age            int                         `json:"age"`
	Eligibility    models.InsuranceEligibility `json:"eligibility"`
	Summary        string                      `json:"summary"`
	DurationMs     int64                       `json:"duration_ms"`
}

func (j JudgmentCompleted) GetType() EventType {
	return JudgmentCompletedEvent
}

// JudgmentSaved is published after a judgment was persisted for a subject.
type JudgmentSaved struct {
	BaseEvent

	EmployeeNumber string `json:"employee_number"`
	OfficeNumber   string `json:"office_number"`
	CompanyID      string `json:"company_id"`
	Overwrite      bool   `json:"overwrite"`
}

func (j JudgmentSaved) GetType() EventType {
	return JudgmentSavedEvent
}

func NewBaseEvent(eventType EventType, subjectID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SubjectID: subjectID,
		Metadata:  make(map[string]any),
	}
}
