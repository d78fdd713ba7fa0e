package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/eventbus"
	"github.com/hokensys/shinsa/pkg/events"
	"github.com/hokensys/shinsa/pkg/judgment"
	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/otelhelper"
	"github.com/hokensys/shinsa/pkg/persistence"
)

// Judgment coordinates judgment execution, persistence and event publishing.
// The event bus and tracer are optional; a nil bus disables publishing and a
// nil tracer disables spans.
type Judgment struct {
	engine      *judgment.Engine
	configs     *configstore.Cache
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewJudgment creates a new judgment service.
func NewJudgment(
	engine *judgment.Engine,
	configs *configstore.Cache,
	persist persistence.Persistence,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Judgment {
	return &Judgment{
		engine:      engine,
		configs:     configs,
		persistence: persist,
		eventBus:    eventBus,
		tracer:      tracer,
		logger:      logger.With("module", "judgment_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (j *Judgment) HealthCheck(ctx context.Context) (string, bool) {
	if j.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := j.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ExecuteRequest carries the subject data a judgment runs on. When BirthDate
// is set the age is derived from it at evaluation time and Age is ignored.
type ExecuteRequest struct {
	SubjectID      string `validate:"required"`
	BirthDate      time.Time
	Age            int               `validate:"min=0"`
	EmploymentType string            `validate:"required"`
	Answers        map[string]string `validate:"required"`
}

// ExecuteResponse is the outcome of one judgment run.
type ExecuteResponse struct {
	Eligibility models.InsuranceEligibility `json:"eligibility"`
	Summary     string                      `json:"summary"`
}

// Execute runs the eligibility judgment for a subject. Unavailable
// configuration is surfaced as a bare error; an unknown employment type
// returns the distinct no-applicable-rules error together with the uniform
// fallback result. Any failure past rule lookup degrades to the fallback
// result without an error.
func (j *Judgment) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResponse, error) {
	if req.SubjectID == "" {
		return nil, ErrSubjectIDRequired
	}

	if strings.TrimSpace(req.EmploymentType) == "" || req.Answers == nil {
		return nil, ErrEmployeeInfoRequired
	}

	ctx, span := j.startSpan(ctx, "judgment.execute",
		attribute.String(otelhelper.SubjectIDKey, req.SubjectID),
		attribute.String(otelhelper.EmploymentTypeKey, req.EmploymentType),
	)
	defer span.End()

	started := time.Now()

	age := req.Age
	if !req.BirthDate.IsZero() {
		age = models.AgeAt(req.BirthDate, started.UTC())
	}

	employee := models.EmployeeInfo{
		Age:            age,
		EmploymentType: req.EmploymentType,
		Answers:        req.Answers,
	}

	eligibility, err := j.engine.ExecuteJudgment(ctx, employee)
	if err != nil {
		switch {
		case configstore.IsConfigurationUnavailable(err):
			otelhelper.SetError(span, err)

			return nil, err
		case judgment.IsNoApplicableRules(err):
			otelhelper.SetError(span, err)

			// The uniform fallback result travels with the error so
			// callers can still present the degraded outcome.
			return &ExecuteResponse{
				Eligibility: eligibility,
				Summary:     judgment.GenerateJudgmentSummary(&eligibility),
			}, err
		default:
			// Anything else degrades to the uniform ineligible result the
			// engine already produced.
			j.logger.Error("Judgment degraded", "subject_id", req.SubjectID, "error", err)
		}
	}

	response := &ExecuteResponse{
		Eligibility: eligibility,
		Summary:     judgment.GenerateJudgmentSummary(&eligibility),
	}

	j.publish(ctx, req.SubjectID, events.JudgmentCompleted{
		BaseEvent:      events.NewBaseEvent(events.JudgmentCompletedEvent, req.SubjectID),
		EmploymentType: req.EmploymentType,
		Age:            age,
		Eligibility:    eligibility,
		Summary:        response.Summary,
		DurationMs:     time.Since(started).Milliseconds(),
	})

	return response, nil
}

// SaveRequest carries a completed judgment to persist for a subject. When
// BirthDate is set the stored age is derived from it at save time and Age
// is ignored.
type SaveRequest struct {
	SubjectID      string `validate:"required"`
	EmployeeName   string
	EmployeeNumber string `validate:"required"`
	BirthDate      time.Time
	Age            int `validate:"min=0"`
	EmploymentType string
	CompanyID      string `validate:"required"`
	OfficeNumber   string `validate:"required"`
	Answers        map[string]string
	Eligibility    models.InsuranceEligibility
}

// Save persists the judgment for the subject, overwriting any previous save.
// The office region is stamped from master data at save time.
func (j *Judgment) Save(ctx context.Context, req SaveRequest) (*models.SavedJudgment, error) {
	if req.SubjectID == "" {
		return nil, ErrSubjectIDRequired
	}

	ctx, span := j.startSpan(ctx, "judgment.save",
		attribute.String(otelhelper.SubjectIDKey, req.SubjectID),
	)
	defer span.End()

	office, err := j.officeFor(ctx, req.OfficeNumber, req.CompanyID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	overwrite := true

	_, err = j.persistence.JudgmentBySubject(ctx, req.SubjectID)
	if persistence.IsJudgmentNotFound(err) {
		overwrite = false
	} else if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	savedAt := time.Now().UTC()

	// The snapshot must never carry an age inconsistent with its own birth
	// date, so a supplied birth date wins over the caller's age.
	age := req.Age
	if !req.BirthDate.IsZero() {
		age = models.AgeAt(req.BirthDate, savedAt)
	}

	saved := &models.SavedJudgment{
		SubjectID:      req.SubjectID,
		EmployeeName:   req.EmployeeName,
		EmployeeNumber: req.EmployeeNumber,
		BirthDate:      req.BirthDate,
		Age:            age,
		EmploymentType: req.EmploymentType,
		CompanyID:      req.CompanyID,
		OfficeNumber:   req.OfficeNumber,
		OfficeRegion:   office.OfficeRegion,
		Answers:        req.Answers,
		Eligibility:    req.Eligibility,
		SavedAt:        savedAt,
	}

	err = j.persistence.SaveJudgment(ctx, saved)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	j.publish(ctx, req.SubjectID, events.JudgmentSaved{
		BaseEvent:      events.NewBaseEvent(events.JudgmentSavedEvent, req.SubjectID),
		EmployeeNumber: req.EmployeeNumber,
		OfficeNumber:   req.OfficeNumber,
		CompanyID:      req.CompanyID,
		Overwrite:      overwrite,
	})

	return saved, nil
}

// LoadRequest identifies the subject whose saved judgment to read back. The
// identity fields guard against reading a snapshot that belonged to someone
// else who previously occupied the same subject id.
type LoadRequest struct {
	SubjectID      string `validate:"required"`
	EmployeeNumber string `validate:"required"`
	OfficeNumber   string `validate:"required"`
	CompanyID      string `validate:"required"`
}

// Load reads back the saved judgment for a subject. A snapshot whose
// employee number, office number or company id no longer matches is treated
// as stale and never returned.
func (j *Judgment) Load(ctx context.Context, req LoadRequest) (*models.SavedJudgment, error) {
	if req.SubjectID == "" {
		return nil, ErrSubjectIDRequired
	}

	if req.EmployeeNumber == "" || req.OfficeNumber == "" || req.CompanyID == "" {
		return nil, NewValidationError("Load", "identity_required",
			"employee number, office number and company id are required", ErrInvalidRequest)
	}

	ctx, span := j.startSpan(ctx, "judgment.load",
		attribute.String(otelhelper.SubjectIDKey, req.SubjectID),
	)
	defer span.End()

	saved, err := j.persistence.JudgmentBySubject(ctx, req.SubjectID)
	if err != nil {
		if !persistence.IsJudgmentNotFound(err) {
			otelhelper.SetError(span, err)
		}

		return nil, err
	}

	if !saved.MatchesSubject(req.EmployeeNumber, req.OfficeNumber, req.CompanyID) {
		j.logger.Warn("Stale judgment hidden from caller",
			"subject_id", req.SubjectID, "saved_employee_number", saved.EmployeeNumber)

		return nil, ErrJudgmentStale
	}

	return saved, nil
}

func (j *Judgment) officeFor(ctx context.Context, officeNumber, companyID string) (*models.OfficeMaster, error) {
	offices, err := j.configs.MasterData(ctx)
	if err != nil {
		return nil, err
	}

	for _, office := range offices {
		if office.OfficeNumber == officeNumber && office.CompanyID == companyID {
			return office, nil
		}
	}

	return nil, ErrOfficeNotFound
}

func (j *Judgment) publish(ctx context.Context, key string, event eventbus.Event) {
	if j.eventBus == nil {
		return
	}

	err := j.eventBus.Publish(ctx, key, event)
	if err != nil {
		j.logger.Error("Failed to publish event", "event_type", string(event.GetType()), "error", err)
	}
}

func (j *Judgment) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if j.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}

	return otelhelper.StartSpan(ctx, j.tracer, name, attrs...)
}
