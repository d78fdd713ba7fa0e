// Package configstore provides access to versioned rule and question-flow
// configuration documents, with a time-bounded read-through cache.
package configstore

import (
	"context"

	"github.com/hokensys/shinsa/pkg/models"
)

// Kind identifies one independently cached configuration collection.
type Kind string

const (
	KindQuestionFlow     Kind = "question_flow"
	KindJudgmentRules    Kind = "judgment_rules"
	KindValidationRules  Kind = "validation_rules"
	KindCalculationRules Kind = "calculation_rules"
	KindReasonTemplates  Kind = "reason_templates"
	KindMasterData       Kind = "master_data"
)

// Store is the configuration-store client contract. Each method returns the
// active, most-recent-version documents of its collection. Implementations
// own document selection; callers never see inactive or superseded versions.
type Store interface {
	QuestionFlows(ctx context.Context) ([]*models.QuestionFlowConfig, error)
	JudgmentConfigs(ctx context.Context) ([]*models.InsuranceJudgmentConfig, error)
	ValidationRules(ctx context.Context) ([]*models.ValidationRule, error)
	CalculationRules(ctx context.Context) ([]*models.CalculationRule, error)
	ReasonTemplates(ctx context.Context) ([]*models.ReasonTemplate, error)
	MasterData(ctx context.Context) ([]*models.OfficeMaster, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
