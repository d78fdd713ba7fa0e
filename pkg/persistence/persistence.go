// Package persistence provides the storage abstraction for saved judgments.
package persistence

import (
	"context"

	"github.com/hokensys/shinsa/pkg/models"
)

// Persistence is the judgment-store contract: point read and write of one
// saved judgment per subject. Writes are unconditional overwrites (last
// write wins); the engine never deletes records.
type Persistence interface {
	SaveJudgment(ctx context.Context, judgment *models.SavedJudgment) error
	JudgmentBySubject(ctx context.Context, subjectID string) (*models.SavedJudgment, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
