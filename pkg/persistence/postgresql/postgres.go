// Package postgresql provides PostgreSQL persistence for saved judgments.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/persistence/sqlbase"

	// PostgreSQL driver registration.
	_ "github.com/lib/pq"
)

// Persistence implements the judgment store for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	judgmentRepo *JudgmentRepository
}

// NewPersistence creates a new PostgreSQL judgment store and runs pending
// schema migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:           database,
		logger:       logger,
		judgmentRepo: NewJudgmentRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// SaveJudgment overwrites the stored judgment for the subject.
func (p *Persistence) SaveJudgment(ctx context.Context, judgment *models.SavedJudgment) error {
	return p.judgmentRepo.Save(ctx, judgment)
}

// JudgmentBySubject loads the stored judgment for the subject.
func (p *Persistence) JudgmentBySubject(ctx context.Context, subjectID string) (*models.SavedJudgment, error) {
	return p.judgmentRepo.GetBySubject(ctx, subjectID)
}
