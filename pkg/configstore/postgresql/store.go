// Package postgresql provides a PostgreSQL-backed configuration store. All
// document kinds share one table; the store serves the active document with
// the highest version per id, exactly like the file store does for a
// directory tree.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/persistence/sqlbase"

	// PostgreSQL driver registration.
	_ "github.com/lib/pq"
)

// Store implements configstore.Store against a configuration_documents table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore connects to PostgreSQL and runs pending configuration-schema
// migrations. The version counter lives in its own table so the store can
// share a database with the judgment store.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManagerFor(logger, database, "configstore_schema_migrations", migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: database, logger: logger}, nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// SaveDocument inserts or replaces one versioned configuration document.
func (s *Store) SaveDocument(ctx context.Context, kind configstore.Kind, id string, version int, active bool, document []byte) error {
	query := `
		INSERT INTO configuration_documents (kind, id, version, active, document, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (kind, id, version)
		DO UPDATE SET active = EXCLUDED.active, document = EXCLUDED.document, updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, string(kind), id, version, active, document)
	if err != nil {
		return fmt.Errorf("%w: %v", configstore.ErrConfigurationUnavailable, err)
	}

	return nil
}

// readKind loads, validates and version-selects the raw documents of a kind.
func (s *Store) readKind(ctx context.Context, kind configstore.Kind) ([][]byte, error) {
	query := `
		SELECT DISTINCT ON (id) document
		FROM configuration_documents
		WHERE kind = $1 AND active
		ORDER BY id, version DESC
	`

	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", configstore.ErrConfigurationUnavailable, err)
	}
	defer rows.Close()

	var documents [][]byte

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%w: %v", configstore.ErrConfigurationUnavailable, err)
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", configstore.ErrConfigurationInvalid, err)
		}

		if err := configstore.ValidateDocument(kind, raw); err != nil {
			return nil, err
		}

		documents = append(documents, data)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", configstore.ErrConfigurationUnavailable, err)
	}

	return documents, nil
}

func decodeKind[T any](ctx context.Context, s *Store, kind configstore.Kind) ([]*T, error) {
	documents, err := s.readKind(ctx, kind)
	if err != nil {
		return nil, err
	}

	decoded := make([]*T, 0, len(documents))

	for _, data := range documents {
		value := new(T)
		if err := json.Unmarshal(data, value); err != nil {
			return nil, fmt.Errorf("%w: %v", configstore.ErrConfigurationInvalid, err)
		}

		decoded = append(decoded, value)
	}

	return decoded, nil
}

func (s *Store) QuestionFlows(ctx context.Context) ([]*models.QuestionFlowConfig, error) {
	return decodeKind[models.QuestionFlowConfig](ctx, s, configstore.KindQuestionFlow)
}

func (s *Store) JudgmentConfigs(ctx context.Context) ([]*models.InsuranceJudgmentConfig, error) {
	return decodeKind[models.InsuranceJudgmentConfig](ctx, s, configstore.KindJudgmentRules)
}

func (s *Store) ValidationRules(ctx context.Context) ([]*models.ValidationRule, error) {
	return decodeKind[models.ValidationRule](ctx, s, configstore.KindValidationRules)
}

func (s *Store) CalculationRules(ctx context.Context) ([]*models.CalculationRule, error) {
	return decodeKind[models.CalculationRule](ctx, s, configstore.KindCalculationRules)
}

func (s *Store) ReasonTemplates(ctx context.Context) ([]*models.ReasonTemplate, error) {
	return decodeKind[models.ReasonTemplate](ctx, s, configstore.KindReasonTemplates)
}

func (s *Store) MasterData(ctx context.Context) ([]*models.OfficeMaster, error) {
	return decodeKind[models.OfficeMaster](ctx, s, configstore.KindMasterData)
}
