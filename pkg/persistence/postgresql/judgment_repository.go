package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/persistence"
)

// JudgmentRepository handles saved-judgment database operations.
type JudgmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewJudgmentRepository creates a new judgment repository.
func NewJudgmentRepository(db *sql.DB, logger *slog.Logger) *JudgmentRepository {
	return &JudgmentRepository{db: db, logger: logger}
}

// Save upserts the judgment row for the subject. Last write wins; there is
// no optimistic concurrency on saved judgments.
func (r *JudgmentRepository) Save(ctx context.Context, judgment *models.SavedJudgment) error {
	answers, err := json.Marshal(judgment.Answers)
	if err != nil {
		return persistence.NewJudgmentStoreError("Save", judgment.SubjectID, err)
	}

	eligibility, err := json.Marshal(judgment.Eligibility)
	if err != nil {
		return persistence.NewJudgmentStoreError("Save", judgment.SubjectID, err)
	}

	query := `
		INSERT INTO saved_judgments (
			subject_id
		  , employee_name
		  , employee_number
		  , birth_date
		  , age
		  , employment_type
		  , company_id
		  , office_number
		  , office_region
		  , answers
		  , eligibility
		  , saved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (subject_id) DO UPDATE SET
			employee_name = EXCLUDED.employee_name
		  , employee_number = EXCLUDED.employee_number
		  , birth_date = EXCLUDED.birth_date
		  , age = EXCLUDED.age
		  , employment_type = EXCLUDED.employment_type
		  , company_id = EXCLUDED.company_id
		  , office_number = EXCLUDED.office_number
		  , office_region = EXCLUDED.office_region
		  , answers = EXCLUDED.answers
		  , eligibility = EXCLUDED.eligibility
		  , saved_at = EXCLUDED.saved_at
	`

	_, err = r.db.ExecContext(ctx, query,
		judgment.SubjectID,
		judgment.EmployeeName,
		judgment.EmployeeNumber,
		judgment.BirthDate,
		judgment.Age,
		judgment.EmploymentType,
		judgment.CompanyID,
		judgment.OfficeNumber,
		judgment.OfficeRegion,
		answers,
		eligibility,
		judgment.SavedAt,
	)
	if err != nil {
		return persistence.NewJudgmentStoreError("Save", judgment.SubjectID,
			fmt.Errorf("failed to upsert judgment: %w", err))
	}

	return nil
}

// GetBySubject loads the judgment row for the subject.
func (r *JudgmentRepository) GetBySubject(ctx context.Context, subjectID string) (*models.SavedJudgment, error) {
	query := `
		SELECT
			subject_id
		  , employee_name
		  , employee_number
		  , birth_date
		  , age
		  , employment_type
		  , company_id
		  , office_number
		  , office_region
		  , answers
		  , eligibility
		  , saved_at
		FROM saved_judgments
		WHERE subject_id = $1
	`

	var (
		judgment    models.SavedJudgment
		answers     []byte
		eligibility []byte
	)

	err := r.db.QueryRowContext(ctx, query, subjectID).Scan(
		&judgment.SubjectID,
		&judgment.EmployeeName,
		&judgment.EmployeeNumber,
		&judgment.BirthDate,
		&judgment.Age,
		&judgment.EmploymentType,
		&judgment.CompanyID,
		&judgment.OfficeNumber,
		&judgment.OfficeRegion,
		&answers,
		&eligibility,
		&judgment.SavedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewJudgmentStoreError("Load", subjectID, persistence.ErrJudgmentNotFound)
	}

	if err != nil {
		return nil, persistence.NewJudgmentStoreError("Load", subjectID,
			fmt.Errorf("failed to query judgment: %w", err))
	}

	if err := json.Unmarshal(answers, &judgment.Answers); err != nil {
		return nil, persistence.NewJudgmentStoreError("Load", subjectID,
			fmt.Errorf("corrupt answers column: %w", err))
	}

	if err := json.Unmarshal(eligibility, &judgment.Eligibility); err != nil {
		return nil, persistence.NewJudgmentStoreError("Load", subjectID,
			fmt.Errorf("corrupt eligibility column: %w", err))
	}

	return &judgment, nil
}
