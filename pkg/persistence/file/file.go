// Package file provides file-based persistence for saved judgments. Each
// judgment lives in one JSON file named after its subject id.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/persistence"
)

const judgmentsDir = "judgments"

// Persistence implements the persistence.Persistence interface using the
// file system.
type Persistence struct {
	root string
}

// NewPersistence creates a file-based judgment store rooted at the given
// directory.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. Nothing to release for files.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// SaveJudgment overwrites the stored judgment for the subject.
func (p *Persistence) SaveJudgment(ctx context.Context, judgment *models.SavedJudgment) error {
	dir := filepath.Join(p.root, judgmentsDir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistence.NewJudgmentStoreError("Save", judgment.SubjectID, err)
	}

	data, err := json.MarshalIndent(judgment, "", "  ")
	if err != nil {
		return persistence.NewJudgmentStoreError("Save", judgment.SubjectID, err)
	}

	if err := os.WriteFile(p.judgmentPath(judgment.SubjectID), data, 0o644); err != nil {
		return persistence.NewJudgmentStoreError("Save", judgment.SubjectID, err)
	}

	return nil
}

// JudgmentBySubject loads the stored judgment for the subject.
func (p *Persistence) JudgmentBySubject(ctx context.Context, subjectID string) (*models.SavedJudgment, error) {
	data, err := os.ReadFile(p.judgmentPath(subjectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewJudgmentStoreError("Load", subjectID, persistence.ErrJudgmentNotFound)
		}

		return nil, persistence.NewJudgmentStoreError("Load", subjectID, err)
	}

	var judgment models.SavedJudgment
	if err := json.Unmarshal(data, &judgment); err != nil {
		return nil, persistence.NewJudgmentStoreError("Load", subjectID,
			fmt.Errorf("corrupt judgment document: %w", err))
	}

	return &judgment, nil
}

// judgmentPath escapes the subject id so it is always a safe file name.
func (p *Persistence) judgmentPath(subjectID string) string {
	return filepath.Join(p.root, judgmentsDir, url.PathEscape(subjectID)+".json")
}
