// Package file provides a file-based configuration store implementation.
// Each kind lives in its own subdirectory of JSON documents; the store
// serves the active document with the highest version per id.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hokensys/shinsa/pkg/configstore"
	"github.com/hokensys/shinsa/pkg/models"
)

var kindDirs = map[configstore.Kind]string{
	configstore.KindQuestionFlow:     "question_flows",
	configstore.KindJudgmentRules:    "judgment_rules",
	configstore.KindValidationRules:  "validation_rules",
	configstore.KindCalculationRules: "calculation_rules",
	configstore.KindReasonTemplates:  "reason_templates",
	configstore.KindMasterData:       "master_data",
}

// Store implements configstore.Store against a directory tree.
type Store struct {
	root string
}

// NewStore creates a file-based configuration store rooted at the given path.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to release for files.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// envelope carries the selection fields shared by every document kind.
type envelope struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Active  bool   `json:"active"`
}

// readKind loads, validates and version-selects the raw documents of a kind.
func (s *Store) readKind(kind configstore.Kind) ([][]byte, error) {
	dir := filepath.Join(s.root, kindDirs[kind])

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: %v", configstore.ErrConfigurationUnavailable, err)
	}

	latest := make(map[string][]byte)
	latestVersion := make(map[string]int)

	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", configstore.ErrConfigurationUnavailable, err)
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", configstore.ErrConfigurationInvalid, entry.Name(), err)
		}

		if err := configstore.ValidateDocument(kind, raw); err != nil {
			return nil, err
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", configstore.ErrConfigurationInvalid, entry.Name(), err)
		}

		if !env.Active {
			continue
		}

		if env.Version > latestVersion[env.ID] {
			latestVersion[env.ID] = env.Version
			latest[env.ID] = data
		}
	}

	documents := make([][]byte, 0, len(latest))
	for _, data := range latest {
		documents = append(documents, data)
	}

	return documents, nil
}

func decodeKind[T any](s *Store, kind configstore.Kind) ([]*T, error) {
	documents, err := s.readKind(kind)
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

func (s *Store) QuestionFlows(_ context.Context) ([]*models.QuestionFlowConfig, error) {
	return decodeKind[models.QuestionFlowConfig](s, configstore.KindQuestionFlow)
}

func (s *Store) JudgmentConfigs(_ context.Context) ([]*models.InsuranceJudgmentConfig, error) {
	return decodeKind[models.InsuranceJudgmentConfig](s, configstore.KindJudgmentRules)
}

func (s *Store) ValidationRules(_ context.Context) ([]*models.ValidationRule, error) {
	return decodeKind[models.ValidationRule](s, configstore.KindValidationRules)
}

func (s *Store) CalculationRules(_ context.Context) ([]*models.CalculationRule, error) {
	return decodeKind[models.CalculationRule](s, configstore.KindCalculationRules)
}

func (s *Store) ReasonTemplates(_ context.Context) ([]*models.ReasonTemplate, error) {
	return decodeKind[models.ReasonTemplate](s, configstore.KindReasonTemplates)
}

func (s *Store) MasterData(_ context.Context) ([]*models.OfficeMaster, error) {
	return decodeKind[models.OfficeMaster](s, configstore.KindMasterData)
}
