package configstore

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchema is the shape every configuration document must satisfy
// before kind-specific decoding. Documents that fail are reported as
// ErrConfigurationInvalid rather than skipped.
var envelopeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":      map[string]any{"type": "string", "minLength": 1},
		"version": map[string]any{"type": "integer", "minimum": 1},
		"active":  map[string]any{"type": "boolean"},
	},
	"required": []string{"id", "version"},
}

var kindSchemas = map[Kind]map[string]any{
	KindQuestionFlow: {
		"type": "object",
		"properties": map[string]any{
			"initial_question_id": map[string]any{"type": "string", "minLength": 1},
			"questions":           map[string]any{"type": "array", "minItems": 1},
		},
		"required": []string{"initial_question_id", "questions"},
	},
	KindJudgmentRules: {
		"type": "object",
		"properties": map[string]any{
			"employment_type": map[string]any{"type": "string", "minLength": 1},
			"rules":           map[string]any{"type": "array"},
		},
		"required": []string{"employment_type", "rules"},
	},
	KindReasonTemplates: {
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"text"},
	},
	KindMasterData: {
		"type": "object",
		"properties": map[string]any{
			"office_number": map[string]any{"type": "string", "minLength": 1},
			"company_id":    map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"office_number", "company_id"},
	},
	KindValidationRules: {
		"type": "object",
		"properties": map[string]any{
			"field_id": map[string]any{"type": "string", "minLength": 1},
			"rule":     map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"field_id", "rule"},
	},
	KindCalculationRules: {
		"type": "object",
		"properties": map[string]any{
			"name":       map[string]any{"type": "string", "minLength": 1},
			"expression": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"name", "expression"},
	},
}

// ValidateDocument checks a raw decoded document against the envelope schema
// and the kind-specific schema.
func ValidateDocument(kind Kind, document map[string]any) error {
	if err := validateAgainst(envelopeSchema, document); err != nil {
		return NewConfigError("Validate", kind, fmt.Errorf("%w: %s", ErrConfigurationInvalid, err))
	}

	schema, ok := kindSchemas[kind]
	if !ok {
		return NewConfigError("Validate", kind, fmt.Errorf("%w: unknown kind", ErrConfigurationInvalid))
	}

	if err := validateAgainst(schema, document); err != nil {
		return NewConfigError("Validate", kind, fmt.Errorf("%w: %s", ErrConfigurationInvalid, err))
	}

	return nil
}

func validateAgainst(schema, document map[string]any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(document))
	if err != nil {
		return err
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(problems, "; "))
	}

	return nil
}
