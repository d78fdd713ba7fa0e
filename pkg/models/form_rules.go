package models

// ValidationRule is a form-field validation document. The eligibility engine
// only caches and structurally checks these; form screens consume them.
type ValidationRule struct {
	ID      string `json:"id"      validate:"required"`
	Version int    `json:"version" validate:"required,min=1"`
	Active  bool   `json:"active"`
	FieldID string `json:"field_id" validate:"required"`
	Rule    string `json:"rule"     validate:"required"`
	Message string `json:"message"`
}

// CalculationRule is a premium/benefit calculation document. Cached alongside
// the judgment kinds; consumed by the reporting side of the application.
type CalculationRule struct {
	ID         string             `json:"id"      validate:"required"`
	Version    int                `json:"version" validate:"required,min=1"`
	Active     bool               `json:"active"`
	Name       string             `json:"name"    validate:"required"`
	Expression string             `json:"expression" validate:"required"`
	Constants  map[string]float64 `json:"constants,omitempty"`
}
