package models

// ReasonTemplate is a parameterized justification string. Placeholders use
// the {name} form and are substituted from a parameter bag at render time.
type ReasonTemplate struct {
	ID      string `json:"id"      validate:"required"`
	Version int    `json:"version" validate:"required,min=1"`
	Active  bool   `json:"active"`
	Text    string `json:"text"    validate:"required"`
}
