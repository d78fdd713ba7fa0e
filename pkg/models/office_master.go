package models

// OfficeMaster is the master-data record for an insured office. Its
// identifiers are stamped onto saved judgments at save time.
type OfficeMaster struct {
	ID           string `json:"id"            validate:"required"`
	Version      int    `json:"version"       validate:"required,min=1"`
	Active       bool   `json:"active"`
	Name         string `json:"name"`
	OfficeNumber string `json:"office_number" validate:"required"`
	OfficeRegion string `json:"office_region"`
	CompanyID    string `json:"company_id"    validate:"required"`
}
