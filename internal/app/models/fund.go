package models

// Fund represents a financial envelope owned by an institution.
// IsSite flags funds reserved to site associations.
type Fund struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Acronym       string `json:"acronym" db:"acronym"`
	IsSite        bool   `json:"isSite" db:"is_site"`
	InstitutionID int64  `json:"institutionId" db:"institution_id"`

	// Related entities
	Institution *Institution `json:"institution,omitempty"`
}
