package models

// Institution represents a university or comparable administrative tenant
type Institution struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Acronym      string `json:"acronym" db:"acronym"`
	ContactEmail string `json:"contactEmail" db:"contact_email"`
}

// InstitutionComponent represents a sub-structure of an institution
// (a faculty, a school) an association can be attached to
type InstitutionComponent struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	InstitutionID int64  `json:"institutionId" db:"institution_id"`
}
