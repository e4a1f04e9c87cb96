package models

import "time"

// User represents an authenticated principal, either a student or a staff
// manager depending on group membership.
type User struct {
	ID                     int64      `json:"id" db:"id"`
	Email                  string     `json:"email" db:"email"`
	FirstName              string     `json:"firstName" db:"first_name"`
	LastName               string     `json:"lastName" db:"last_name"`
	PasswordHash           string     `json:"-" db:"password_hash"`
	IsValidatedByAdmin     bool       `json:"isValidatedByAdmin" db:"is_validated_by_admin"`
	IsStaff                bool       `json:"isStaff" db:"is_staff"`
	IsCas                  bool       `json:"isCas" db:"is_cas"`
	DateJoined             time.Time  `json:"dateJoined" db:"date_joined"`
	LastLogin              *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	PasswordLastChangeDate *time.Time `json:"passwordLastChangeDate,omitempty" db:"password_last_change_date"`
}

// Group names carry configuration flags describing what members may do.
type Group struct {
	ID                    int64  `json:"id" db:"id"`
	Name                  string `json:"name" db:"name"`
	RegistrationAllowed   bool   `json:"registrationAllowed" db:"registration_allowed"`
	AssociationsPossible  bool   `json:"associationsPossible" db:"associations_possible"`
	InstitutionIDPossible bool   `json:"institutionIdPossible" db:"institution_id_possible"`
	FundIDPossible        bool   `json:"fundIdPossible" db:"fund_id_possible"`
}

// IsStaffGroup reports whether the group carries manager scoping dimensions.
func (g *Group) IsStaffGroup() bool {
	return g.InstitutionIDPossible || g.FundIDPossible
}

// GroupInstitutionFundUser scopes a user's group membership to an optional
// institution and/or fund dimension.
type GroupInstitutionFundUser struct {
	ID            int64  `json:"id" db:"id"`
	UserID        int64  `json:"userId" db:"user_id"`
	GroupID       int64  `json:"groupId" db:"group_id"`
	InstitutionID *int64 `json:"institutionId,omitempty" db:"institution_id"`
	FundID        *int64 `json:"fundId,omitempty" db:"fund_id"`

	// Related entities
	Group *Group `json:"group,omitempty"`
}
