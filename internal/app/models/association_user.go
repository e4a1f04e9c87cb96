package models

import "time"

// AssociationUser is the membership edge between a user and an association.
// At most one president per association; the four officer flags are mutually
// exclusive for a given membership.
type AssociationUser struct {
	ID                 int64      `json:"id" db:"id"`
	UserID             int64      `json:"userId" db:"user_id"`
	AssociationID      int64      `json:"associationId" db:"association_id"`
	IsPresident        bool       `json:"isPresident" db:"is_president"`
	IsVicePresident    bool       `json:"isVicePresident" db:"is_vice_president"`
	IsSecretary        bool       `json:"isSecretary" db:"is_secretary"`
	IsTreasurer        bool       `json:"isTreasurer" db:"is_treasurer"`
	CanBePresidentFrom *time.Time `json:"canBePresidentFrom,omitempty" db:"can_be_president_from"`
	CanBePresidentTo   *time.Time `json:"canBePresidentTo,omitempty" db:"can_be_president_to"`
	IsValidatedByAdmin bool       `json:"isValidatedByAdmin" db:"is_validated_by_admin"`

	// Related entities
	User        *User        `json:"user,omitempty"`
	Association *Association `json:"association,omitempty"`
}

// OfficerFlagCount returns how many of the four officer flags are set.
func (m *AssociationUser) OfficerFlagCount() int {
	count := 0
	for _, flag := range []bool{m.IsPresident, m.IsVicePresident, m.IsSecretary, m.IsTreasurer} {
		if flag {
			count++
		}
	}
	return count
}

// IsOfficer reports whether the member holds any officer role.
func (m *AssociationUser) IsOfficer() bool {
	return m.OfficerFlagCount() > 0
}

// CanActAsPresident reports whether the member may act for the association on
// the given day, either as sitting president or within a delegation window.
func (m *AssociationUser) CanActAsPresident(today time.Time) bool {
	if m.IsPresident {
		return true
	}
	if m.CanBePresidentFrom == nil || m.CanBePresidentTo == nil {
		return false
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return !day.Before(*m.CanBePresidentFrom) && !day.After(*m.CanBePresidentTo)
}
