package auth

import (
	"time"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// Principal is the fully loaded authorization context for one request. It is
// assembled once per request from the user's group links and memberships and
// consulted by pure predicates, so permission decisions never hit the
// database twice.
type Principal struct {
	UserID                int64
	IsStaff               bool
	IsValidated           bool
	CanSubmitProjects     bool
	ManagedInstitutionIDs []int64
	ManagedFundIDs        []int64
	Memberships           []*models.AssociationUser
}

// ManagesInstitution reports whether the principal manages the institution.
func (p *Principal) ManagesInstitution(institutionID int64) bool {
	for _, id := range p.ManagedInstitutionIDs {
		if id == institutionID {
			return true
		}
	}
	return false
}

// ManagesFund reports whether the principal may decide for the fund.
func (p *Principal) ManagesFund(fundID int64) bool {
	for _, id := range p.ManagedFundIDs {
		if id == fundID {
			return true
		}
	}
	return false
}

// IsManager reports whether the principal carries any manager scope.
func (p *Principal) IsManager() bool {
	return p.IsStaff && (len(p.ManagedInstitutionIDs) > 0 || len(p.ManagedFundIDs) > 0)
}

// MembershipIn returns the principal's membership in the association, nil
// when not a member.
func (p *Principal) MembershipIn(associationID int64) *models.AssociationUser {
	for _, m := range p.Memberships {
		if m.AssociationID == associationID {
			return m
		}
	}
	return nil
}

// IsMemberOf reports whether the principal belongs to the association.
func (p *Principal) IsMemberOf(associationID int64) bool {
	return p.MembershipIn(associationID) != nil
}

// CanActForAssociation reports whether the principal may act in the
// association's name on the given day: sitting president or an officer
// within an active delegation window.
func (p *Principal) CanActForAssociation(associationID int64, today time.Time) bool {
	m := p.MembershipIn(associationID)
	if m == nil {
		return false
	}
	return m.CanActAsPresident(today)
}

// ManagesAnyFund reports whether the principal manages one of the funds.
func (p *Principal) ManagesAnyFund(fundIDs []int64) bool {
	for _, id := range fundIDs {
		if p.ManagesFund(id) {
			return true
		}
	}
	return false
}

// CanAccessProject reports whether the principal may read the project: its
// owner, a member of the owning association, a manager of that association's
// institution, or a manager of a fund the project applied to.
func (p *Principal) CanAccessProject(project *models.Project, association *models.Association, fundIDs []int64) bool {
	if project.UserID != nil && *project.UserID == p.UserID {
		return true
	}
	if project.AssociationID != nil {
		if p.IsMemberOf(*project.AssociationID) {
			return true
		}
		if association != nil && p.ManagesInstitution(association.InstitutionID) {
			return true
		}
	}
	return p.ManagesAnyFund(fundIDs)
}

// CanEditProject reports whether the principal may change bearer fields:
// the owning user, or a president or delegate of the owning association.
func (p *Principal) CanEditProject(project *models.Project, today time.Time) bool {
	if project.UserID != nil && *project.UserID == p.UserID {
		return true
	}
	if project.AssociationID != nil && p.CanActForAssociation(*project.AssociationID, today) {
		return true
	}
	return false
}

// ManagesProject reports whether the principal manages the project: the
// owning association's institution, or a fund the project applied to.
func (p *Principal) ManagesProject(project *models.Project, association *models.Association, fundIDs []int64) bool {
	if project.AssociationID != nil && association != nil && p.ManagesInstitution(association.InstitutionID) {
		return true
	}
	return p.ManagesAnyFund(fundIDs)
}
