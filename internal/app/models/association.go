package models

import "time"

// CharterStatus tracks an association's charter through its document-gated lifecycle
type CharterStatus string

const (
	CharterNone       CharterStatus = "NO_CHARTER"
	CharterDraft      CharterStatus = "CHARTER_DRAFT"
	CharterProcessing CharterStatus = "CHARTER_PROCESSING"
	CharterValidated  CharterStatus = "CHARTER_VALIDATED"
	CharterRejected   CharterStatus = "CHARTER_REJECTED"
	CharterExpired    CharterStatus = "CHARTER_EXPIRED"
)

// ActivityField categorizes what an association does (culture, sports, ...)
type ActivityField struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Association represents a recognized student group, tenanted to an institution
type Association struct {
	ID                     int64         `json:"id" db:"id"`
	Name                   string        `json:"name" db:"name"`
	Acronym                string        `json:"acronym" db:"acronym"`
	InstitutionID          int64         `json:"institutionId" db:"institution_id"`
	InstitutionComponentID *int64        `json:"institutionComponentId,omitempty" db:"institution_component_id"`
	ActivityFieldID        int64         `json:"activityFieldId" db:"activity_field_id"`
	Email                  string        `json:"email" db:"email"`
	Address                string        `json:"address" db:"address"`
	Phone                  string        `json:"phone" db:"phone"`
	Website                string        `json:"website" db:"website"`
	SocialNetworks         []string      `json:"socialNetworks" db:"social_networks"`
	IsEnabled              bool          `json:"isEnabled" db:"is_enabled"`
	IsSite                 bool          `json:"isSite" db:"is_site"`
	IsPublic               bool          `json:"isPublic" db:"is_public"`
	CanSubmitProjects      bool          `json:"canSubmitProjects" db:"can_submit_projects"`
	AmountMembersAllowed   *int          `json:"amountMembersAllowed,omitempty" db:"amount_members_allowed"`
	CharterStatus          CharterStatus `json:"charterStatus" db:"charter_status"`
	CharterDate            *time.Time    `json:"charterDate,omitempty" db:"charter_date"`
	CreationDate           time.Time     `json:"creationDate" db:"creation_date"`
	EditionDate            time.Time     `json:"editionDate" db:"edition_date"`
	LastGOADate            *time.Time    `json:"lastGoaDate,omitempty" db:"last_goa_date"`

	// Related entities
	Institution *Institution `json:"institution,omitempty"`
}

// CanHoldMembers reports whether the association can take count members.
// A nil AmountMembersAllowed means unlimited.
func (a *Association) CanHoldMembers(count int) bool {
	if a.AmountMembersAllowed == nil {
		return true
	}
	return count <= *a.AmountMembersAllowed
}

// NormalizePublicFlag resets IsPublic when the enabled-and-site precondition
// no longer holds. Returns true when the flag was cleared.
func (a *Association) NormalizePublicFlag() bool {
	if a.IsPublic && !(a.IsEnabled && a.IsSite) {
		a.IsPublic = false
		return true
	}
	return false
}

// charterTransitions lists permissible charter status moves keyed by origin.
var charterTransitions = map[CharterStatus][]CharterStatus{
	CharterNone:       {CharterProcessing},
	CharterDraft:      {CharterProcessing},
	CharterProcessing: {CharterValidated, CharterRejected},
	CharterValidated:  {CharterExpired, CharterProcessing},
	CharterRejected:   {CharterProcessing},
	CharterExpired:    {CharterProcessing},
}

// CanTransitionCharter reports whether the charter may move to target.
func (a *Association) CanTransitionCharter(target CharterStatus) bool {
	for _, allowed := range charterTransitions[a.CharterStatus] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CharterDecisionStates are the states only managers may set.
func IsCharterDecision(s CharterStatus) bool {
	return s == CharterValidated || s == CharterRejected
}
