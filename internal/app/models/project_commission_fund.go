package models

// ProjectCommissionFund is the submission of one project to one commission
// fund, carrying requested and awarded amounts plus the per-fund decision.
// IsValidatedByAdmin is a tri-state: nil means undecided.
type ProjectCommissionFund struct {
	ID                          int64  `json:"id" db:"id"`
	ProjectID                   int64  `json:"projectId" db:"project_id"`
	CommissionFundID            int64  `json:"commissionFundId" db:"commission_fund_id"`
	IsFirstEdition              bool   `json:"isFirstEdition" db:"is_first_edition"`
	AmountAskedPreviousEdition  int64  `json:"amountAskedPreviousEdition" db:"amount_asked_previous_edition"`
	AmountEarnedPreviousEdition int64  `json:"amountEarnedPreviousEdition" db:"amount_earned_previous_edition"`
	AmountAsked                 int64  `json:"amountAsked" db:"amount_asked"`
	AmountEarned                *int64 `json:"amountEarned,omitempty" db:"amount_earned"`
	IsValidatedByAdmin          *bool  `json:"isValidatedByAdmin,omitempty" db:"is_validated_by_admin"`
	LastNotificationFile        *string `json:"lastNotificationFile,omitempty" db:"last_notification_file"`

	// Related entities
	CommissionFund *CommissionFund `json:"commissionFund,omitempty"`
}

// ResolveProjectDecision inspects every submission of a project and returns
// the status the project should be promoted to, or false when at least one
// decision is still pending. All decisions true promotes to validated; all
// false rejects; a mixed outcome keeps the project in processing.
func ResolveProjectDecision(submissions []*ProjectCommissionFund) (ProjectStatus, bool) {
	if len(submissions) == 0 {
		return "", false
	}
	anyTrue, anyFalse := false, false
	for _, pcf := range submissions {
		if pcf.IsValidatedByAdmin == nil {
			return "", false
		}
		if *pcf.IsValidatedByAdmin {
			anyTrue = true
		} else {
			anyFalse = true
		}
	}
	switch {
	case anyTrue && !anyFalse:
		return ProjectValidated, true
	case anyFalse && !anyTrue:
		return ProjectRejected, true
	default:
		return ProjectProcessing, true
	}
}
