package models

import "time"

// Commission represents a scheduled review session, possibly spanning several funds
type Commission struct {
	ID                 int64     `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	SubmissionDeadline time.Time `json:"submissionDeadline" db:"submission_deadline"`
	SessionDate        time.Time `json:"sessionDate" db:"session_date"`
	IsOpenToProjects   bool      `json:"isOpenToProjects" db:"is_open_to_projects"`

	// Related entities
	Funds []*Fund `json:"funds,omitempty"`
}

// CommissionFund identifies that a commission reviews applications for a fund.
// Unique on (commission_id, fund_id).
type CommissionFund struct {
	ID           int64 `json:"id" db:"id"`
	CommissionID int64 `json:"commissionId" db:"commission_id"`
	FundID       int64 `json:"fundId" db:"fund_id"`

	// Related entities
	Commission *Commission `json:"commission,omitempty"`
	Fund       *Fund       `json:"fund,omitempty"`
}

// AcceptsSubmissionsOn reports whether the commission still accepts project
// submissions on the given day. The deadline day itself is allowed.
func (c *Commission) AcceptsSubmissionsOn(today time.Time) bool {
	return !c.SubmissionDeadline.Before(truncateToDay(today))
}

// SessionHeldBefore reports whether the commission session already took
// place before the given day.
func (c *Commission) SessionHeldBefore(today time.Time) bool {
	return c.SessionDate.Before(truncateToDay(today))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
