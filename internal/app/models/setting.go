package models

import "encoding/json"

// Setting is a runtime-editable scalar persisted as a JSON document.
// Parameters always carries a "value" key validated against the setting's
// schema at write time.
type Setting struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Parameters json.RawMessage `json:"parameters" db:"parameters"`
}

// Setting names used by the temporal jobs and the mailer.
const (
	SettingHistoryRetentionDays    = "CRON_DAYS_BEFORE_HISTORY_EXPIRATION"
	SettingAccountExpirationWarn   = "CRON_DAYS_BEFORE_ACCOUNT_EXPIRATION_WARNING"
	SettingPasswordExpirationWarn  = "CRON_DAYS_BEFORE_PASSWORD_EXPIRATION_WARNING"
	SettingDocumentExpirationWarn  = "CRON_DAYS_BEFORE_DOCUMENT_EXPIRATION_WARNING"
	SettingReviewOverdueDays       = "CRON_DAYS_BEFORE_REVIEW_OVERDUE_NOTIFICATION"
	SettingProjectDeletionYears    = "AMOUNT_YEARS_BEFORE_PROJECT_DELETION"
)
