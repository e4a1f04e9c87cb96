package email

// TemplateID names a mail template persisted with the deployment.
type TemplateID string

const (
	TemplateAccountExpirationWarning  TemplateID = "ACCOUNT_EXPIRATION_WARNING"
	TemplateAccountDeleted            TemplateID = "ACCOUNT_DELETED"
	TemplatePasswordExpirationWarning TemplateID = "PASSWORD_EXPIRATION_WARNING"
	TemplatePasswordRotated           TemplateID = "PASSWORD_ROTATED"
	TemplateCharterExpirationWarning  TemplateID = "CHARTER_EXPIRATION_WARNING"
	TemplateCharterExpired            TemplateID = "CHARTER_EXPIRED"
	TemplateDocumentExpirationWarning TemplateID = "DOCUMENT_EXPIRATION_WARNING"
	TemplateDocumentExpired           TemplateID = "DOCUMENT_EXPIRED"
	TemplateReviewOverdue             TemplateID = "PROJECT_REVIEW_OVERDUE"
	TemplateGOAReminder               TemplateID = "GOA_REMINDER"
	TemplateProjectDecision           TemplateID = "PROJECT_DECISION"
	TemplateCharterDecision           TemplateID = "CHARTER_DECISION"
)

// templateVariables whitelists the placeholders each template may reference.
// Substituting an unknown variable is a programming error surfaced at send
// time rather than silently mailed out.
var templateVariables = map[TemplateID][]string{
	TemplateAccountExpirationWarning:  {"first_name", "last_name", "expiration_date", "site_url"},
	TemplateAccountDeleted:            {"first_name", "last_name", "site_url"},
	TemplatePasswordExpirationWarning: {"first_name", "last_name", "reset_url", "site_url"},
	TemplatePasswordRotated:           {"first_name", "last_name", "new_password", "site_url"},
	TemplateCharterExpirationWarning:  {"association_name", "expiration_date", "site_url"},
	TemplateCharterExpired:            {"association_name", "site_url"},
	TemplateDocumentExpirationWarning: {"document_name", "expiration_date", "site_url"},
	TemplateDocumentExpired:           {"document_name", "site_url"},
	TemplateReviewOverdue:             {"project_name", "planned_end_date", "site_url"},
	TemplateGOAReminder:               {"association_names", "site_url"},
	TemplateProjectDecision:           {"project_name", "decision", "site_url"},
	TemplateCharterDecision:           {"association_name", "decision", "site_url"},
}

// AllowedVariables returns the whitelist for a template.
func AllowedVariables(id TemplateID) []string {
	return templateVariables[id]
}
