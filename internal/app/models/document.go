package models

import "time"

// ProcessType identifies which workflow a document type belongs to
type ProcessType string

const (
	ProcessCharterAssociation ProcessType = "CHARTER_ASSOCIATION"
	ProcessCharterProjectFund ProcessType = "CHARTER_PROJECT_FUND"
	ProcessDocumentAssociation ProcessType = "DOCUMENT_ASSOCIATION"
	ProcessDocumentUser        ProcessType = "DOCUMENT_USER"
	ProcessDocumentProject     ProcessType = "DOCUMENT_PROJECT"
	ProcessDocumentProjectReview ProcessType = "DOCUMENT_PROJECT_REVIEW"
	ProcessNone                ProcessType = "NO_PROCESS"
)

// UpdatableProcessTypes are the process types whose document definitions
// staff may still modify once created.
var UpdatableProcessTypes = []ProcessType{
	ProcessCharterAssociation,
	ProcessDocumentAssociation,
	ProcessDocumentUser,
	ProcessNone,
}

// Document is a document type definition. It may declare either a rolling
// expiration (DaysBeforeExpiration after validation) or a fixed annual one
// (ExpirationDay as "MM-DD"), never both.
type Document struct {
	ID                   int64       `json:"id" db:"id"`
	Name                 string      `json:"name" db:"name"`
	Acronym              string      `json:"acronym" db:"acronym"`
	ProcessType          ProcessType `json:"processType" db:"process_type"`
	IsMultiple           bool        `json:"isMultiple" db:"is_multiple"`
	IsRequiredInProcess  bool        `json:"isRequiredInProcess" db:"is_required_in_process"`
	DaysBeforeExpiration *int        `json:"daysBeforeExpiration,omitempty" db:"days_before_expiration"`
	ExpirationDay        *string     `json:"expirationDay,omitempty" db:"expiration_day"`
	MimeTypes            []string    `json:"mimeTypes" db:"mime_types"`
	InstitutionID        *int64      `json:"institutionId,omitempty" db:"institution_id"`
	FundID               *int64      `json:"fundId,omitempty" db:"fund_id"`
	PathTemplate         string      `json:"pathTemplate" db:"path_template"`
}

// AcceptsMime reports whether the given MIME type is in the accepted list.
func (d *Document) AcceptsMime(mime string) bool {
	for _, m := range d.MimeTypes {
		if m == mime {
			return true
		}
	}
	return false
}

// HasValidExpirationRule checks that at most one expiration policy is declared.
func (d *Document) HasValidExpirationRule() bool {
	return d.DaysBeforeExpiration == nil || d.ExpirationDay == nil
}

// IsUpdatable reports whether staff may modify this definition.
func (d *Document) IsUpdatable() bool {
	for _, p := range UpdatableProcessTypes {
		if d.ProcessType == p {
			return true
		}
	}
	return false
}

// DocumentUpload is an uploaded instance of a document type, bound to a
// user, an association or a project.
type DocumentUpload struct {
	ID            int64      `json:"id" db:"id"`
	DocumentID    int64      `json:"documentId" db:"document_id"`
	UserID        *int64     `json:"userId,omitempty" db:"user_id"`
	AssociationID *int64     `json:"associationId,omitempty" db:"association_id"`
	ProjectID     *int64     `json:"projectId,omitempty" db:"project_id"`
	Path          string     `json:"path" db:"path"`
	UploadDate    time.Time  `json:"uploadDate" db:"upload_date"`
	ValidatedDate *time.Time `json:"validatedDate,omitempty" db:"validated_date"`
	Comment       *string    `json:"comment,omitempty" db:"comment"`

	// Related entities
	Document *Document `json:"document,omitempty"`
}

// OwnerCount returns how many of the three owner references are set.
func (u *DocumentUpload) OwnerCount() int {
	count := 0
	if u.UserID != nil {
		count++
	}
	if u.AssociationID != nil {
		count++
	}
	if u.ProjectID != nil {
		count++
	}
	return count
}
