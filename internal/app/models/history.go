package models

import "time"

// HistoryAction enumerates the auditable state changes
type HistoryAction string

const (
	ActionAssociationCreated       HistoryAction = "ASSOCIATION_CREATED"
	ActionAssociationUpdated       HistoryAction = "ASSOCIATION_UPDATED"
	ActionAssociationDeleted       HistoryAction = "ASSOCIATION_DELETED"
	ActionAssociationCharterChanged HistoryAction = "ASSOCIATION_CHARTER_CHANGED"
	ActionAssociationUserCreated   HistoryAction = "ASSOCIATION_USER_CREATED"
	ActionAssociationUserUpdated   HistoryAction = "ASSOCIATION_USER_UPDATED"
	ActionAssociationUserDeleted   HistoryAction = "ASSOCIATION_USER_DELETED"
	ActionGroupLinkCreated         HistoryAction = "GROUP_LINK_CREATED"
	ActionGroupLinkDeleted         HistoryAction = "GROUP_LINK_DELETED"
	ActionDocumentUploadCreated    HistoryAction = "DOCUMENT_UPLOAD_CREATED"
	ActionDocumentUploadValidated  HistoryAction = "DOCUMENT_UPLOAD_VALIDATED"
	ActionDocumentUploadDeleted    HistoryAction = "DOCUMENT_UPLOAD_DELETED"
	ActionProjectCreated           HistoryAction = "PROJECT_CREATED"
	ActionProjectUpdated           HistoryAction = "PROJECT_UPDATED"
	ActionProjectStatusChanged     HistoryAction = "PROJECT_STATUS_CHANGED"
	ActionProjectDeleted           HistoryAction = "PROJECT_DELETED"
	ActionProjectSubmissionCreated HistoryAction = "PROJECT_SUBMISSION_CREATED"
	ActionProjectSubmissionUpdated HistoryAction = "PROJECT_SUBMISSION_UPDATED"
	ActionProjectSubmissionDeleted HistoryAction = "PROJECT_SUBMISSION_DELETED"
)

// History is an append-only audit row. Subject references are weak: the
// referenced entity may have been deleted since.
type History struct {
	ID                         int64         `json:"id" db:"id"`
	ActionTitle                HistoryAction `json:"actionTitle" db:"action_title"`
	ActionUserID               int64         `json:"actionUserId" db:"action_user_id"`
	CreationDate               time.Time     `json:"creationDate" db:"creation_date"`
	UserID                     *int64        `json:"userId,omitempty" db:"user_id"`
	AssociationID              *int64        `json:"associationId,omitempty" db:"association_id"`
	AssociationUserID          *int64        `json:"associationUserId,omitempty" db:"association_user_id"`
	GroupInstitutionFundUserID *int64        `json:"groupInstitutionFundUserId,omitempty" db:"group_institution_fund_user_id"`
	DocumentUploadID           *int64        `json:"documentUploadId,omitempty" db:"document_upload_id"`
	ProjectID                  *int64        `json:"projectId,omitempty" db:"project_id"`
}
