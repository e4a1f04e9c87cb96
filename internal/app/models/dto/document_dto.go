package dto

import (
	"time"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// --- Request DTOs ---

// CreateDocumentRequest represents document type creation data
type CreateDocumentRequest struct {
	Name                 string   `json:"name" binding:"required"`
	Acronym              string   `json:"acronym"`
	ProcessType          string   `json:"processType" binding:"required"`
	IsMultiple           bool     `json:"isMultiple"`
	IsRequiredInProcess  bool     `json:"isRequiredInProcess"`
	DaysBeforeExpiration *int     `json:"daysBeforeExpiration"`
	ExpirationDay        *string  `json:"expirationDay"`
	MimeTypes            []string `json:"mimeTypes" binding:"required,min=1"`
	InstitutionID        *int64   `json:"institutionId"`
	FundID               *int64   `json:"fundId"`
}

// UpdateDocumentRequest represents a partial document type update
type UpdateDocumentRequest struct {
	Name                 *string  `json:"name"`
	Acronym              *string  `json:"acronym"`
	IsMultiple           *bool    `json:"isMultiple"`
	IsRequiredInProcess  *bool    `json:"isRequiredInProcess"`
	DaysBeforeExpiration *int     `json:"daysBeforeExpiration"`
	ExpirationDay        *string  `json:"expirationDay"`
	MimeTypes            []string `json:"mimeTypes"`
}

// DocumentFilterRequest represents document type list filters
type DocumentFilterRequest struct {
	ProcessTypes string `form:"processTypes"`
	FundID       *int64 `form:"fund"`
}

// CreateDocumentUploadRequest carries the metadata half of a multipart
// upload; the file part is handled separately.
type CreateDocumentUploadRequest struct {
	DocumentID    int64  `form:"document" binding:"required,gt=0"`
	UserID        *int64 `form:"user"`
	AssociationID *int64 `form:"association"`
	ProjectID     *int64 `form:"project"`
	Comment       string `form:"comment"`
}

// PatchDocumentUploadRequest validates or comments an upload
type PatchDocumentUploadRequest struct {
	Validate *bool   `json:"validate"`
	Comment  *string `json:"comment"`
}

// DocumentUploadFilterRequest represents upload list filters
type DocumentUploadFilterRequest struct {
	UserID        *int64 `form:"user"`
	AssociationID *int64 `form:"association"`
	ProjectID     *int64 `form:"project"`
	ProcessTypes  string `form:"processTypes"`
}

// --- Response DTOs ---

// DocumentResponse represents a document type definition
type DocumentResponse struct {
	ID                   int64    `json:"id"`
	Name                 string   `json:"name"`
	Acronym              string   `json:"acronym,omitempty"`
	ProcessType          string   `json:"processType"`
	IsMultiple           bool     `json:"isMultiple"`
	IsRequiredInProcess  bool     `json:"isRequiredInProcess"`
	DaysBeforeExpiration *int     `json:"daysBeforeExpiration,omitempty"`
	ExpirationDay        *string  `json:"expirationDay,omitempty"`
	MimeTypes            []string `json:"mimeTypes"`
	InstitutionID        *int64   `json:"institutionId,omitempty"`
	FundID               *int64   `json:"fundId,omitempty"`
}

// FromDocument converts a document type model to its response shape
func FromDocument(d *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:                   d.ID,
		Name:                 d.Name,
		Acronym:              d.Acronym,
		ProcessType:          string(d.ProcessType),
		IsMultiple:           d.IsMultiple,
		IsRequiredInProcess:  d.IsRequiredInProcess,
		DaysBeforeExpiration: d.DaysBeforeExpiration,
		ExpirationDay:        d.ExpirationDay,
		MimeTypes:            d.MimeTypes,
		InstitutionID:        d.InstitutionID,
		FundID:               d.FundID,
	}
}

// DocumentUploadResponse represents an uploaded document instance
type DocumentUploadResponse struct {
	ID            int64      `json:"id"`
	DocumentID    int64      `json:"documentId"`
	UserID        *int64     `json:"userId,omitempty"`
	AssociationID *int64     `json:"associationId,omitempty"`
	ProjectID     *int64     `json:"projectId,omitempty"`
	UploadDate    time.Time  `json:"uploadDate"`
	ValidatedDate *time.Time `json:"validatedDate,omitempty"`
	Comment       *string    `json:"comment,omitempty"`
	Name          string     `json:"name,omitempty"`
}

// FromDocumentUpload converts an upload model to its response shape.
// The storage path stays internal; clients fetch content by id.
func FromDocumentUpload(u *models.DocumentUpload) DocumentUploadResponse {
	resp := DocumentUploadResponse{
		ID:            u.ID,
		DocumentID:    u.DocumentID,
		UserID:        u.UserID,
		AssociationID: u.AssociationID,
		ProjectID:     u.ProjectID,
		UploadDate:    u.UploadDate,
		ValidatedDate: u.ValidatedDate,
		Comment:       u.Comment,
	}
	if u.Document != nil {
		resp.Name = u.Document.Name
	}
	return resp
}
