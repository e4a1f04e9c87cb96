package dto

import (
	"time"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// --- Request DTOs ---

// CreateAssociationRequest represents association creation data
type CreateAssociationRequest struct {
	Name                   string `json:"name" binding:"required"`
	Acronym                string `json:"acronym"`
	InstitutionID          int64  `json:"institutionId" binding:"required,gt=0"`
	InstitutionComponentID *int64 `json:"institutionComponentId"`
	ActivityFieldID        int64  `json:"activityFieldId" binding:"required,gt=0"`
	Email                  string `json:"email" binding:"omitempty,email"`
	IsSite                 bool   `json:"isSite"`
}

// UpdateAssociationRequest represents a partial association update.
// Pointer fields distinguish "leave unchanged" from explicit values.
type UpdateAssociationRequest struct {
	Name                   *string    `json:"name"`
	Acronym                *string    `json:"acronym"`
	InstitutionID          *int64     `json:"institutionId"`
	InstitutionComponentID *int64     `json:"institutionComponentId"`
	ActivityFieldID        *int64     `json:"activityFieldId"`
	Email                  *string    `json:"email" binding:"omitempty,email"`
	Address                *string    `json:"address"`
	Phone                  *string    `json:"phone"`
	Website                *string    `json:"website"`
	SocialNetworks         []string   `json:"socialNetworks"`
	IsEnabled              *bool      `json:"isEnabled"`
	IsSite                 *bool      `json:"isSite"`
	IsPublic               *bool      `json:"isPublic"`
	CanSubmitProjects      *bool      `json:"canSubmitProjects"`
	AmountMembersAllowed   *int       `json:"amountMembersAllowed"`
	LastGOADate            *time.Time `json:"lastGoaDate"`
}

// UpdateCharterStatusRequest asks for a charter status transition
type UpdateCharterStatusRequest struct {
	CharterStatus string `json:"charterStatus" binding:"required"`
}

// AssociationFilterRequest represents association list filter parameters
type AssociationFilterRequest struct {
	Name            string `form:"name"`
	Acronym         string `form:"acronym"`
	InstitutionIDs  string `form:"institutions"`
	ActivityFieldID *int64 `form:"activityField"`
	IsEnabled       *bool  `form:"isEnabled"`
	IsPublic        *bool  `form:"isPublic"`
	IsSite          *bool  `form:"isSite"`
	UserID          *int64 `form:"userId"`
	Page            int    `form:"page,default=1" binding:"min=1"`
	PageSize        int    `form:"pageSize,default=20" binding:"min=1,max=100"`
}

// --- Response DTOs ---

// AssociationResponse represents association information
type AssociationResponse struct {
	ID                     int64      `json:"id"`
	Name                   string     `json:"name"`
	Acronym                string     `json:"acronym"`
	InstitutionID          int64      `json:"institutionId"`
	InstitutionComponentID *int64     `json:"institutionComponentId,omitempty"`
	ActivityFieldID        int64      `json:"activityFieldId"`
	Email                  string     `json:"email,omitempty"`
	Address                string     `json:"address,omitempty"`
	Phone                  string     `json:"phone,omitempty"`
	Website                string     `json:"website,omitempty"`
	SocialNetworks         []string   `json:"socialNetworks,omitempty"`
	IsEnabled              bool       `json:"isEnabled"`
	IsSite                 bool       `json:"isSite"`
	IsPublic               bool       `json:"isPublic"`
	CanSubmitProjects      bool       `json:"canSubmitProjects"`
	AmountMembersAllowed   *int       `json:"amountMembersAllowed,omitempty"`
	CharterStatus          string     `json:"charterStatus"`
	CharterDate            *time.Time `json:"charterDate,omitempty"`
	CreationDate           time.Time  `json:"creationDate"`
	EditionDate            time.Time  `json:"editionDate"`
	LastGOADate            *time.Time `json:"lastGoaDate,omitempty"`

	Institution *InstitutionResponse `json:"institution,omitempty"`
}

// FromAssociation converts a model to its response shape
func FromAssociation(a *models.Association) AssociationResponse {
	if a == nil {
		return AssociationResponse{}
	}
	resp := AssociationResponse{
		ID:                     a.ID,
		Name:                   a.Name,
		Acronym:                a.Acronym,
		InstitutionID:          a.InstitutionID,
		InstitutionComponentID: a.InstitutionComponentID,
		ActivityFieldID:        a.ActivityFieldID,
		Email:                  a.Email,
		Address:                a.Address,
		Phone:                  a.Phone,
		Website:                a.Website,
		SocialNetworks:         a.SocialNetworks,
		IsEnabled:              a.IsEnabled,
		IsSite:                 a.IsSite,
		IsPublic:               a.IsPublic,
		CanSubmitProjects:      a.CanSubmitProjects,
		AmountMembersAllowed:   a.AmountMembersAllowed,
		CharterStatus:          string(a.CharterStatus),
		CharterDate:            a.CharterDate,
		CreationDate:           a.CreationDate,
		EditionDate:            a.EditionDate,
		LastGOADate:            a.LastGOADate,
	}
	if a.Institution != nil {
		inst := FromInstitution(a.Institution)
		resp.Institution = &inst
	}
	return resp
}

// PublicAssociationResponse is the restricted shape served to anonymous
// callers: directory fields only.
type PublicAssociationResponse struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Acronym         string   `json:"acronym"`
	InstitutionID   int64    `json:"institutionId"`
	ActivityFieldID int64    `json:"activityFieldId"`
	Email           string   `json:"email,omitempty"`
	Website         string   `json:"website,omitempty"`
	SocialNetworks  []string `json:"socialNetworks,omitempty"`
}

// FromAssociationPublic converts a model to its anonymous-facing shape
func FromAssociationPublic(a *models.Association) PublicAssociationResponse {
	return PublicAssociationResponse{
		ID:              a.ID,
		Name:            a.Name,
		Acronym:         a.Acronym,
		InstitutionID:   a.InstitutionID,
		ActivityFieldID: a.ActivityFieldID,
		Email:           a.Email,
		Website:         a.Website,
		SocialNetworks:  a.SocialNetworks,
	}
}

// AssociationListResponse represents a list of associations
type AssociationListResponse struct {
	Associations []AssociationResponse `json:"associations"`
	PaginationInfo
}

// --- Membership DTOs ---

// CreateAssociationUserRequest asks to register a membership
type CreateAssociationUserRequest struct {
	UserID        int64 `json:"userId" binding:"required,gt=0"`
	AssociationID int64 `json:"associationId" binding:"required,gt=0"`
	IsPresident   bool  `json:"isPresident"`
}

// UpdateAssociationUserRequest updates officer roles or delegation
type UpdateAssociationUserRequest struct {
	IsPresident        *bool      `json:"isPresident"`
	IsVicePresident    *bool      `json:"isVicePresident"`
	IsSecretary        *bool      `json:"isSecretary"`
	IsTreasurer        *bool      `json:"isTreasurer"`
	CanBePresidentFrom *time.Time `json:"canBePresidentFrom"`
	CanBePresidentTo   *time.Time `json:"canBePresidentTo"`
	IsValidatedByAdmin *bool      `json:"isValidatedByAdmin"`
}

// AssociationUserResponse represents a membership
type AssociationUserResponse struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"userId"`
	AssociationID      int64      `json:"associationId"`
	IsPresident        bool       `json:"isPresident"`
	IsVicePresident    bool       `json:"isVicePresident"`
	IsSecretary        bool       `json:"isSecretary"`
	IsTreasurer        bool       `json:"isTreasurer"`
	CanBePresidentFrom *time.Time `json:"canBePresidentFrom,omitempty"`
	CanBePresidentTo   *time.Time `json:"canBePresidentTo,omitempty"`
	IsValidatedByAdmin bool       `json:"isValidatedByAdmin"`

	User *UserBasicResponse `json:"user,omitempty"`
}

// FromAssociationUser converts a membership model to its response shape
func FromAssociationUser(m *models.AssociationUser) AssociationUserResponse {
	resp := AssociationUserResponse{
		ID:                 m.ID,
		UserID:             m.UserID,
		AssociationID:      m.AssociationID,
		IsPresident:        m.IsPresident,
		IsVicePresident:    m.IsVicePresident,
		IsSecretary:        m.IsSecretary,
		IsTreasurer:        m.IsTreasurer,
		CanBePresidentFrom: m.CanBePresidentFrom,
		CanBePresidentTo:   m.CanBePresidentTo,
		IsValidatedByAdmin: m.IsValidatedByAdmin,
	}
	if m.User != nil {
		resp.User = &UserBasicResponse{
			ID:        m.User.ID,
			FirstName: m.User.FirstName,
			LastName:  m.User.LastName,
			Email:     m.User.Email,
		}
	}
	return resp
}

// ActivityFieldResponse represents an activity field catalog entry
type ActivityFieldResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AssociationExportResponse bundles the data an association dossier
// formatter consumes.
type AssociationExportResponse struct {
	Association AssociationResponse       `json:"association"`
	Members     []AssociationUserResponse `json:"members"`
	Documents   []DocumentUploadResponse  `json:"documents"`
}

// AssociationNameResponse is the lightweight picker entry
type AssociationNameResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Acronym       string `json:"acronym"`
	InstitutionID int64  `json:"institutionId"`
}
