package dto

import (
	"time"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// --- Auth DTOs ---

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents an issued token pair
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn"`
	RefreshExpiresIn int    `json:"refreshExpiresIn"`
}

// RegisterRequest represents local account registration data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// --- Request DTOs ---

// UpdateUserRequest represents a partial user update
type UpdateUserRequest struct {
	FirstName          *string `json:"firstName"`
	LastName           *string `json:"lastName"`
	Email              *string `json:"email" binding:"omitempty,email"`
	IsValidatedByAdmin *bool   `json:"isValidatedByAdmin"`
}

// UserFilterRequest represents user list filters
type UserFilterRequest struct {
	Search             string `form:"search"`
	IsValidatedByAdmin *bool  `form:"isValidatedByAdmin"`
	AssociationID      *int64 `form:"associationId"`
	InstitutionIDs     string `form:"institutions"`
	Page               int    `form:"page,default=1" binding:"min=1"`
	PageSize           int    `form:"pageSize,default=20" binding:"min=1,max=100"`
}

// CreateGroupLinkRequest attaches a user to a group, optionally scoped to
// an institution or fund.
type CreateGroupLinkRequest struct {
	UserID        int64  `json:"userId" binding:"required,gt=0"`
	GroupID       int64  `json:"groupId" binding:"required,gt=0"`
	InstitutionID *int64 `json:"institutionId"`
	FundID        *int64 `json:"fundId"`
}

// --- Response DTOs ---

// UserBasicResponse represents minimal user information for nesting
type UserBasicResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// UserResponse represents full user information
type UserResponse struct {
	ID                 int64               `json:"id"`
	Email              string              `json:"email"`
	FirstName          string              `json:"firstName"`
	LastName           string              `json:"lastName"`
	IsValidatedByAdmin bool                `json:"isValidatedByAdmin"`
	IsStaff            bool                `json:"isStaff"`
	IsCas              bool                `json:"isCas"`
	DateJoined         time.Time           `json:"dateJoined"`
	LastLogin          *time.Time          `json:"lastLogin,omitempty"`
	Groups             []GroupLinkResponse `json:"groups,omitempty"`
}

// FromUser converts a user model to its response shape
func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		IsValidatedByAdmin: u.IsValidatedByAdmin,
		IsStaff:            u.IsStaff,
		IsCas:              u.IsCas,
		DateJoined:         u.DateJoined,
		LastLogin:          u.LastLogin,
	}
}

// UserListResponse represents a list of users
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	PaginationInfo
}

// GroupResponse represents a group definition
type GroupResponse struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	RegistrationAllowed   bool   `json:"registrationAllowed"`
	AssociationsPossible  bool   `json:"associationsPossible"`
	InstitutionIDPossible bool   `json:"institutionIdPossible"`
	FundIDPossible        bool   `json:"fundIdPossible"`
}

// FromGroup converts a group model to its response shape
func FromGroup(g *models.Group) GroupResponse {
	return GroupResponse{
		ID:                    g.ID,
		Name:                  g.Name,
		RegistrationAllowed:   g.RegistrationAllowed,
		AssociationsPossible:  g.AssociationsPossible,
		InstitutionIDPossible: g.InstitutionIDPossible,
		FundIDPossible:        g.FundIDPossible,
	}
}

// GroupLinkResponse represents a scoped group membership
type GroupLinkResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	GroupID       int64  `json:"groupId"`
	InstitutionID *int64 `json:"institutionId,omitempty"`
	FundID        *int64 `json:"fundId,omitempty"`
}

// FromGroupLink converts a group link model to its response shape
func FromGroupLink(l *models.GroupInstitutionFundUser) GroupLinkResponse {
	return GroupLinkResponse{
		ID:            l.ID,
		UserID:        l.UserID,
		GroupID:       l.GroupID,
		InstitutionID: l.InstitutionID,
		FundID:        l.FundID,
	}
}
