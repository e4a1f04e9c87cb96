package dto

import "github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"

// InstitutionResponse represents an institution
type InstitutionResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Acronym      string `json:"acronym"`
	ContactEmail string `json:"contactEmail,omitempty"`
}

// FromInstitution converts an institution model to its response shape
func FromInstitution(i *models.Institution) InstitutionResponse {
	return InstitutionResponse{
		ID:           i.ID,
		Name:         i.Name,
		Acronym:      i.Acronym,
		ContactEmail: i.ContactEmail,
	}
}

// InstitutionComponentResponse represents an institution component
type InstitutionComponentResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	InstitutionID int64  `json:"institutionId"`
}

// FundResponse represents a fund
type FundResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Acronym       string `json:"acronym"`
	IsSite        bool   `json:"isSite"`
	InstitutionID int64  `json:"institutionId"`
}

// FromFund converts a fund model to its response shape
func FromFund(f *models.Fund) FundResponse {
	return FundResponse{
		ID:            f.ID,
		Name:          f.Name,
		Acronym:       f.Acronym,
		IsSite:        f.IsSite,
		InstitutionID: f.InstitutionID,
	}
}

// ProjectCategoryNameResponse represents a project category catalog entry
type ProjectCategoryNameResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
