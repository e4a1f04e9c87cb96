package dto

import (
	"time"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// --- Request DTOs ---

// CreateCommissionRequest represents commission creation data
type CreateCommissionRequest struct {
	Name               string    `json:"name" binding:"required"`
	SubmissionDeadline time.Time `json:"submissionDeadline" binding:"required"`
	SessionDate        time.Time `json:"sessionDate" binding:"required"`
	IsOpenToProjects   bool      `json:"isOpenToProjects"`
	FundIDs            []int64   `json:"funds" binding:"required,min=1"`
}

// UpdateCommissionRequest represents a partial commission update
type UpdateCommissionRequest struct {
	Name               *string    `json:"name"`
	SubmissionDeadline *time.Time `json:"submissionDeadline"`
	SessionDate        *time.Time `json:"sessionDate"`
	IsOpenToProjects   *bool      `json:"isOpenToProjects"`
	FundIDs            []int64    `json:"funds"`
}

// CommissionFilterRequest represents commission list filter parameters
type CommissionFilterRequest struct {
	FundIDs         string `form:"funds"`
	IsOpenToProjects *bool `form:"isOpenToProjects"`
	OnlyNext        *bool  `form:"onlyNext"`
	ActiveProjects  *bool  `form:"activeProjects"`
	IsSite          *bool  `form:"isSite"`
	DatesAfter      string `form:"datesAfter"`
}

// --- Response DTOs ---

// CommissionResponse represents a commission
type CommissionResponse struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	SubmissionDeadline time.Time      `json:"submissionDeadline"`
	SessionDate        time.Time      `json:"sessionDate"`
	IsOpenToProjects   bool           `json:"isOpenToProjects"`
	Funds              []FundResponse `json:"funds,omitempty"`
}

// FromCommission converts a commission model to its response shape
func FromCommission(c *models.Commission) CommissionResponse {
	resp := CommissionResponse{
		ID:                 c.ID,
		Name:               c.Name,
		SubmissionDeadline: c.SubmissionDeadline,
		SessionDate:        c.SessionDate,
		IsOpenToProjects:   c.IsOpenToProjects,
	}
	for _, f := range c.Funds {
		resp.Funds = append(resp.Funds, FromFund(f))
	}
	return resp
}

// CommissionFundResponse represents a commission to fund link
type CommissionFundResponse struct {
	ID           int64 `json:"id"`
	CommissionID int64 `json:"commissionId"`
	FundID       int64 `json:"fundId"`
}

// FromCommissionFund converts a commission fund model to its response shape
func FromCommissionFund(cf *models.CommissionFund) CommissionFundResponse {
	return CommissionFundResponse{
		ID:           cf.ID,
		CommissionID: cf.CommissionID,
		FundID:       cf.FundID,
	}
}

// CommissionExportResponse bundles the data a commission dossier
// formatter consumes.
type CommissionExportResponse struct {
	Commission CommissionResponse       `json:"commission"`
	Funds      []CommissionFundResponse `json:"funds"`
	Projects   []ProjectSummaryResponse `json:"projects"`
}
