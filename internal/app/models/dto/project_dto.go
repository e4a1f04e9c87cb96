package dto

import (
	"time"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// --- Request DTOs ---

// CreateProjectRequest represents project creation data. Exactly one of
// AssociationID and UserID must be set.
type CreateProjectRequest struct {
	Name             string    `json:"name" binding:"required"`
	AssociationID    *int64    `json:"associationId"`
	UserID           *int64    `json:"userId"`
	PlannedStartDate time.Time `json:"plannedStartDate" binding:"required"`
	PlannedEndDate   time.Time `json:"plannedEndDate" binding:"required"`
	PlannedLocation  string    `json:"plannedLocation"`
}

// UpdateProjectRequest represents a bearer-side project update
type UpdateProjectRequest struct {
	Name                   *string    `json:"name"`
	PlannedStartDate       *time.Time `json:"plannedStartDate"`
	PlannedEndDate         *time.Time `json:"plannedEndDate"`
	PlannedLocation        *string    `json:"plannedLocation"`
	BudgetPreviousEdition  *int64     `json:"budgetPreviousEdition"`
	TargetAudience         *string    `json:"targetAudience"`
	AmountStudentsAudience *int64     `json:"amountStudentsAudience"`
	AmountAllAudience      *int64     `json:"amountAllAudience"`
	TicketPrice            *int64     `json:"ticketPrice"`
	IndividualCost         *int64     `json:"individualCost"`
	Goals                  *string    `json:"goals"`
	Summary                *string    `json:"summary"`
	PlannedActivities      *string    `json:"plannedActivities"`
	PreventionSafety       *string    `json:"preventionSafety"`
	MarketingCampaign      *string    `json:"marketingCampaign"`
	CategoryIDs            []int64    `json:"categories"`
}

// UpdateProjectReviewRequest carries review-side fields, writable once the
// project is validated.
type UpdateProjectReviewRequest struct {
	Outcome        *int64     `json:"outcome"`
	Income         *int64     `json:"income"`
	RealStartDate  *time.Time `json:"realStartDate"`
	RealEndDate    *time.Time `json:"realEndDate"`
	RealLocation   *string    `json:"realLocation"`
	Review         *string    `json:"review"`
	ImpactStudents *string    `json:"impactStudents"`
	Description    *string    `json:"description"`
	Difficulties   *string    `json:"difficulties"`
	Improvements   *string    `json:"improvements"`
}

// UpdateProjectStatusRequest requests a workflow transition
type UpdateProjectStatusRequest struct {
	ProjectStatus string `json:"projectStatus" binding:"required"`
}

// ProjectFilterRequest represents project list filters
type ProjectFilterRequest struct {
	Name             string `form:"name"`
	AssociationID    *int64 `form:"associationId"`
	UserID           *int64 `form:"userId"`
	Statuses         string `form:"projectStatuses"`
	CommissionID     *int64 `form:"commissionId"`
	ActiveProjects   *bool  `form:"activeProjects"`
	WithComments     *bool  `form:"withComments"`
	Page             int    `form:"page,default=1" binding:"min=1"`
	PageSize         int    `form:"pageSize,default=20" binding:"min=1,max=100"`
}

// --- Submission DTOs ---

// CreateProjectCommissionFundRequest submits a project to a commission fund
type CreateProjectCommissionFundRequest struct {
	ProjectID                   int64 `json:"projectId" binding:"required,gt=0"`
	CommissionFundID            int64 `json:"commissionFundId" binding:"required,gt=0"`
	IsFirstEdition              bool  `json:"isFirstEdition"`
	AmountAskedPreviousEdition  int64 `json:"amountAskedPreviousEdition"`
	AmountEarnedPreviousEdition int64 `json:"amountEarnedPreviousEdition"`
	AmountAsked                 int64 `json:"amountAsked" binding:"required,gt=0"`
}

// UpdateProjectCommissionFundRequest updates a submission. Validator-side
// fields are rejected unless the caller manages the fund.
type UpdateProjectCommissionFundRequest struct {
	IsFirstEdition              *bool  `json:"isFirstEdition"`
	AmountAskedPreviousEdition  *int64 `json:"amountAskedPreviousEdition"`
	AmountEarnedPreviousEdition *int64 `json:"amountEarnedPreviousEdition"`
	AmountAsked                 *int64 `json:"amountAsked"`
	AmountEarned                *int64 `json:"amountEarned"`
	IsValidatedByAdmin          *bool  `json:"isValidatedByAdmin"`
}

// HasValidatorFields reports whether the request touches fields reserved to
// fund managers.
func (r *UpdateProjectCommissionFundRequest) HasValidatorFields() bool {
	return r.AmountEarned != nil || r.IsValidatedByAdmin != nil
}

// ProjectCommissionFundResponse represents a submission
type ProjectCommissionFundResponse struct {
	ID                          int64  `json:"id"`
	ProjectID                   int64  `json:"projectId"`
	CommissionFundID            int64  `json:"commissionFundId"`
	IsFirstEdition              bool   `json:"isFirstEdition"`
	AmountAskedPreviousEdition  int64  `json:"amountAskedPreviousEdition"`
	AmountEarnedPreviousEdition int64  `json:"amountEarnedPreviousEdition"`
	AmountAsked                 int64  `json:"amountAsked"`
	AmountEarned                *int64 `json:"amountEarned,omitempty"`
	IsValidatedByAdmin          *bool  `json:"isValidatedByAdmin,omitempty"`
}

// FromProjectCommissionFund converts a submission model to its response shape
func FromProjectCommissionFund(pcf *models.ProjectCommissionFund) ProjectCommissionFundResponse {
	return ProjectCommissionFundResponse{
		ID:                          pcf.ID,
		ProjectID:                   pcf.ProjectID,
		CommissionFundID:            pcf.CommissionFundID,
		IsFirstEdition:              pcf.IsFirstEdition,
		AmountAskedPreviousEdition:  pcf.AmountAskedPreviousEdition,
		AmountEarnedPreviousEdition: pcf.AmountEarnedPreviousEdition,
		AmountAsked:                 pcf.AmountAsked,
		AmountEarned:                pcf.AmountEarned,
		IsValidatedByAdmin:          pcf.IsValidatedByAdmin,
	}
}

// --- Comment DTOs ---

// CreateProjectCommentRequest adds a comment on a project
type CreateProjectCommentRequest struct {
	Text      string `json:"text" binding:"required"`
	IsVisible bool   `json:"isVisible"`
}

// ProjectCommentResponse represents a project comment
type ProjectCommentResponse struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"projectId"`
	UserID       int64     `json:"userId"`
	Text         string    `json:"text"`
	IsVisible    bool      `json:"isVisible"`
	CreationDate time.Time `json:"creationDate"`
	EditionDate  time.Time `json:"editionDate"`
}

// --- Response DTOs ---

// ProjectResponse represents full project information
type ProjectResponse struct {
	ID                     int64      `json:"id"`
	Name                   string     `json:"name"`
	AssociationID          *int64     `json:"associationId,omitempty"`
	UserID                 *int64     `json:"userId,omitempty"`
	AssociationUserID      *int64     `json:"associationUserId,omitempty"`
	PlannedStartDate       time.Time  `json:"plannedStartDate"`
	PlannedEndDate         time.Time  `json:"plannedEndDate"`
	PlannedLocation        string     `json:"plannedLocation,omitempty"`
	BudgetPreviousEdition  int64      `json:"budgetPreviousEdition"`
	TargetAudience         string     `json:"targetAudience,omitempty"`
	AmountStudentsAudience int64      `json:"amountStudentsAudience"`
	AmountAllAudience      int64      `json:"amountAllAudience"`
	TicketPrice            int64      `json:"ticketPrice"`
	IndividualCost         int64      `json:"individualCost"`
	Goals                  string     `json:"goals,omitempty"`
	Summary                string     `json:"summary,omitempty"`
	PlannedActivities      string     `json:"plannedActivities,omitempty"`
	PreventionSafety       string     `json:"preventionSafety,omitempty"`
	MarketingCampaign      string     `json:"marketingCampaign,omitempty"`
	ProjectStatus          string     `json:"projectStatus"`
	CreationDate           time.Time  `json:"creationDate"`
	EditionDate            time.Time  `json:"editionDate"`
	Outcome                *int64     `json:"outcome,omitempty"`
	Income                 *int64     `json:"income,omitempty"`
	RealStartDate          *time.Time `json:"realStartDate,omitempty"`
	RealEndDate            *time.Time `json:"realEndDate,omitempty"`
	RealLocation           *string    `json:"realLocation,omitempty"`
	Review                 *string    `json:"review,omitempty"`
	ImpactStudents         *string    `json:"impactStudents,omitempty"`
	Description            *string    `json:"description,omitempty"`
	Difficulties           *string    `json:"difficulties,omitempty"`
	Improvements           *string    `json:"improvements,omitempty"`
}

// FromProject converts a project model to its response shape
func FromProject(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:                     p.ID,
		Name:                   p.Name,
		AssociationID:          p.AssociationID,
		UserID:                 p.UserID,
		AssociationUserID:      p.AssociationUserID,
		PlannedStartDate:       p.PlannedStartDate,
		PlannedEndDate:         p.PlannedEndDate,
		PlannedLocation:        p.PlannedLocation,
		BudgetPreviousEdition:  p.BudgetPreviousEdition,
		TargetAudience:         p.TargetAudience,
		AmountStudentsAudience: p.AmountStudentsAudience,
		AmountAllAudience:      p.AmountAllAudience,
		TicketPrice:            p.TicketPrice,
		IndividualCost:         p.IndividualCost,
		Goals:                  p.Goals,
		Summary:                p.Summary,
		PlannedActivities:      p.PlannedActivities,
		PreventionSafety:       p.PreventionSafety,
		MarketingCampaign:      p.MarketingCampaign,
		ProjectStatus:          string(p.ProjectStatus),
		CreationDate:           p.CreationDate,
		EditionDate:            p.EditionDate,
		Outcome:                p.Outcome,
		Income:                 p.Income,
		RealStartDate:          p.RealStartDate,
		RealEndDate:            p.RealEndDate,
		RealLocation:           p.RealLocation,
		Review:                 p.Review,
		ImpactStudents:         p.ImpactStudents,
		Description:            p.Description,
		Difficulties:           p.Difficulties,
		Improvements:           p.Improvements,
	}
}

// ProjectSummaryResponse is the compact shape used in lists
type ProjectSummaryResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	AssociationID    *int64    `json:"associationId,omitempty"`
	UserID           *int64    `json:"userId,omitempty"`
	PlannedStartDate time.Time `json:"plannedStartDate"`
	PlannedEndDate   time.Time `json:"plannedEndDate"`
	ProjectStatus    string    `json:"projectStatus"`
	EditionDate      time.Time `json:"editionDate"`
}

// FromProjectSummary converts a project model to its list shape
func FromProjectSummary(p *models.Project) ProjectSummaryResponse {
	return ProjectSummaryResponse{
		ID:               p.ID,
		Name:             p.Name,
		AssociationID:    p.AssociationID,
		UserID:           p.UserID,
		PlannedStartDate: p.PlannedStartDate,
		PlannedEndDate:   p.PlannedEndDate,
		ProjectStatus:    string(p.ProjectStatus),
		EditionDate:      p.EditionDate,
	}
}

// ProjectListResponse represents a list of projects
type ProjectListResponse struct {
	Projects []ProjectSummaryResponse `json:"projects"`
	PaginationInfo
}

// ProjectExportResponse bundles the data a project dossier formatter
// consumes.
type ProjectExportResponse struct {
	Project     ProjectResponse                 `json:"project"`
	Submissions []ProjectCommissionFundResponse `json:"submissions"`
	Comments    []ProjectCommentResponse        `json:"comments"`
	Documents   []DocumentUploadResponse        `json:"documents"`
}
