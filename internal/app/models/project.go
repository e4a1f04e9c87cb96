package models

import "time"

// Project represents a single subsidy-seeking activity owned by an
// association or by a user, never both.
type Project struct {
	ID                    int64         `json:"id" db:"id"`
	Name                  string        `json:"name" db:"name"`
	AssociationID         *int64        `json:"associationId,omitempty" db:"association_id"`
	UserID                *int64        `json:"userId,omitempty" db:"user_id"`
	AssociationUserID     *int64        `json:"associationUserId,omitempty" db:"association_user_id"`
	PlannedStartDate      time.Time     `json:"plannedStartDate" db:"planned_start_date"`
	PlannedEndDate        time.Time     `json:"plannedEndDate" db:"planned_end_date"`
	PlannedLocation       string        `json:"plannedLocation" db:"planned_location"`
	BudgetPreviousEdition int64         `json:"budgetPreviousEdition" db:"budget_previous_edition"`
	TargetAudience        string        `json:"targetAudience" db:"target_audience"`
	AmountStudentsAudience int64        `json:"amountStudentsAudience" db:"amount_students_audience"`
	AmountAllAudience     int64         `json:"amountAllAudience" db:"amount_all_audience"`
	TicketPrice           int64         `json:"ticketPrice" db:"ticket_price"`
	IndividualCost        int64         `json:"individualCost" db:"individual_cost"`
	Goals                 string        `json:"goals" db:"goals"`
	Summary               string        `json:"summary" db:"summary"`
	PlannedActivities     string        `json:"plannedActivities" db:"planned_activities"`
	PreventionSafety      string        `json:"preventionSafety" db:"prevention_safety"`
	MarketingCampaign     string        `json:"marketingCampaign" db:"marketing_campaign"`
	ProjectStatus         ProjectStatus `json:"projectStatus" db:"project_status"`
	CreationDate          time.Time     `json:"creationDate" db:"creation_date"`
	EditionDate           time.Time     `json:"editionDate" db:"edition_date"`

	// Review-side fields, writable once the project is validated
	Outcome        *int64     `json:"outcome,omitempty" db:"outcome"`
	Income         *int64     `json:"income,omitempty" db:"income"`
	RealStartDate  *time.Time `json:"realStartDate,omitempty" db:"real_start_date"`
	RealEndDate    *time.Time `json:"realEndDate,omitempty" db:"real_end_date"`
	RealLocation   *string    `json:"realLocation,omitempty" db:"real_location"`
	Review         *string    `json:"review,omitempty" db:"review"`
	ImpactStudents *string    `json:"impactStudents,omitempty" db:"impact_students"`
	Description    *string    `json:"description,omitempty" db:"description"`
	Difficulties   *string    `json:"difficulties,omitempty" db:"difficulties"`
	Improvements   *string    `json:"improvements,omitempty" db:"improvements"`

	// Related entities
	Association *Association `json:"association,omitempty"`
}

// IsPersonal reports whether the project is owned by a user rather than an
// association.
func (p *Project) IsPersonal() bool {
	return p.UserID != nil
}

// ClearReviewFields resets review-side data, used when a project regresses
// out of the review lane.
func (p *Project) ClearReviewFields() {
	p.Outcome = nil
	p.Income = nil
	p.RealStartDate = nil
	p.RealEndDate = nil
	p.RealLocation = nil
	p.Review = nil
	p.ImpactStudents = nil
	p.Description = nil
	p.Difficulties = nil
	p.Improvements = nil
}

// ProjectCategoryName is a catalog entry projects can be tagged with
type ProjectCategoryName struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ProjectCategory tags a project with a catalog category
type ProjectCategory struct {
	ID         int64 `json:"id" db:"id"`
	ProjectID  int64 `json:"projectId" db:"project_id"`
	CategoryID int64 `json:"categoryId" db:"category_id"`
}

// ProjectComment is a remark left on a project by a manager or its bearer
type ProjectComment struct {
	ID           int64     `json:"id" db:"id"`
	ProjectID    int64     `json:"projectId" db:"project_id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Text         string    `json:"text" db:"text"`
	IsVisible    bool      `json:"isVisible" db:"is_visible"`
	CreationDate time.Time `json:"creationDate" db:"creation_date"`
	EditionDate  time.Time `json:"editionDate" db:"edition_date"`
}
