package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/logger"
)

// ProjectFilter narrows project listings. Dimensions combine with AND.
type ProjectFilter struct {
	Name          string
	AssociationID *int64
	UserID        *int64
	Statuses      []models.ProjectStatus
	CommissionID  *int64
	ActiveOnly    *bool
	Page          int
	PageSize      int
}

const projectColumns = `id, name, association_id, user_id, association_user_id,
	planned_start_date, planned_end_date, planned_location, budget_previous_edition,
	target_audience, amount_students_audience, amount_all_audience, ticket_price,
	individual_cost, goals, summary, planned_activities, prevention_safety,
	marketing_campaign, project_status, creation_date, edition_date,
	outcome, income, real_start_date, real_end_date, real_location, review,
	impact_students, description, difficulties, improvements`

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanProject(row pgx.Row) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(
		&p.ID, &p.Name, &p.AssociationID, &p.UserID, &p.AssociationUserID,
		&p.PlannedStartDate, &p.PlannedEndDate, &p.PlannedLocation, &p.BudgetPreviousEdition,
		&p.TargetAudience, &p.AmountStudentsAudience, &p.AmountAllAudience, &p.TicketPrice,
		&p.IndividualCost, &p.Goals, &p.Summary, &p.PlannedActivities, &p.PreventionSafety,
		&p.MarketingCampaign, &p.ProjectStatus, &p.CreationDate, &p.EditionDate,
		&p.Outcome, &p.Income, &p.RealStartDate, &p.RealEndDate, &p.RealLocation, &p.Review,
		&p.ImpactStudents, &p.Description, &p.Difficulties, &p.Improvements)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a project in its initial status
func (r *ProjectRepository) Create(ctx context.Context, q Querier, p *models.Project) (int64, error) {
	sql, args, err := r.sb.Insert("projects").
		Columns("name", "association_id", "user_id", "association_user_id",
			"planned_start_date", "planned_end_date", "planned_location", "project_status").
		Values(p.Name, p.AssociationID, p.UserID, p.AssociationUserID,
			p.PlannedStartDate, p.PlannedEndDate, p.PlannedLocation, p.ProjectStatus).
		Suffix("RETURNING id, creation_date, edition_date").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create project query: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id, &p.CreationDate, &p.EditionDate); err != nil {
		logger.Error().Err(err).Msg("Error executing create project query")
		return 0, fmt.Errorf("error creating project: %w", err)
	}
	return id, nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	sql := "SELECT " + projectColumns + " FROM projects WHERE id = $1"
	p, err := scanProject(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("projectID", id).Msg("Error scanning project row")
		return nil, fmt.Errorf("error getting project by ID: %w", err)
	}
	return p, nil
}

// GetAll retrieves projects matching the filter, newest edits first
func (r *ProjectRepository) GetAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, int, error) {
	query := r.sb.Select("p.id", "p.name", "p.association_id", "p.user_id", "p.association_user_id",
		"p.planned_start_date", "p.planned_end_date", "p.planned_location", "p.budget_previous_edition",
		"p.target_audience", "p.amount_students_audience", "p.amount_all_audience", "p.ticket_price",
		"p.individual_cost", "p.goals", "p.summary", "p.planned_activities", "p.prevention_safety",
		"p.marketing_campaign", "p.project_status", "p.creation_date", "p.edition_date",
		"p.outcome", "p.income", "p.real_start_date", "p.real_end_date", "p.real_location", "p.review",
		"p.impact_students", "p.description", "p.difficulties", "p.improvements",
		"COUNT(*) OVER() AS total_count").
		From("projects p")

	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"p.name": "%" + filter.Name + "%"})
	}
	if filter.AssociationID != nil {
		query = query.Where(squirrel.Eq{"p.association_id": *filter.AssociationID})
	}
	if filter.UserID != nil {
		query = query.Where(squirrel.Eq{"p.user_id": *filter.UserID})
	}
	if len(filter.Statuses) > 0 {
		query = query.Where(squirrel.Eq{"p.project_status": filter.Statuses})
	}
	if filter.CommissionID != nil {
		query = query.Where(squirrel.Expr(`EXISTS (
			SELECT 1 FROM project_commission_funds pcf
			JOIN commission_funds cf ON cf.id = pcf.commission_fund_id
			WHERE pcf.project_id = p.id AND cf.commission_id = ?
		)`, *filter.CommissionID))
	}
	if filter.ActiveOnly != nil {
		archived := squirrel.Eq{"p.project_status": []models.ProjectStatus{
			models.ProjectRejected, models.ProjectReviewValidated,
			models.ProjectReviewRejected, models.ProjectReviewCancelled,
		}}
		if *filter.ActiveOnly {
			query = query.Where(squirrel.Expr("NOT (?)", archived))
		} else {
			query = query.Where(archived)
		}
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query = query.OrderBy("p.edition_date DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list projects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	total := 0
	for rows.Next() {
		p := &models.Project{}
		err := rows.Scan(
			&p.ID, &p.Name, &p.AssociationID, &p.UserID, &p.AssociationUserID,
			&p.PlannedStartDate, &p.PlannedEndDate, &p.PlannedLocation, &p.BudgetPreviousEdition,
			&p.TargetAudience, &p.AmountStudentsAudience, &p.AmountAllAudience, &p.TicketPrice,
			&p.IndividualCost, &p.Goals, &p.Summary, &p.PlannedActivities, &p.PreventionSafety,
			&p.MarketingCampaign, &p.ProjectStatus, &p.CreationDate, &p.EditionDate,
			&p.Outcome, &p.Income, &p.RealStartDate, &p.RealEndDate, &p.RealLocation, &p.Review,
			&p.ImpactStudents, &p.Description, &p.Difficulties, &p.Improvements,
			&total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, total, nil
}

// GetByCommission retrieves every project submitted to a commission,
// oldest first.
func (r *ProjectRepository) GetByCommission(ctx context.Context, commissionID int64) ([]*models.Project, error) {
	sql := "SELECT " + projectColumns + ` FROM projects
	WHERE EXISTS (
		SELECT 1 FROM project_commission_funds pcf
		JOIN commission_funds cf ON cf.id = pcf.commission_fund_id
		WHERE pcf.project_id = projects.id AND cf.commission_id = $1
	)
	ORDER BY id`

	rows, err := r.db.Query(ctx, sql, commissionID)
	if err != nil {
		return nil, fmt.Errorf("error querying commission projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// Update persists every mutable project column and refreshes the edition date
func (r *ProjectRepository) Update(ctx context.Context, q Querier, p *models.Project) error {
	sql, args, err := r.sb.Update("projects").
		SetMap(map[string]interface{}{
			"name":                     p.Name,
			"planned_start_date":       p.PlannedStartDate,
			"planned_end_date":         p.PlannedEndDate,
			"planned_location":         p.PlannedLocation,
			"budget_previous_edition":  p.BudgetPreviousEdition,
			"target_audience":          p.TargetAudience,
			"amount_students_audience": p.AmountStudentsAudience,
			"amount_all_audience":      p.AmountAllAudience,
			"ticket_price":             p.TicketPrice,
			"individual_cost":          p.IndividualCost,
			"goals":                    p.Goals,
			"summary":                  p.Summary,
			"planned_activities":       p.PlannedActivities,
			"prevention_safety":        p.PreventionSafety,
			"marketing_campaign":       p.MarketingCampaign,
			"project_status":           p.ProjectStatus,
			"outcome":                  p.Outcome,
			"income":                   p.Income,
			"real_start_date":          p.RealStartDate,
			"real_end_date":            p.RealEndDate,
			"real_location":            p.RealLocation,
			"review":                   p.Review,
			"impact_students":          p.ImpactStudents,
			"description":              p.Description,
			"difficulties":             p.Difficulties,
			"improvements":             p.Improvements,
			"edition_date":             squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update project query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("projectID", p.ID).Msg("Error executing update project query")
		return fmt.Errorf("error updating project: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// UpdateStatus changes only the workflow status
func (r *ProjectRepository) UpdateStatus(ctx context.Context, q Querier, id int64, status models.ProjectStatus) error {
	cmdTag, err := q.Exec(ctx,
		"UPDATE projects SET project_status = $1, edition_date = NOW() WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("error updating project status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// Delete removes a project; submissions, categories and comments cascade
func (r *ProjectRepository) Delete(ctx context.Context, q Querier, id int64) error {
	cmdTag, err := q.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// --- Categories ---

// GetAllCategoryNames retrieves the project category catalog
func (r *ProjectRepository) GetAllCategoryNames(ctx context.Context) ([]*models.ProjectCategoryName, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name FROM project_category_names ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("error querying project category names: %w", err)
	}
	defer rows.Close()

	categories := []*models.ProjectCategoryName{}
	for rows.Next() {
		c := &models.ProjectCategoryName{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning category name row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category name rows: %w", err)
	}
	return categories, nil
}

// ReplaceCategories rewrites the category tags of a project
func (r *ProjectRepository) ReplaceCategories(ctx context.Context, q Querier, projectID int64, categoryIDs []int64) error {
	if _, err := q.Exec(ctx, "DELETE FROM project_categories WHERE project_id = $1", projectID); err != nil {
		return fmt.Errorf("error clearing project categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		_, err := q.Exec(ctx,
			"INSERT INTO project_categories (project_id, category_id) VALUES ($1, $2)", projectID, categoryID)
		if err != nil {
			return fmt.Errorf("error tagging project category: %w", err)
		}
	}
	return nil
}

// GetCategories retrieves a project's category tags
func (r *ProjectRepository) GetCategories(ctx context.Context, projectID int64) ([]*models.ProjectCategory, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, project_id, category_id FROM project_categories WHERE project_id = $1", projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying project categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.ProjectCategory{}
	for rows.Next() {
		c := &models.ProjectCategory{}
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.CategoryID); err != nil {
			return nil, fmt.Errorf("error scanning project category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project category rows: %w", err)
	}
	return categories, nil
}

// --- Comments ---

// CreateComment inserts a project comment
func (r *ProjectRepository) CreateComment(ctx context.Context, c *models.ProjectComment) (int64, error) {
	sql, args, err := r.sb.Insert("project_comments").
		Columns("project_id", "user_id", "text", "is_visible").
		Values(c.ProjectID, c.UserID, c.Text, c.IsVisible).
		Suffix("RETURNING id, creation_date, edition_date").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create comment query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id, &c.CreationDate, &c.EditionDate); err != nil {
		return 0, fmt.Errorf("error creating project comment: %w", err)
	}
	return id, nil
}

// GetComments retrieves the comments of a project, oldest first. When
// visibleOnly is set, hidden manager notes are excluded.
func (r *ProjectRepository) GetComments(ctx context.Context, projectID int64, visibleOnly bool) ([]*models.ProjectComment, error) {
	query := r.sb.Select("id", "project_id", "user_id", "text", "is_visible", "creation_date", "edition_date").
		From("project_comments").
		Where(squirrel.Eq{"project_id": projectID})
	if visibleOnly {
		query = query.Where(squirrel.Eq{"is_visible": true})
	}
	query = query.OrderBy("creation_date ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying project comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.ProjectComment{}
	for rows.Next() {
		c := &models.ProjectComment{}
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Text, &c.IsVisible, &c.CreationDate, &c.EditionDate); err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}
	return comments, nil
}

// --- Temporal queries ---

// GetValidatedEndedBefore returns validated projects whose planned end date
// is older than the cutoff and which never entered the review lane.
func (r *ProjectRepository) GetValidatedEndedBefore(ctx context.Context, cutoff time.Time) ([]*models.Project, error) {
	sql := "SELECT " + projectColumns + " FROM projects WHERE project_status = $1 AND planned_end_date < $2"
	rows, err := r.db.Query(ctx, sql, models.ProjectValidated, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying overdue review projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// GetArchivedEditedBefore returns archived projects last touched before the
// cutoff, candidates for permanent deletion.
func (r *ProjectRepository) GetArchivedEditedBefore(ctx context.Context, cutoff time.Time) ([]*models.Project, error) {
	sql := "SELECT " + projectColumns + ` FROM projects
		WHERE project_status IN ('PROJECT_REJECTED', 'PROJECT_REVIEW_VALIDATED', 'PROJECT_REVIEW_REJECTED', 'PROJECT_REVIEW_CANCELLED')
		AND edition_date < $1`
	rows, err := r.db.Query(ctx, sql, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying archived projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}
