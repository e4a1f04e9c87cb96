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
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/dberrors"
)

const pcfColumns = `id, project_id, commission_fund_id, is_first_edition,
	amount_asked_previous_edition, amount_earned_previous_edition,
	amount_asked, amount_earned, is_validated_by_admin, last_notification_file`

// ProjectCommissionFundRepository handles submission database operations
type ProjectCommissionFundRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProjectCommissionFundRepository creates a new ProjectCommissionFundRepository
func NewProjectCommissionFundRepository(db *pgxpool.Pool) *ProjectCommissionFundRepository {
	return &ProjectCommissionFundRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanPCF(row pgx.Row) (*models.ProjectCommissionFund, error) {
	pcf := &models.ProjectCommissionFund{}
	err := row.Scan(
		&pcf.ID, &pcf.ProjectID, &pcf.CommissionFundID, &pcf.IsFirstEdition,
		&pcf.AmountAskedPreviousEdition, &pcf.AmountEarnedPreviousEdition,
		&pcf.AmountAsked, &pcf.AmountEarned, &pcf.IsValidatedByAdmin, &pcf.LastNotificationFile)
	if err != nil {
		return nil, err
	}
	return pcf, nil
}

// Create inserts a submission
func (r *ProjectCommissionFundRepository) Create(ctx context.Context, q Querier, pcf *models.ProjectCommissionFund) (int64, error) {
	sql, args, err := r.sb.Insert("project_commission_funds").
		Columns("project_id", "commission_fund_id", "is_first_edition",
			"amount_asked_previous_edition", "amount_earned_previous_edition", "amount_asked").
		Values(pcf.ProjectID, pcf.CommissionFundID, pcf.IsFirstEdition,
			pcf.AmountAskedPreviousEdition, pcf.AmountEarnedPreviousEdition, pcf.AmountAsked).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create submission query: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrSubmissionExists
		}
		return 0, fmt.Errorf("error creating submission: %w", err)
	}
	return id, nil
}

// GetByID retrieves a submission by ID
func (r *ProjectCommissionFundRepository) GetByID(ctx context.Context, id int64) (*models.ProjectCommissionFund, error) {
	sql := "SELECT " + pcfColumns + " FROM project_commission_funds WHERE id = $1"
	pcf, err := scanPCF(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting submission by ID: %w", err)
	}
	return pcf, nil
}

// GetByProject retrieves every submission of a project. Runs on the given
// querier so the decision promotion can read inside its transaction.
func (r *ProjectCommissionFundRepository) GetByProject(ctx context.Context, q Querier, projectID int64) ([]*models.ProjectCommissionFund, error) {
	sql := "SELECT " + pcfColumns + " FROM project_commission_funds WHERE project_id = $1 ORDER BY id ASC"
	rows, err := q.Query(ctx, sql, projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying project submissions: %w", err)
	}
	defer rows.Close()

	submissions := []*models.ProjectCommissionFund{}
	for rows.Next() {
		pcf, err := scanPCF(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning submission row: %w", err)
		}
		submissions = append(submissions, pcf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}
	return submissions, nil
}

// GetCommissionIDsForProject returns the distinct commissions a project is
// submitted to. Used to enforce the one-commission rule.
func (r *ProjectCommissionFundRepository) GetCommissionIDsForProject(ctx context.Context, q Querier, projectID int64) ([]int64, error) {
	sql := `SELECT DISTINCT cf.commission_id
	FROM project_commission_funds pcf
	JOIN commission_funds cf ON cf.id = pcf.commission_fund_id
	WHERE pcf.project_id = $1`

	rows, err := q.Query(ctx, sql, projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying project commissions: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning commission id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission ids: %w", err)
	}
	return ids, nil
}

// GetFundIDsForProject returns the distinct funds a project applied to.
// Managers of those funds may read the project.
func (r *ProjectCommissionFundRepository) GetFundIDsForProject(ctx context.Context, q Querier, projectID int64) ([]int64, error) {
	sql := `SELECT DISTINCT cf.fund_id
	FROM project_commission_funds pcf
	JOIN commission_funds cf ON cf.id = pcf.commission_fund_id
	WHERE pcf.project_id = $1`

	rows, err := q.Query(ctx, sql, projectID)
	if err != nil {
		return nil, fmt.Errorf("error querying project funds: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning fund id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund ids: %w", err)
	}
	return ids, nil
}

// Update persists the mutable submission columns
func (r *ProjectCommissionFundRepository) Update(ctx context.Context, q Querier, pcf *models.ProjectCommissionFund) error {
	sql, args, err := r.sb.Update("project_commission_funds").
		SetMap(map[string]interface{}{
			"is_first_edition":               pcf.IsFirstEdition,
			"amount_asked_previous_edition":  pcf.AmountAskedPreviousEdition,
			"amount_earned_previous_edition": pcf.AmountEarnedPreviousEdition,
			"amount_asked":                   pcf.AmountAsked,
			"amount_earned":                  pcf.AmountEarned,
			"is_validated_by_admin":          pcf.IsValidatedByAdmin,
			"last_notification_file":         pcf.LastNotificationFile,
		}).
		Where(squirrel.Eq{"id": pcf.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update submission query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating submission: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// Delete removes a submission
func (r *ProjectCommissionFundRepository) Delete(ctx context.Context, q Querier, id int64) error {
	cmdTag, err := q.Exec(ctx, "DELETE FROM project_commission_funds WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting submission: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// DeleteDraftPastDeadline removes submissions still attached to draft
// projects once their commission's submission deadline has passed. Returns
// the number of rows removed.
func (r *ProjectCommissionFundRepository) DeleteDraftPastDeadline(ctx context.Context, today time.Time) (int64, error) {
	sql := `DELETE FROM project_commission_funds pcf
	USING projects p, commission_funds cf, commissions c
	WHERE p.id = pcf.project_id
	AND cf.id = pcf.commission_fund_id
	AND c.id = cf.commission_id
	AND p.project_status = $1
	AND c.submission_deadline < $2`

	cmdTag, err := r.db.Exec(ctx, sql, models.ProjectDraft, today)
	if err != nil {
		return 0, fmt.Errorf("error deleting stale draft submissions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
