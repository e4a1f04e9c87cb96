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
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/logger"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/textfold"
)

// CommissionFilter narrows commission listings
type CommissionFilter struct {
	FundIDs          []int64
	IsOpenToProjects *bool
	OnlyNext         bool
	ActiveProjects   *bool
	IsSite           *bool
	DatesAfter       *time.Time
}

// CommissionRepository handles commission database operations
type CommissionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCommissionRepository creates a new CommissionRepository
func NewCommissionRepository(db *pgxpool.Pool) *CommissionRepository {
	return &CommissionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a commission and its fund links in one transaction step.
// Runs on the given querier so callers can wrap it in a transaction.
func (r *CommissionRepository) Create(ctx context.Context, q Querier, commission *models.Commission, fundIDs []int64) (int64, error) {
	sql, args, err := r.sb.Insert("commissions").
		Columns("name", "name_folded", "submission_deadline", "session_date", "is_open_to_projects").
		Values(commission.Name, textfold.Fold(commission.Name), commission.SubmissionDeadline,
			commission.SessionDate, commission.IsOpenToProjects).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create commission query: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrCommissionNameTaken
		}
		logger.Error().Err(err).Msg("Error executing create commission query")
		return 0, fmt.Errorf("error creating commission: %w", err)
	}

	for _, fundID := range fundIDs {
		if err := r.addFund(ctx, q, id, fundID); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (r *CommissionRepository) addFund(ctx context.Context, q Querier, commissionID, fundID int64) error {
	sql, args, err := r.sb.Insert("commission_funds").
		Columns("commission_id", "fund_id").
		Values(commissionID, fundID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add commission fund query: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCommissionFundExists
		}
		return fmt.Errorf("error linking fund to commission: %w", err)
	}
	return nil
}

// GetByID retrieves a commission with its funds
func (r *CommissionRepository) GetByID(ctx context.Context, id int64) (*models.Commission, error) {
	sql, args, err := r.sb.Select("id", "name", "submission_deadline", "session_date", "is_open_to_projects").
		From("commissions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get commission query: %w", err)
	}

	c := &models.Commission{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.SubmissionDeadline, &c.SessionDate, &c.IsOpenToProjects)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting commission by ID: %w", err)
	}

	funds, err := r.getFunds(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Funds = funds
	return c, nil
}

func (r *CommissionRepository) getFunds(ctx context.Context, commissionID int64) ([]*models.Fund, error) {
	sql, args, err := r.sb.Select("f.id", "f.name", "f.acronym", "f.is_site", "f.institution_id").
		From("commission_funds cf").
		Join("funds f ON f.id = cf.fund_id").
		Where(squirrel.Eq{"cf.commission_id": commissionID}).
		OrderBy("f.acronym ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get commission funds query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying commission funds: %w", err)
	}
	defer rows.Close()

	funds := []*models.Fund{}
	for rows.Next() {
		f := &models.Fund{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Acronym, &f.IsSite, &f.InstitutionID); err != nil {
			return nil, fmt.Errorf("error scanning fund row: %w", err)
		}
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund rows: %w", err)
	}
	return funds, nil
}

// GetAll retrieves commissions matching the filter, ordered by session date.
// All filter dimensions combine with AND.
func (r *CommissionRepository) GetAll(ctx context.Context, filter CommissionFilter) ([]*models.Commission, error) {
	query := r.sb.Select("DISTINCT c.id", "c.name", "c.submission_deadline", "c.session_date", "c.is_open_to_projects").
		From("commissions c")

	if len(filter.FundIDs) > 0 || filter.IsSite != nil {
		query = query.Join("commission_funds cf ON cf.commission_id = c.id")
		if len(filter.FundIDs) > 0 {
			query = query.Where(squirrel.Eq{"cf.fund_id": filter.FundIDs})
		}
		if filter.IsSite != nil {
			query = query.Join("funds f ON f.id = cf.fund_id").
				Where(squirrel.Eq{"f.is_site": *filter.IsSite})
		}
	}
	if filter.IsOpenToProjects != nil {
		query = query.Where(squirrel.Eq{"c.is_open_to_projects": *filter.IsOpenToProjects})
	}
	if filter.DatesAfter != nil {
		query = query.Where(squirrel.GtOrEq{"c.session_date": *filter.DatesAfter})
	}
	if filter.ActiveProjects != nil {
		sub := `EXISTS (
			SELECT 1 FROM project_commission_funds pcf
			JOIN commission_funds cf2 ON cf2.id = pcf.commission_fund_id
			JOIN projects p ON p.id = pcf.project_id
			WHERE cf2.commission_id = c.id
			AND p.project_status NOT IN ('PROJECT_REJECTED', 'PROJECT_REVIEW_VALIDATED', 'PROJECT_REVIEW_REJECTED', 'PROJECT_REVIEW_CANCELLED')
		)`
		if *filter.ActiveProjects {
			query = query.Where(sub)
		} else {
			query = query.Where("NOT " + sub)
		}
	}

	query = query.OrderBy("c.session_date ASC")
	if filter.OnlyNext {
		query = query.Limit(1)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list commissions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying commissions: %w", err)
	}
	defer rows.Close()

	commissions := []*models.Commission{}
	for rows.Next() {
		c := &models.Commission{}
		if err := rows.Scan(&c.ID, &c.Name, &c.SubmissionDeadline, &c.SessionDate, &c.IsOpenToProjects); err != nil {
			return nil, fmt.Errorf("error scanning commission row: %w", err)
		}
		commissions = append(commissions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission rows: %w", err)
	}

	for _, c := range commissions {
		funds, err := r.getFunds(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.Funds = funds
	}
	return commissions, nil
}

// Update updates a commission and, when fundIDs is non-nil, replaces its
// fund links.
func (r *CommissionRepository) Update(ctx context.Context, q Querier, commission *models.Commission, fundIDs []int64) error {
	sql, args, err := r.sb.Update("commissions").
		SetMap(map[string]interface{}{
			"name":                commission.Name,
			"name_folded":         textfold.Fold(commission.Name),
			"submission_deadline": commission.SubmissionDeadline,
			"session_date":        commission.SessionDate,
			"is_open_to_projects": commission.IsOpenToProjects,
		}).
		Where(squirrel.Eq{"id": commission.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update commission query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCommissionNameTaken
		}
		return fmt.Errorf("error updating commission: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	if fundIDs == nil {
		return nil
	}

	delSql, delArgs, err := r.sb.Delete("commission_funds").
		Where(squirrel.Eq{"commission_id": commission.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear commission funds query: %w", err)
	}
	if _, err := q.Exec(ctx, delSql, delArgs...); err != nil {
		return fmt.Errorf("error clearing commission funds: %w", err)
	}
	for _, fundID := range fundIDs {
		if err := r.addFund(ctx, q, commission.ID, fundID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a commission and its fund links
func (r *CommissionRepository) Delete(ctx context.Context, q Querier, id int64) error {
	sql, args, err := r.sb.Delete("commissions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete commission query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsRestrictViolation(err) {
			return apperrors.ErrCommissionInUse
		}
		return fmt.Errorf("error deleting commission: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// HasFinishedSubmissions reports whether a submission to the commission
// belongs to a project that finished its run. Those submissions carry the
// decision record and pin the commission.
func (r *CommissionRepository) HasFinishedSubmissions(ctx context.Context, id int64) (bool, error) {
	statuses := models.ArchivedStatusList()
	archived := make([]string, 0, len(statuses))
	for _, s := range statuses {
		archived = append(archived, string(s))
	}

	sql := `SELECT EXISTS (
		SELECT 1 FROM project_commission_funds pcf
		JOIN commission_funds cf ON cf.id = pcf.commission_fund_id
		JOIN projects p ON p.id = pcf.project_id
		WHERE cf.commission_id = $1 AND p.project_status = ANY($2)
	)`
	var exists bool
	if err := r.db.QueryRow(ctx, sql, id, archived).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking commission submissions: %w", err)
	}
	return exists, nil
}

// GetCommissionFundByID retrieves a commission fund link with its commission
// and fund loaded.
func (r *CommissionRepository) GetCommissionFundByID(ctx context.Context, id int64) (*models.CommissionFund, error) {
	sql, args, err := r.sb.Select(
		"cf.id", "cf.commission_id", "cf.fund_id",
		"c.id", "c.name", "c.submission_deadline", "c.session_date", "c.is_open_to_projects",
		"f.id", "f.name", "f.acronym", "f.is_site", "f.institution_id").
		From("commission_funds cf").
		Join("commissions c ON c.id = cf.commission_id").
		Join("funds f ON f.id = cf.fund_id").
		Where(squirrel.Eq{"cf.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get commission fund query: %w", err)
	}

	cf := &models.CommissionFund{Commission: &models.Commission{}, Fund: &models.Fund{}}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&cf.ID, &cf.CommissionID, &cf.FundID,
		&cf.Commission.ID, &cf.Commission.Name, &cf.Commission.SubmissionDeadline, &cf.Commission.SessionDate, &cf.Commission.IsOpenToProjects,
		&cf.Fund.ID, &cf.Fund.Name, &cf.Fund.Acronym, &cf.Fund.IsSite, &cf.Fund.InstitutionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting commission fund by ID: %w", err)
	}
	return cf, nil
}

// GetCommissionFunds retrieves the fund links of a commission
func (r *CommissionRepository) GetCommissionFunds(ctx context.Context, commissionID int64) ([]*models.CommissionFund, error) {
	sql, args, err := r.sb.Select("id", "commission_id", "fund_id").
		From("commission_funds").
		Where(squirrel.Eq{"commission_id": commissionID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list commission funds query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying commission funds: %w", err)
	}
	defer rows.Close()

	links := []*models.CommissionFund{}
	for rows.Next() {
		cf := &models.CommissionFund{}
		if err := rows.Scan(&cf.ID, &cf.CommissionID, &cf.FundID); err != nil {
			return nil, fmt.Errorf("error scanning commission fund row: %w", err)
		}
		links = append(links, cf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commission fund rows: %w", err)
	}
	return links, nil
}

// DeleteCommissionFund removes one fund link
func (r *CommissionRepository) DeleteCommissionFund(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("commission_funds").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete commission fund query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsRestrictViolation(err) {
			return apperrors.ErrCommissionInUse
		}
		return fmt.Errorf("error deleting commission fund: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}
