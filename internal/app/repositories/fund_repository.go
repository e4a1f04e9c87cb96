package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
)

// FundRepository handles fund database operations
type FundRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFundRepository creates a new FundRepository
func NewFundRepository(db *pgxpool.Pool) *FundRepository {
	return &FundRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves a fund by ID
func (r *FundRepository) GetByID(ctx context.Context, id int64) (*models.Fund, error) {
	sql, args, err := r.sb.Select("id", "name", "acronym", "is_site", "institution_id").
		From("funds").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get fund query: %w", err)
	}

	fund := &models.Fund{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&fund.ID, &fund.Name, &fund.Acronym, &fund.IsSite, &fund.InstitutionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting fund by ID: %w", err)
	}
	return fund, nil
}

// GetAll retrieves all funds ordered by acronym
func (r *FundRepository) GetAll(ctx context.Context) ([]*models.Fund, error) {
	sql, args, err := r.sb.Select("id", "name", "acronym", "is_site", "institution_id").
		From("funds").
		OrderBy("acronym ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all funds query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying funds: %w", err)
	}
	defer rows.Close()

	funds := []*models.Fund{}
	for rows.Next() {
		fund := &models.Fund{}
		if err := rows.Scan(&fund.ID, &fund.Name, &fund.Acronym, &fund.IsSite, &fund.InstitutionID); err != nil {
			return nil, fmt.Errorf("error scanning fund row: %w", err)
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund rows: %w", err)
	}
	return funds, nil
}

// GetByIDs retrieves the funds matching the given ids
func (r *FundRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Fund, error) {
	if len(ids) == 0 {
		return []*models.Fund{}, nil
	}
	sql, args, err := r.sb.Select("id", "name", "acronym", "is_site", "institution_id").
		From("funds").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get funds by ids query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying funds by ids: %w", err)
	}
	defer rows.Close()

	funds := []*models.Fund{}
	for rows.Next() {
		fund := &models.Fund{}
		if err := rows.Scan(&fund.ID, &fund.Name, &fund.Acronym, &fund.IsSite, &fund.InstitutionID); err != nil {
			return nil, fmt.Errorf("error scanning fund row: %w", err)
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund rows: %w", err)
	}
	return funds, nil
}
