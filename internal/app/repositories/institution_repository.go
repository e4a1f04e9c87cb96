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
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/logger"
)

// InstitutionRepository handles institution and catalog database operations
type InstitutionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInstitutionRepository creates a new InstitutionRepository
func NewInstitutionRepository(db *pgxpool.Pool) *InstitutionRepository {
	return &InstitutionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves an institution by ID
func (r *InstitutionRepository) GetByID(ctx context.Context, id int64) (*models.Institution, error) {
	sql, args, err := r.sb.Select("id", "name", "acronym", "contact_email").
		From("institutions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get institution query: %w", err)
	}

	inst := &models.Institution{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&inst.ID, &inst.Name, &inst.Acronym, &inst.ContactEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("institutionID", id).Msg("Error scanning institution row")
		return nil, fmt.Errorf("error getting institution by ID: %w", err)
	}
	return inst, nil
}

// GetAll retrieves all institutions ordered by name
func (r *InstitutionRepository) GetAll(ctx context.Context) ([]*models.Institution, error) {
	sql, args, err := r.sb.Select("id", "name", "acronym", "contact_email").
		From("institutions").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all institutions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying institutions: %w", err)
	}
	defer rows.Close()

	institutions := []*models.Institution{}
	for rows.Next() {
		inst := &models.Institution{}
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.Acronym, &inst.ContactEmail); err != nil {
			return nil, fmt.Errorf("error scanning institution row: %w", err)
		}
		institutions = append(institutions, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating institution rows: %w", err)
	}
	return institutions, nil
}

// GetComponentByID retrieves an institution component by ID
func (r *InstitutionRepository) GetComponentByID(ctx context.Context, id int64) (*models.InstitutionComponent, error) {
	sql, args, err := r.sb.Select("id", "name", "institution_id").
		From("institution_components").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get component query: %w", err)
	}

	comp := &models.InstitutionComponent{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&comp.ID, &comp.Name, &comp.InstitutionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting institution component by ID: %w", err)
	}
	return comp, nil
}

// GetAllComponents retrieves all institution components
func (r *InstitutionRepository) GetAllComponents(ctx context.Context) ([]*models.InstitutionComponent, error) {
	sql, args, err := r.sb.Select("id", "name", "institution_id").
		From("institution_components").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all components query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying institution components: %w", err)
	}
	defer rows.Close()

	components := []*models.InstitutionComponent{}
	for rows.Next() {
		comp := &models.InstitutionComponent{}
		if err := rows.Scan(&comp.ID, &comp.Name, &comp.InstitutionID); err != nil {
			return nil, fmt.Errorf("error scanning component row: %w", err)
		}
		components = append(components, comp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating component rows: %w", err)
	}
	return components, nil
}

// GetActivityFieldByID retrieves an activity field by ID
func (r *InstitutionRepository) GetActivityFieldByID(ctx context.Context, id int64) (*models.ActivityField, error) {
	sql, args, err := r.sb.Select("id", "name").
		From("activity_fields").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get activity field query: %w", err)
	}

	field := &models.ActivityField{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&field.ID, &field.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting activity field by ID: %w", err)
	}
	return field, nil
}

// GetAllActivityFields retrieves the activity field catalog
func (r *InstitutionRepository) GetAllActivityFields(ctx context.Context) ([]*models.ActivityField, error) {
	sql, args, err := r.sb.Select("id", "name").
		From("activity_fields").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get activity fields query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying activity fields: %w", err)
	}
	defer rows.Close()

	fields := []*models.ActivityField{}
	for rows.Next() {
		field := &models.ActivityField{}
		if err := rows.Scan(&field.ID, &field.Name); err != nil {
			return nil, fmt.Errorf("error scanning activity field row: %w", err)
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity field rows: %w", err)
	}
	return fields, nil
}
