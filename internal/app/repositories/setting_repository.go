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

// SettingRepository handles runtime setting database operations
type SettingRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAll retrieves every setting
func (r *SettingRepository) GetAll(ctx context.Context) ([]*models.Setting, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name, parameters FROM settings ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("error querying settings: %w", err)
	}
	defer rows.Close()

	settings := []*models.Setting{}
	for rows.Next() {
		s := &models.Setting{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Parameters); err != nil {
			return nil, fmt.Errorf("error scanning setting row: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setting rows: %w", err)
	}
	return settings, nil
}

// GetByName retrieves a setting by its unique name
func (r *SettingRepository) GetByName(ctx context.Context, name string) (*models.Setting, error) {
	s := &models.Setting{}
	err := r.db.QueryRow(ctx, "SELECT id, name, parameters FROM settings WHERE name = $1", name).
		Scan(&s.ID, &s.Name, &s.Parameters)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSettingNotFound
		}
		return nil, fmt.Errorf("error getting setting by name: %w", err)
	}
	return s, nil
}

// Update replaces the parameters of an existing setting. Settings are seeded
// with the schema; names are never created through the API.
func (r *SettingRepository) Update(ctx context.Context, s *models.Setting) error {
	cmdTag, err := r.db.Exec(ctx,
		"UPDATE settings SET parameters = $1 WHERE id = $2", s.Parameters, s.ID)
	if err != nil {
		return fmt.Errorf("error updating setting: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSettingNotFound
	}
	return nil
}
