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
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/dberrors"
)

const documentColumns = `id, name, acronym, process_type, is_multiple, is_required_in_process,
	days_before_expiration, expiration_day, mime_types, institution_id, fund_id, path_template`

// DocumentRepository handles document type database operations
type DocumentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	d := &models.Document{}
	err := row.Scan(
		&d.ID, &d.Name, &d.Acronym, &d.ProcessType, &d.IsMultiple, &d.IsRequiredInProcess,
		&d.DaysBeforeExpiration, &d.ExpirationDay, &d.MimeTypes, &d.InstitutionID, &d.FundID, &d.PathTemplate)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a document type definition
func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) (int64, error) {
	sql, args, err := r.sb.Insert("documents").
		Columns("name", "acronym", "process_type", "is_multiple", "is_required_in_process",
			"days_before_expiration", "expiration_day", "mime_types", "institution_id", "fund_id", "path_template").
		Values(d.Name, d.Acronym, d.ProcessType, d.IsMultiple, d.IsRequiredInProcess,
			d.DaysBeforeExpiration, d.ExpirationDay, d.MimeTypes, d.InstitutionID, d.FundID, d.PathTemplate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create document query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrConflict
		}
		return 0, fmt.Errorf("error creating document: %w", err)
	}
	return id, nil
}

// GetByID retrieves a document type by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	sql := "SELECT " + documentColumns + " FROM documents WHERE id = $1"
	d, err := scanDocument(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting document by ID: %w", err)
	}
	return d, nil
}

// GetAll retrieves document types, optionally narrowed by process types and fund
func (r *DocumentRepository) GetAll(ctx context.Context, processTypes []models.ProcessType, fundID *int64) ([]*models.Document, error) {
	query := r.sb.Select("id", "name", "acronym", "process_type", "is_multiple", "is_required_in_process",
		"days_before_expiration", "expiration_day", "mime_types", "institution_id", "fund_id", "path_template").
		From("documents")

	if len(processTypes) > 0 {
		query = query.Where(squirrel.Eq{"process_type": processTypes})
	}
	if fundID != nil {
		query = query.Where(squirrel.Eq{"fund_id": *fundID})
	}
	query = query.OrderBy("name ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list documents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	defer rows.Close()

	documents := []*models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return documents, nil
}

// GetRequiredByProcessTypes returns the required document type ids per process
func (r *DocumentRepository) GetRequiredByProcessTypes(ctx context.Context, processTypes []models.ProcessType) ([]*models.Document, error) {
	sql, args, err := r.sb.Select("id", "name", "acronym", "process_type", "is_multiple", "is_required_in_process",
		"days_before_expiration", "expiration_day", "mime_types", "institution_id", "fund_id", "path_template").
		From("documents").
		Where(squirrel.Eq{"process_type": processTypes}).
		Where(squirrel.Eq{"is_required_in_process": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build required documents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying required documents: %w", err)
	}
	defer rows.Close()

	documents := []*models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return documents, nil
}

// Update persists the mutable columns of a document type
func (r *DocumentRepository) Update(ctx context.Context, d *models.Document) error {
	sql, args, err := r.sb.Update("documents").
		SetMap(map[string]interface{}{
			"name":                   d.Name,
			"acronym":                d.Acronym,
			"is_multiple":            d.IsMultiple,
			"is_required_in_process": d.IsRequiredInProcess,
			"days_before_expiration": d.DaysBeforeExpiration,
			"expiration_day":         d.ExpirationDay,
			"mime_types":             d.MimeTypes,
		}).
		Where(squirrel.Eq{"id": d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update document query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating document: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// Delete removes a document type definition
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		if dberrors.IsRestrictViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("error deleting document: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}
