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

// DocumentUploadFilter narrows upload listings
type DocumentUploadFilter struct {
	UserID        *int64
	AssociationID *int64
	ProjectID     *int64
	ProcessTypes  []models.ProcessType
}

const documentUploadColumns = `du.id, du.document_id, du.user_id, du.association_id, du.project_id,
	du.path, du.upload_date, du.validated_date, du.comment`

// DocumentUploadRepository handles uploaded document database operations
type DocumentUploadRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDocumentUploadRepository creates a new DocumentUploadRepository
func NewDocumentUploadRepository(db *pgxpool.Pool) *DocumentUploadRepository {
	return &DocumentUploadRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an upload row
func (r *DocumentUploadRepository) Create(ctx context.Context, u *models.DocumentUpload) (int64, error) {
	sql, args, err := r.sb.Insert("document_uploads").
		Columns("document_id", "user_id", "association_id", "project_id", "path", "comment").
		Values(u.DocumentID, u.UserID, u.AssociationID, u.ProjectID, u.Path, u.Comment).
		Suffix("RETURNING id, upload_date").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create upload query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id, &u.UploadDate); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrConflict
		}
		return 0, fmt.Errorf("error creating document upload: %w", err)
	}
	return id, nil
}

// GetByID retrieves an upload with its document type loaded
func (r *DocumentUploadRepository) GetByID(ctx context.Context, id int64) (*models.DocumentUpload, error) {
	sql := `SELECT ` + documentUploadColumns + `,
		d.id, d.name, d.acronym, d.process_type, d.is_multiple, d.is_required_in_process,
		d.days_before_expiration, d.expiration_day, d.mime_types, d.institution_id, d.fund_id, d.path_template
	FROM document_uploads du
	JOIN documents d ON d.id = du.document_id
	WHERE du.id = $1`

	u := &models.DocumentUpload{Document: &models.Document{}}
	d := u.Document
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&u.ID, &u.DocumentID, &u.UserID, &u.AssociationID, &u.ProjectID,
		&u.Path, &u.UploadDate, &u.ValidatedDate, &u.Comment,
		&d.ID, &d.Name, &d.Acronym, &d.ProcessType, &d.IsMultiple, &d.IsRequiredInProcess,
		&d.DaysBeforeExpiration, &d.ExpirationDay, &d.MimeTypes, &d.InstitutionID, &d.FundID, &d.PathTemplate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting document upload by ID: %w", err)
	}
	return u, nil
}

// GetAll retrieves uploads matching the filter, document types loaded
func (r *DocumentUploadRepository) GetAll(ctx context.Context, filter DocumentUploadFilter) ([]*models.DocumentUpload, error) {
	query := r.sb.Select("du.id", "du.document_id", "du.user_id", "du.association_id", "du.project_id",
		"du.path", "du.upload_date", "du.validated_date", "du.comment",
		"d.id", "d.name", "d.acronym", "d.process_type", "d.is_multiple", "d.is_required_in_process",
		"d.days_before_expiration", "d.expiration_day", "d.mime_types", "d.institution_id", "d.fund_id", "d.path_template").
		From("document_uploads du").
		Join("documents d ON d.id = du.document_id")

	if filter.UserID != nil {
		query = query.Where(squirrel.Eq{"du.user_id": *filter.UserID})
	}
	if filter.AssociationID != nil {
		query = query.Where(squirrel.Eq{"du.association_id": *filter.AssociationID})
	}
	if filter.ProjectID != nil {
		query = query.Where(squirrel.Eq{"du.project_id": *filter.ProjectID})
	}
	if len(filter.ProcessTypes) > 0 {
		query = query.Where(squirrel.Eq{"d.process_type": filter.ProcessTypes})
	}
	query = query.OrderBy("du.upload_date DESC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list uploads query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying document uploads: %w", err)
	}
	defer rows.Close()

	uploads := []*models.DocumentUpload{}
	for rows.Next() {
		u := &models.DocumentUpload{Document: &models.Document{}}
		d := u.Document
		err := rows.Scan(
			&u.ID, &u.DocumentID, &u.UserID, &u.AssociationID, &u.ProjectID,
			&u.Path, &u.UploadDate, &u.ValidatedDate, &u.Comment,
			&d.ID, &d.Name, &d.Acronym, &d.ProcessType, &d.IsMultiple, &d.IsRequiredInProcess,
			&d.DaysBeforeExpiration, &d.ExpirationDay, &d.MimeTypes, &d.InstitutionID, &d.FundID, &d.PathTemplate)
		if err != nil {
			return nil, fmt.Errorf("error scanning upload row: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating upload rows: %w", err)
	}
	return uploads, nil
}

// CountForOwner counts uploads of a document type for the given owner key.
// Used to refuse duplicate uploads of single-instance types.
func (r *DocumentUploadRepository) CountForOwner(ctx context.Context, documentID int64, userID, associationID, projectID *int64) (int, error) {
	query := r.sb.Select("COUNT(*)").
		From("document_uploads").
		Where(squirrel.Eq{"document_id": documentID})
	if userID != nil {
		query = query.Where(squirrel.Eq{"user_id": *userID})
	}
	if associationID != nil {
		query = query.Where(squirrel.Eq{"association_id": *associationID})
	}
	if projectID != nil {
		query = query.Where(squirrel.Eq{"project_id": *projectID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count uploads query: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting document uploads: %w", err)
	}
	return count, nil
}

// SetValidated stamps or clears the validation date
func (r *DocumentUploadRepository) SetValidated(ctx context.Context, id int64, validatedDate *time.Time, comment *string) error {
	sql, args, err := r.sb.Update("document_uploads").
		SetMap(map[string]interface{}{
			"validated_date": validatedDate,
			"comment":        comment,
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build validate upload query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error validating document upload: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// Delete removes an upload row
func (r *DocumentUploadRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, "DELETE FROM document_uploads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting document upload: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// GetExpiredRolling returns validated uploads of rolling-expiration types
// whose validation date plus the type's day count falls before the cutoff.
func (r *DocumentUploadRepository) GetExpiredRolling(ctx context.Context, today time.Time, warningDays int) ([]*models.DocumentUpload, error) {
	// warningDays shifts the horizon forward so the same query serves both
	// the warning pass and the deletion pass.
	sql := `SELECT ` + documentUploadColumns + `,
		d.id, d.name, d.acronym, d.process_type, d.is_multiple, d.is_required_in_process,
		d.days_before_expiration, d.expiration_day, d.mime_types, d.institution_id, d.fund_id, d.path_template
	FROM document_uploads du
	JOIN documents d ON d.id = du.document_id
	WHERE d.days_before_expiration IS NOT NULL
	AND du.validated_date IS NOT NULL
	AND du.validated_date + (d.days_before_expiration || ' days')::interval <= $1::date + ($2 || ' days')::interval`

	rows, err := r.db.Query(ctx, sql, today, warningDays)
	if err != nil {
		return nil, fmt.Errorf("error querying expired uploads: %w", err)
	}
	defer rows.Close()

	uploads := []*models.DocumentUpload{}
	for rows.Next() {
		u := &models.DocumentUpload{Document: &models.Document{}}
		d := u.Document
		err := rows.Scan(
			&u.ID, &u.DocumentID, &u.UserID, &u.AssociationID, &u.ProjectID,
			&u.Path, &u.UploadDate, &u.ValidatedDate, &u.Comment,
			&d.ID, &d.Name, &d.Acronym, &d.ProcessType, &d.IsMultiple, &d.IsRequiredInProcess,
			&d.DaysBeforeExpiration, &d.ExpirationDay, &d.MimeTypes, &d.InstitutionID, &d.FundID, &d.PathTemplate)
		if err != nil {
			return nil, fmt.Errorf("error scanning upload row: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating upload rows: %w", err)
	}
	return uploads, nil
}

// GetByExpirationDay returns validated uploads of fixed-annual types whose
// expiration day matches the given "MM-DD" string.
func (r *DocumentUploadRepository) GetByExpirationDay(ctx context.Context, monthDay string) ([]*models.DocumentUpload, error) {
	sql := `SELECT ` + documentUploadColumns + `,
		d.id, d.name, d.acronym, d.process_type, d.is_multiple, d.is_required_in_process,
		d.days_before_expiration, d.expiration_day, d.mime_types, d.institution_id, d.fund_id, d.path_template
	FROM document_uploads du
	JOIN documents d ON d.id = du.document_id
	WHERE d.expiration_day = $1
	AND du.validated_date IS NOT NULL`

	rows, err := r.db.Query(ctx, sql, monthDay)
	if err != nil {
		return nil, fmt.Errorf("error querying uploads by expiration day: %w", err)
	}
	defer rows.Close()

	uploads := []*models.DocumentUpload{}
	for rows.Next() {
		u := &models.DocumentUpload{Document: &models.Document{}}
		d := u.Document
		err := rows.Scan(
			&u.ID, &u.DocumentID, &u.UserID, &u.AssociationID, &u.ProjectID,
			&u.Path, &u.UploadDate, &u.ValidatedDate, &u.Comment,
			&d.ID, &d.Name, &d.Acronym, &d.ProcessType, &d.IsMultiple, &d.IsRequiredInProcess,
			&d.DaysBeforeExpiration, &d.ExpirationDay, &d.MimeTypes, &d.InstitutionID, &d.FundID, &d.PathTemplate)
		if err != nil {
			return nil, fmt.Errorf("error scanning upload row: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating upload rows: %w", err)
	}
	return uploads, nil
}
