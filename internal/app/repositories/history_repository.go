package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// HistoryFilter narrows audit listings
type HistoryFilter struct {
	ActionTitles []models.HistoryAction
	UserID       *int64
	Page         int
	PageSize     int
}

// HistoryRepository handles the append-only audit log
type HistoryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends an audit row. Runs on the querier so writes land in the
// same transaction as the change they record.
func (r *HistoryRepository) Create(ctx context.Context, q Querier, h *models.History) error {
	sql, args, err := r.sb.Insert("histories").
		Columns("action_title", "action_user_id", "user_id", "association_id",
			"association_user_id", "group_institution_fund_user_id", "document_upload_id", "project_id").
		Values(h.ActionTitle, h.ActionUserID, h.UserID, h.AssociationID,
			h.AssociationUserID, h.GroupInstitutionFundUserID, h.DocumentUploadID, h.ProjectID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create history query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error appending history row: %w", err)
	}
	return nil
}

// GetAll retrieves audit rows, newest first
func (r *HistoryRepository) GetAll(ctx context.Context, filter HistoryFilter) ([]*models.History, int, error) {
	query := r.sb.Select("id", "action_title", "action_user_id", "creation_date",
		"user_id", "association_id", "association_user_id", "group_institution_fund_user_id",
		"document_upload_id", "project_id", "COUNT(*) OVER() AS total_count").
		From("histories")

	if len(filter.ActionTitles) > 0 {
		query = query.Where(squirrel.Eq{"action_title": filter.ActionTitles})
	}
	if filter.UserID != nil {
		query = query.Where(squirrel.Eq{"action_user_id": *filter.UserID})
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	query = query.OrderBy("creation_date DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list histories query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying histories: %w", err)
	}
	defer rows.Close()

	histories := []*models.History{}
	total := 0
	for rows.Next() {
		h := &models.History{}
		err := rows.Scan(&h.ID, &h.ActionTitle, &h.ActionUserID, &h.CreationDate,
			&h.UserID, &h.AssociationID, &h.AssociationUserID, &h.GroupInstitutionFundUserID,
			&h.DocumentUploadID, &h.ProjectID, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning history row: %w", err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating history rows: %w", err)
	}
	return histories, total, nil
}

// PurgeBefore deletes audit rows older than the cutoff and returns how many
// were removed.
func (r *HistoryRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, "DELETE FROM histories WHERE creation_date < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("error purging history rows: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
