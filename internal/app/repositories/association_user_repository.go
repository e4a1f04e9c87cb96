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

const associationUserColumns = `id, user_id, association_id, is_president, is_vice_president,
	is_secretary, is_treasurer, can_be_president_from, can_be_president_to, is_validated_by_admin`

// AssociationUserRepository handles membership database operations
type AssociationUserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssociationUserRepository creates a new AssociationUserRepository
func NewAssociationUserRepository(db *pgxpool.Pool) *AssociationUserRepository {
	return &AssociationUserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanAssociationUser(row pgx.Row) (*models.AssociationUser, error) {
	m := &models.AssociationUser{}
	err := row.Scan(
		&m.ID, &m.UserID, &m.AssociationID, &m.IsPresident, &m.IsVicePresident,
		&m.IsSecretary, &m.IsTreasurer, &m.CanBePresidentFrom, &m.CanBePresidentTo, &m.IsValidatedByAdmin)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a membership. Must run inside the transaction that holds
// the association lock so the capacity ceiling stays exact.
func (r *AssociationUserRepository) Create(ctx context.Context, q Querier, m *models.AssociationUser) (int64, error) {
	sql, args, err := r.sb.Insert("association_users").
		Columns("user_id", "association_id", "is_president", "is_vice_president",
			"is_secretary", "is_treasurer", "can_be_president_from", "can_be_president_to",
			"is_validated_by_admin").
		Values(m.UserID, m.AssociationID, m.IsPresident, m.IsVicePresident,
			m.IsSecretary, m.IsTreasurer, m.CanBePresidentFrom, m.CanBePresidentTo,
			m.IsValidatedByAdmin).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create membership query: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrMembershipExists
		}
		return 0, fmt.Errorf("error creating membership: %w", err)
	}
	return id, nil
}

// GetByID retrieves a membership by ID
func (r *AssociationUserRepository) GetByID(ctx context.Context, id int64) (*models.AssociationUser, error) {
	sql := "SELECT " + associationUserColumns + " FROM association_users WHERE id = $1"
	m, err := scanAssociationUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting membership by ID: %w", err)
	}
	return m, nil
}

// GetByUserAndAssociation retrieves a membership by its natural key
func (r *AssociationUserRepository) GetByUserAndAssociation(ctx context.Context, userID, associationID int64) (*models.AssociationUser, error) {
	sql := "SELECT " + associationUserColumns + " FROM association_users WHERE user_id = $1 AND association_id = $2"
	m, err := scanAssociationUser(r.db.QueryRow(ctx, sql, userID, associationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting membership: %w", err)
	}
	return m, nil
}

// GetByAssociation retrieves the memberships of an association with users loaded
func (r *AssociationUserRepository) GetByAssociation(ctx context.Context, associationID int64) ([]*models.AssociationUser, error) {
	sql := `SELECT au.id, au.user_id, au.association_id, au.is_president, au.is_vice_president,
		au.is_secretary, au.is_treasurer, au.can_be_president_from, au.can_be_president_to,
		au.is_validated_by_admin,
		u.id, u.email, u.first_name, u.last_name
	FROM association_users au
	JOIN users u ON u.id = au.user_id
	WHERE au.association_id = $1
	ORDER BY u.last_name ASC, u.first_name ASC`

	rows, err := r.db.Query(ctx, sql, associationID)
	if err != nil {
		return nil, fmt.Errorf("error querying association memberships: %w", err)
	}
	defer rows.Close()

	memberships := []*models.AssociationUser{}
	for rows.Next() {
		m := &models.AssociationUser{User: &models.User{}}
		err := rows.Scan(
			&m.ID, &m.UserID, &m.AssociationID, &m.IsPresident, &m.IsVicePresident,
			&m.IsSecretary, &m.IsTreasurer, &m.CanBePresidentFrom, &m.CanBePresidentTo,
			&m.IsValidatedByAdmin,
			&m.User.ID, &m.User.Email, &m.User.FirstName, &m.User.LastName)
		if err != nil {
			return nil, fmt.Errorf("error scanning membership row: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return memberships, nil
}

// GetByUser retrieves every membership held by a user
func (r *AssociationUserRepository) GetByUser(ctx context.Context, userID int64) ([]*models.AssociationUser, error) {
	sql := "SELECT " + associationUserColumns + " FROM association_users WHERE user_id = $1"

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying user memberships: %w", err)
	}
	defer rows.Close()

	memberships := []*models.AssociationUser{}
	for rows.Next() {
		m, err := scanAssociationUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning membership row: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return memberships, nil
}

// CountMembers counts the memberships of an association. Run on the
// transaction querier when the association row is locked.
func (r *AssociationUserRepository) CountMembers(ctx context.Context, q Querier, associationID int64) (int, error) {
	var count int
	err := q.QueryRow(ctx, "SELECT COUNT(*) FROM association_users WHERE association_id = $1", associationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting association members: %w", err)
	}
	return count, nil
}

// HasPresident reports whether the association already has a sitting
// president, optionally excluding one membership.
func (r *AssociationUserRepository) HasPresident(ctx context.Context, q Querier, associationID, excludeID int64) (bool, error) {
	sql := `SELECT EXISTS (
		SELECT 1 FROM association_users
		WHERE association_id = $1 AND is_president AND id <> $2
	)`
	var exists bool
	if err := q.QueryRow(ctx, sql, associationID, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking association president: %w", err)
	}
	return exists, nil
}

// ClearPresident strips the presidency from every membership of the
// association except one. Run inside the transaction handing the role over.
func (r *AssociationUserRepository) ClearPresident(ctx context.Context, q Querier, associationID, exceptID int64) error {
	sql := `UPDATE association_users SET is_president = FALSE
		WHERE association_id = $1 AND is_president AND id <> $2`
	if _, err := q.Exec(ctx, sql, associationID, exceptID); err != nil {
		return fmt.Errorf("error clearing association president: %w", err)
	}
	return nil
}

// Update persists the mutable membership columns
func (r *AssociationUserRepository) Update(ctx context.Context, q Querier, m *models.AssociationUser) error {
	sql, args, err := r.sb.Update("association_users").
		SetMap(map[string]interface{}{
			"is_president":          m.IsPresident,
			"is_vice_president":     m.IsVicePresident,
			"is_secretary":          m.IsSecretary,
			"is_treasurer":          m.IsTreasurer,
			"can_be_president_from": m.CanBePresidentFrom,
			"can_be_president_to":   m.CanBePresidentTo,
			"is_validated_by_admin": m.IsValidatedByAdmin,
		}).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update membership query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating membership: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// Delete removes a membership
func (r *AssociationUserRepository) Delete(ctx context.Context, q Querier, id int64) error {
	cmdTag, err := q.Exec(ctx, "DELETE FROM association_users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting membership: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}
