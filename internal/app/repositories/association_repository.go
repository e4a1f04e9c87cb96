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

// AssociationFilter narrows association listings. Dimensions combine with AND.
type AssociationFilter struct {
	Name            string
	Acronym         string
	InstitutionIDs  []int64
	ActivityFieldID *int64
	IsEnabled       *bool
	IsPublic        *bool
	IsSite          *bool
	UserID          *int64
	Page            int
	PageSize        int
}

const associationColumns = `id, name, name_folded, acronym, institution_id, institution_component_id,
	activity_field_id, email, address, phone, website, social_networks,
	is_enabled, is_site, is_public, can_submit_projects, amount_members_allowed,
	charter_status, charter_date, creation_date, edition_date, last_goa_date`

// AssociationRepository handles association database operations
type AssociationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssociationRepository creates a new AssociationRepository
func NewAssociationRepository(db *pgxpool.Pool) *AssociationRepository {
	return &AssociationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanAssociation(row pgx.Row) (*models.Association, error) {
	a := &models.Association{}
	var folded string
	err := row.Scan(
		&a.ID, &a.Name, &folded, &a.Acronym, &a.InstitutionID, &a.InstitutionComponentID,
		&a.ActivityFieldID, &a.Email, &a.Address, &a.Phone, &a.Website, &a.SocialNetworks,
		&a.IsEnabled, &a.IsSite, &a.IsPublic, &a.CanSubmitProjects, &a.AmountMembersAllowed,
		&a.CharterStatus, &a.CharterDate, &a.CreationDate, &a.EditionDate, &a.LastGOADate)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts an association. The folded name is computed here so every
// write path enforces the same uniqueness rule.
func (r *AssociationRepository) Create(ctx context.Context, q Querier, a *models.Association) (int64, error) {
	sql, args, err := r.sb.Insert("associations").
		Columns("name", "name_folded", "acronym", "institution_id", "institution_component_id",
			"activity_field_id", "email", "address", "phone", "website", "social_networks",
			"is_enabled", "is_site", "is_public", "can_submit_projects", "amount_members_allowed",
			"charter_status", "charter_date", "last_goa_date").
		Values(a.Name, textfold.Fold(a.Name), a.Acronym, a.InstitutionID, a.InstitutionComponentID,
			a.ActivityFieldID, a.Email, a.Address, a.Phone, a.Website, a.SocialNetworks,
			a.IsEnabled, a.IsSite, a.IsPublic, a.CanSubmitProjects, a.AmountMembersAllowed,
			a.CharterStatus, a.CharterDate, a.LastGOADate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create association query: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrAssociationNameTaken
		}
		logger.Error().Err(err).Msg("Error executing create association query")
		return 0, fmt.Errorf("error creating association: %w", err)
	}
	return id, nil
}

// GetByID retrieves an association with its institution loaded
func (r *AssociationRepository) GetByID(ctx context.Context, id int64) (*models.Association, error) {
	sql := "SELECT " + associationColumns + " FROM associations WHERE id = $1"
	a, err := scanAssociation(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("associationID", id).Msg("Error scanning association row")
		return nil, fmt.Errorf("error getting association by ID: %w", err)
	}

	instSql := "SELECT id, name, acronym, contact_email FROM institutions WHERE id = $1"
	inst := &models.Institution{}
	err = r.db.QueryRow(ctx, instSql, a.InstitutionID).Scan(&inst.ID, &inst.Name, &inst.Acronym, &inst.ContactEmail)
	if err == nil {
		a.Institution = inst
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("error loading association institution: %w", err)
	}
	return a, nil
}

// LockByID retrieves an association FOR UPDATE inside a transaction. Used to
// serialize membership writes against the capacity ceiling.
func (r *AssociationRepository) LockByID(ctx context.Context, q Querier, id int64) (*models.Association, error) {
	sql := "SELECT " + associationColumns + " FROM associations WHERE id = $1 FOR UPDATE"
	a, err := scanAssociation(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error locking association: %w", err)
	}
	return a, nil
}

// GetAll retrieves associations matching the filter, with pagination
func (r *AssociationRepository) GetAll(ctx context.Context, filter AssociationFilter) ([]*models.Association, int, error) {
	query := r.sb.Select("a.id", "a.name", "a.name_folded", "a.acronym", "a.institution_id", "a.institution_component_id",
		"a.activity_field_id", "a.email", "a.address", "a.phone", "a.website", "a.social_networks",
		"a.is_enabled", "a.is_site", "a.is_public", "a.can_submit_projects", "a.amount_members_allowed",
		"a.charter_status", "a.charter_date", "a.creation_date", "a.edition_date", "a.last_goa_date",
		"COUNT(*) OVER() AS total_count").
		From("associations a")

	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"a.name": "%" + filter.Name + "%"})
	}
	if filter.Acronym != "" {
		query = query.Where(squirrel.ILike{"a.acronym": "%" + filter.Acronym + "%"})
	}
	if len(filter.InstitutionIDs) > 0 {
		query = query.Where(squirrel.Eq{"a.institution_id": filter.InstitutionIDs})
	}
	if filter.ActivityFieldID != nil {
		query = query.Where(squirrel.Eq{"a.activity_field_id": *filter.ActivityFieldID})
	}
	if filter.IsEnabled != nil {
		query = query.Where(squirrel.Eq{"a.is_enabled": *filter.IsEnabled})
	}
	if filter.IsPublic != nil {
		query = query.Where(squirrel.Eq{"a.is_public": *filter.IsPublic})
	}
	if filter.IsSite != nil {
		query = query.Where(squirrel.Eq{"a.is_site": *filter.IsSite})
	}
	if filter.UserID != nil {
		query = query.Join("association_users au ON au.association_id = a.id").
			Where(squirrel.Eq{"au.user_id": *filter.UserID})
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query = query.OrderBy("a.name ASC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list associations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying associations: %w", err)
	}
	defer rows.Close()

	associations := []*models.Association{}
	total := 0
	for rows.Next() {
		a := &models.Association{}
		var folded string
		err := rows.Scan(
			&a.ID, &a.Name, &folded, &a.Acronym, &a.InstitutionID, &a.InstitutionComponentID,
			&a.ActivityFieldID, &a.Email, &a.Address, &a.Phone, &a.Website, &a.SocialNetworks,
			&a.IsEnabled, &a.IsSite, &a.IsPublic, &a.CanSubmitProjects, &a.AmountMembersAllowed,
			&a.CharterStatus, &a.CharterDate, &a.CreationDate, &a.EditionDate, &a.LastGOADate,
			&total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning association row: %w", err)
		}
		associations = append(associations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating association rows: %w", err)
	}
	return associations, total, nil
}

// GetNames retrieves the id and name of every enabled association,
// alphabetically. Backs the public picker list.
func (r *AssociationRepository) GetNames(ctx context.Context) ([]*models.Association, error) {
	sql := `SELECT id, name, acronym, institution_id FROM associations
	WHERE is_enabled = TRUE ORDER BY name`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("error querying association names: %w", err)
	}
	defer rows.Close()

	associations := []*models.Association{}
	for rows.Next() {
		a := &models.Association{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Acronym, &a.InstitutionID); err != nil {
			return nil, fmt.Errorf("error scanning association name row: %w", err)
		}
		associations = append(associations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating association name rows: %w", err)
	}
	return associations, nil
}

// Update persists every mutable column of the association, refreshing the
// folded name and edition date.
func (r *AssociationRepository) Update(ctx context.Context, q Querier, a *models.Association) error {
	sql, args, err := r.sb.Update("associations").
		SetMap(map[string]interface{}{
			"name":                     a.Name,
			"name_folded":              textfold.Fold(a.Name),
			"acronym":                  a.Acronym,
			"institution_id":           a.InstitutionID,
			"institution_component_id": a.InstitutionComponentID,
			"activity_field_id":        a.ActivityFieldID,
			"email":                    a.Email,
			"address":                  a.Address,
			"phone":                    a.Phone,
			"website":                  a.Website,
			"social_networks":          a.SocialNetworks,
			"is_enabled":               a.IsEnabled,
			"is_site":                  a.IsSite,
			"is_public":                a.IsPublic,
			"can_submit_projects":      a.CanSubmitProjects,
			"amount_members_allowed":   a.AmountMembersAllowed,
			"charter_status":           a.CharterStatus,
			"charter_date":             a.CharterDate,
			"last_goa_date":            a.LastGOADate,
			"edition_date":             squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update association query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAssociationNameTaken
		}
		logger.Error().Err(err).Int64("associationID", a.ID).Msg("Error executing update association query")
		return fmt.Errorf("error updating association: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// Delete removes an association. Memberships, uploads and projects cascade.
func (r *AssociationRepository) Delete(ctx context.Context, q Querier, id int64) error {
	sql, args, err := r.sb.Delete("associations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete association query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting association: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// ExistsFoldedName reports whether another association already uses a name
// that folds to the same canonical form.
func (r *AssociationRepository) ExistsFoldedName(ctx context.Context, name string, excludeID int64) (bool, error) {
	sql := "SELECT EXISTS (SELECT 1 FROM associations WHERE name_folded = $1 AND id <> $2)"
	var exists bool
	if err := r.db.QueryRow(ctx, sql, textfold.Fold(name), excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking folded association name: %w", err)
	}
	return exists, nil
}

// GetExpiredGOA returns enabled associations whose last ordinary general
// assembly is older than the cutoff, or missing entirely.
func (r *AssociationRepository) GetExpiredGOA(ctx context.Context, cutoff time.Time) ([]*models.Association, error) {
	query := r.sb.Select("id", "name", "name_folded", "acronym", "institution_id", "institution_component_id",
		"activity_field_id", "email", "address", "phone", "website", "social_networks",
		"is_enabled", "is_site", "is_public", "can_submit_projects", "amount_members_allowed",
		"charter_status", "charter_date", "creation_date", "edition_date", "last_goa_date").
		From("associations").
		Where(squirrel.Eq{"is_enabled": true}).
		Where(squirrel.Or{
			squirrel.Eq{"last_goa_date": nil},
			squirrel.Lt{"last_goa_date": cutoff},
		})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build expired GOA query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying expired GOA associations: %w", err)
	}
	defer rows.Close()

	associations := []*models.Association{}
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning association row: %w", err)
		}
		associations = append(associations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating association rows: %w", err)
	}
	return associations, nil
}

// GetByCharterStatus returns associations currently in the given charter states
func (r *AssociationRepository) GetByCharterStatus(ctx context.Context, statuses []models.CharterStatus) ([]*models.Association, error) {
	sql, args, err := r.sb.Select("id", "name", "name_folded", "acronym", "institution_id", "institution_component_id",
		"activity_field_id", "email", "address", "phone", "website", "social_networks",
		"is_enabled", "is_site", "is_public", "can_submit_projects", "amount_members_allowed",
		"charter_status", "charter_date", "creation_date", "edition_date", "last_goa_date").
		From("associations").
		Where(squirrel.Eq{"charter_status": statuses}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build charter status query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying associations by charter status: %w", err)
	}
	defer rows.Close()

	associations := []*models.Association{}
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning association row: %w", err)
		}
		associations = append(associations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating association rows: %w", err)
	}
	return associations, nil
}
