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
)

// UserFilter narrows user listings
type UserFilter struct {
	Search             string
	IsValidatedByAdmin *bool
	AssociationID      *int64
	InstitutionIDs     []int64
	Page               int
	PageSize           int
}

const userColumns = `id, email, first_name, last_name, password_hash, is_validated_by_admin,
	is_staff, is_cas, date_joined, last_login, password_last_change_date`

// UserRepository handles user and group database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsValidatedByAdmin,
		&u.IsStaff, &u.IsCas, &u.DateJoined, &u.LastLogin, &u.PasswordLastChangeDate)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "first_name", "last_name", "password_hash",
			"is_validated_by_admin", "is_staff", "is_cas", "password_last_change_date").
		Values(u.Email, u.FirstName, u.LastName, u.PasswordHash,
			u.IsValidatedByAdmin, u.IsStaff, u.IsCas, u.PasswordLastChangeDate).
		Suffix("RETURNING id, date_joined").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id, &u.DateJoined); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrConflict
		}
		logger.Error().Err(err).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}
	return id, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql := "SELECT " + userColumns + " FROM users WHERE id = $1"
	u, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql := "SELECT " + userColumns + " FROM users WHERE LOWER(email) = LOWER($1)"
	u, err := scanUser(r.db.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting user by email: %w", err)
	}
	return u, nil
}

// GetAll retrieves users matching the filter
func (r *UserRepository) GetAll(ctx context.Context, filter UserFilter) ([]*models.User, int, error) {
	query := r.sb.Select("u.id", "u.email", "u.first_name", "u.last_name", "u.password_hash",
		"u.is_validated_by_admin", "u.is_staff", "u.is_cas", "u.date_joined", "u.last_login",
		"u.password_last_change_date", "COUNT(*) OVER() AS total_count").
		From("users u")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"u.first_name": pattern},
			squirrel.ILike{"u.last_name": pattern},
			squirrel.ILike{"u.email": pattern},
		})
	}
	if filter.IsValidatedByAdmin != nil {
		query = query.Where(squirrel.Eq{"u.is_validated_by_admin": *filter.IsValidatedByAdmin})
	}
	if filter.AssociationID != nil {
		query = query.Join("association_users au ON au.user_id = u.id").
			Where(squirrel.Eq{"au.association_id": *filter.AssociationID})
	}
	if len(filter.InstitutionIDs) > 0 {
		query = query.Where(squirrel.Expr(`EXISTS (
			SELECT 1 FROM association_users au2
			JOIN associations a ON a.id = au2.association_id
			WHERE au2.user_id = u.id AND a.institution_id = ANY(?)
		)`, filter.InstitutionIDs))
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query = query.OrderBy("u.last_name ASC, u.first_name ASC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	total := 0
	for rows.Next() {
		u := &models.User{}
		err := rows.Scan(
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsValidatedByAdmin,
			&u.IsStaff, &u.IsCas, &u.DateJoined, &u.LastLogin, &u.PasswordLastChangeDate,
			&total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}

// Update persists the mutable user columns
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	sql, args, err := r.sb.Update("users").
		SetMap(map[string]interface{}{
			"email":                     u.Email,
			"first_name":                u.FirstName,
			"last_name":                 u.LastName,
			"password_hash":             u.PasswordHash,
			"is_validated_by_admin":     u.IsValidatedByAdmin,
			"is_staff":                  u.IsStaff,
			"last_login":                u.LastLogin,
			"password_last_change_date": u.PasswordLastChangeDate,
		}).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// TouchLastLogin stamps the last login time
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET last_login = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error stamping last login: %w", err)
	}
	return nil
}

// Delete removes a user; memberships and group links cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// GetInactiveSince returns non-staff users whose last activity predates the
// cutoff. Users who never logged in are measured from their join date.
func (r *UserRepository) GetInactiveSince(ctx context.Context, cutoff time.Time) ([]*models.User, error) {
	sql := "SELECT " + userColumns + ` FROM users
		WHERE NOT is_staff
		AND COALESCE(last_login, date_joined) < $1`
	rows, err := r.db.Query(ctx, sql, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying inactive users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// GetPasswordChangedBefore returns local-account users whose password is
// older than the cutoff. CAS accounts are excluded, their credentials live
// elsewhere.
func (r *UserRepository) GetPasswordChangedBefore(ctx context.Context, cutoff time.Time) ([]*models.User, error) {
	sql := "SELECT " + userColumns + ` FROM users
		WHERE NOT is_cas
		AND password_last_change_date IS NOT NULL
		AND password_last_change_date < $1`
	rows, err := r.db.Query(ctx, sql, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying stale passwords: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// --- Groups ---

// GetAllGroups retrieves the group catalog
func (r *UserRepository) GetAllGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, registration_allowed, associations_possible, institution_id_possible, fund_id_possible
		FROM groups ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.RegistrationAllowed, &g.AssociationsPossible,
			&g.InstitutionIDPossible, &g.FundIDPossible); err != nil {
			return nil, fmt.Errorf("error scanning group row: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return groups, nil
}

// GetGroupByID retrieves a group by ID
func (r *UserRepository) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	g := &models.Group{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, registration_allowed, associations_possible, institution_id_possible, fund_id_possible
		FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.RegistrationAllowed, &g.AssociationsPossible,
			&g.InstitutionIDPossible, &g.FundIDPossible)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting group by ID: %w", err)
	}
	return g, nil
}

// CreateGroupLink attaches a user to a group with optional scoping
func (r *UserRepository) CreateGroupLink(ctx context.Context, link *models.GroupInstitutionFundUser) (int64, error) {
	sql, args, err := r.sb.Insert("group_institution_fund_users").
		Columns("user_id", "group_id", "institution_id", "fund_id").
		Values(link.UserID, link.GroupID, link.InstitutionID, link.FundID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create group link query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrConflict
		}
		return 0, fmt.Errorf("error creating group link: %w", err)
	}
	return id, nil
}

// GetGroupLinks retrieves a user's group links with groups loaded
func (r *UserRepository) GetGroupLinks(ctx context.Context, userID int64) ([]*models.GroupInstitutionFundUser, error) {
	sql := `SELECT l.id, l.user_id, l.group_id, l.institution_id, l.fund_id,
		g.id, g.name, g.registration_allowed, g.associations_possible, g.institution_id_possible, g.fund_id_possible
	FROM group_institution_fund_users l
	JOIN groups g ON g.id = l.group_id
	WHERE l.user_id = $1`

	rows, err := r.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying group links: %w", err)
	}
	defer rows.Close()

	links := []*models.GroupInstitutionFundUser{}
	for rows.Next() {
		l := &models.GroupInstitutionFundUser{Group: &models.Group{}}
		g := l.Group
		err := rows.Scan(&l.ID, &l.UserID, &l.GroupID, &l.InstitutionID, &l.FundID,
			&g.ID, &g.Name, &g.RegistrationAllowed, &g.AssociationsPossible,
			&g.InstitutionIDPossible, &g.FundIDPossible)
		if err != nil {
			return nil, fmt.Errorf("error scanning group link row: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group link rows: %w", err)
	}
	return links, nil
}

// DeleteGroupLink removes a group link
func (r *UserRepository) DeleteGroupLink(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, "DELETE FROM group_institution_fund_users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting group link: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// GetManagersByInstitution returns staff users holding a group link scoped
// to the given institution.
func (r *UserRepository) GetManagersByInstitution(ctx context.Context, institutionID int64) ([]*models.User, error) {
	sql := `SELECT DISTINCT u.id, u.email, u.first_name, u.last_name, u.password_hash,
		u.is_validated_by_admin, u.is_staff, u.is_cas, u.date_joined, u.last_login,
		u.password_last_change_date
	FROM users u
	JOIN group_institution_fund_users gifu ON gifu.user_id = u.id
	WHERE u.is_staff
	AND gifu.institution_id = $1`
	rows, err := r.db.Query(ctx, sql, institutionID)
	if err != nil {
		return nil, fmt.Errorf("error querying institution managers: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
