package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx so repository
// methods can run inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	InstitutionRepository    *InstitutionRepository
	FundRepository           *FundRepository
	CommissionRepository     *CommissionRepository
	AssociationRepository    *AssociationRepository
	AssociationUserRepository *AssociationUserRepository
	DocumentRepository       *DocumentRepository
	DocumentUploadRepository *DocumentUploadRepository
	ProjectRepository        *ProjectRepository
	ProjectCommissionFundRepository *ProjectCommissionFundRepository
	UserRepository           *UserRepository
	HistoryRepository        *HistoryRepository
	SettingRepository        *SettingRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		InstitutionRepository:    NewInstitutionRepository(db),
		FundRepository:           NewFundRepository(db),
		CommissionRepository:     NewCommissionRepository(db),
		AssociationRepository:    NewAssociationRepository(db),
		AssociationUserRepository: NewAssociationUserRepository(db),
		DocumentRepository:       NewDocumentRepository(db),
		DocumentUploadRepository: NewDocumentUploadRepository(db),
		ProjectRepository:        NewProjectRepository(db),
		ProjectCommissionFundRepository: NewProjectCommissionFundRepository(db),
		UserRepository:           NewUserRepository(db),
		HistoryRepository:        NewHistoryRepository(db),
		SettingRepository:        NewSettingRepository(db),
	}
}
