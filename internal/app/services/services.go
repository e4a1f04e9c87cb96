package services

import (
	"github.com/rs/zerolog"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/config"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/db"
	pkgauth "github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/email"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/filestorage"
)

// Services holds all the service instances
type Services struct {
	AuthService        AuthService
	UserService        UserService
	AssociationService AssociationService
	CommissionService  CommissionService
	DocumentService    DocumentService
	ProjectService     ProjectService
	HistoryService     HistoryService
	SettingService     SettingService
}

// Dependencies bundles what the service layer needs beyond repositories
type Dependencies struct {
	DB             *db.PostgresDB
	Repos          *repositories.Repositories
	Authz          *auth.AuthorizationService
	JWT            *pkgauth.JWTService
	Notifier       email.Notifier
	PublicStorage  filestorage.Storage
	PrivateStorage filestorage.Storage
	Config         *config.Config
	Logger         zerolog.Logger
}

// NewServices initializes all services
func NewServices(deps Dependencies) *Services {
	historyService := NewHistoryService(deps.Repos.HistoryRepository, deps.Logger)
	return &Services{
		AuthService: NewAuthService(deps.Repos.UserRepository, deps.JWT, deps.Config, deps.Logger),
		UserService: NewUserService(deps.DB, deps.Repos.UserRepository, deps.Repos.AssociationUserRepository,
			historyService, deps.Logger),
		AssociationService: NewAssociationService(deps.DB, deps.Repos.AssociationRepository,
			deps.Repos.AssociationUserRepository, deps.Repos.InstitutionRepository,
			deps.Repos.UserRepository, deps.Repos.DocumentRepository, deps.Repos.DocumentUploadRepository,
			historyService, deps.Notifier, deps.Logger),
		CommissionService: NewCommissionService(deps.DB, deps.Repos.CommissionRepository,
			deps.Repos.FundRepository, deps.Repos.ProjectRepository, deps.Logger),
		DocumentService: NewDocumentService(deps.DB, deps.Repos.DocumentRepository,
			deps.Repos.DocumentUploadRepository, deps.Repos.ProjectRepository,
			deps.Repos.AssociationRepository, deps.Repos.ProjectCommissionFundRepository,
			deps.PublicStorage, deps.PrivateStorage, historyService, deps.Logger),
		ProjectService: NewProjectService(deps.DB, deps.Repos.ProjectRepository,
			deps.Repos.ProjectCommissionFundRepository, deps.Repos.CommissionRepository,
			deps.Repos.AssociationRepository, deps.Repos.DocumentRepository,
			deps.Repos.DocumentUploadRepository, historyService, deps.Notifier, deps.Logger),
		HistoryService: historyService,
		SettingService: NewSettingService(deps.Repos.SettingRepository, deps.Logger),
	}
}
