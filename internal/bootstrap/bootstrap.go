package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filippo.io/age"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appauth "github.com/EsupPortail/esup-campulse-back-sub000/internal/app/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/controllers"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/migrations"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/routes"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/services"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/config"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/db"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/jobs"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/middleware"
	pkgauth "github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/email"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/filestorage"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/logger"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/seed"
)

// Dependencies holds the wired application graph.
type Dependencies struct {
	Database       *db.PostgresDB
	Repos          *repositories.Repositories
	Services       *services.Services
	Controllers    *controllers.Controllers
	AuthMiddleware *middleware.AuthMiddleware
	JWTService     *pkgauth.JWTService
	AuthzService   *appauth.AuthorizationService
	Notifier       email.Notifier
	PublicStorage  filestorage.Storage
	PrivateStorage filestorage.Storage
	JobRunner      *jobs.Runner
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the connection pool, applies migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	if err := migrations.NewMigrator(database.Pool).MigrateFromDirectory(migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		// Seeding problems are logged but never block startup.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies wires repositories, services, controllers and the job
// runner.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Database: database, Logger: lgr}

	deps.Repos = repositories.NewRepositories(database.Pool)

	publicStorage, err := filestorage.NewLocalStorage(cfg.Storage.PublicPath, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize public storage: %w", err)
	}
	deps.PublicStorage = publicStorage

	privateBackend, err := filestorage.NewLocalStorage(cfg.Storage.PrivatePath, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize private storage: %w", err)
	}
	recipientStr, identityStr := cfg.Storage.AgeRecipient, cfg.Storage.AgeIdentity
	if recipientStr == "" || identityStr == "" {
		// Ephemeral key for development setups. Private uploads written
		// with it are unreadable after a restart.
		identity, err := age.GenerateX25519Identity()
		if err != nil {
			return nil, fmt.Errorf("failed to generate age identity: %w", err)
		}
		recipientStr = identity.Recipient().String()
		identityStr = identity.String()
		lgr.Warn().Msg("No age key pair configured, generated an ephemeral one")
	}
	deps.PrivateStorage, err = filestorage.NewEncryptedStorage(privateBackend,
		recipientStr, identityStr, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encrypted storage: %w", err)
	}

	deps.JWTService = pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  parseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: parseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Notifier = email.NewSMTPNotifier(email.SMTPConfig{
		Host:        cfg.Mail.Host,
		Port:        cfg.Mail.Port,
		Username:    cfg.Mail.Username,
		Password:    cfg.Mail.Password,
		FromName:    cfg.Mail.FromName,
		FromEmail:   cfg.Mail.FromEmail,
		UseTLS:      cfg.Mail.UseTLS,
		FrontendURL: cfg.Server.FrontendURL,
	}, lgr)

	deps.AuthzService = appauth.NewAuthorizationService(
		deps.Repos.UserRepository,
		deps.Repos.AssociationUserRepository,
	)

	deps.Services = services.NewServices(services.Dependencies{
		DB:             database,
		Repos:          deps.Repos,
		Authz:          deps.AuthzService,
		JWT:            deps.JWTService,
		Notifier:       deps.Notifier,
		PublicStorage:  deps.PublicStorage,
		PrivateStorage: deps.PrivateStorage,
		Config:         cfg,
		Logger:         lgr,
	})

	deps.Controllers = controllers.NewControllers(deps.Services)
	deps.AuthMiddleware = middleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)

	deps.JobRunner = jobs.NewRunner(database, deps.Repos, deps.Services.HistoryService,
		deps.Notifier, deps.PublicStorage, deps.PrivateStorage, cfg, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(lgr))

	routes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}

// parseDuration parses the pre-validated duration strings from the config,
// falling back when empty.
func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// Pool exposes the raw pool for callers that shut it down directly.
func (d *Dependencies) Pool() *pgxpool.Pool {
	return d.Database.Pool
}
