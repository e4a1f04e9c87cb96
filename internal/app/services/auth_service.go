package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/config"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
	pkgauth "github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/auth"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo *repositories.UserRepository
	jwt      *pkgauth.JWTService
	config   *config.Config
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repositories.UserRepository, jwt *pkgauth.JWTService, cfg *config.Config, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		jwt:      jwt,
		config:   cfg,
		logger:   logger,
	}
}

// Login authenticates a local account and issues a token pair. Accounts
// awaiting admin validation cannot log in yet.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same failure for an unknown address and a wrong password.
		return nil, apperrors.ErrUnauthenticated
	}

	if user.IsCas {
		return nil, apperrors.NewForbiddenError("account authenticates through the identity federation")
	}
	if !pkgauth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthenticated
	}
	if !user.IsValidatedByAdmin {
		return nil, apperrors.NewForbiddenError("account is awaiting validation")
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to record login time")
	}

	return s.issueTokens(user)
}

// Register creates a local account. The account stays unusable until a
// manager validates it.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	for _, domain := range s.config.DomainBlacklist() {
		if strings.HasSuffix(email, "@"+domain) {
			return nil, apperrors.NewForbiddenError("institutional addresses must sign in through the identity federation")
		}
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflictError("an account with this email already exists")
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	s.logger.Info().Int64("userID", id).Msg("Account registered, awaiting validation")

	resp := dto.FromUser(user)
	return &resp, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}
	if !user.IsValidatedByAdmin {
		return nil, apperrors.NewForbiddenError("account is awaiting validation")
	}

	return s.issueTokens(user)
}

func (s *authServiceImpl) issueTokens(user *models.User) (*dto.TokenResponse, error) {
	access, refresh, expiresIn, refreshExpiresIn, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}, nil
}
