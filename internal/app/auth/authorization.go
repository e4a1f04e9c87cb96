package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/logger"
)

// AuthorizationService loads the Principal for a request
type AuthorizationService struct {
	userRepo            *repositories.UserRepository
	associationUserRepo *repositories.AssociationUserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo *repositories.UserRepository, associationUserRepo *repositories.AssociationUserRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:            userRepo,
		associationUserRepo: associationUserRepo,
	}
}

// LoadPrincipal assembles the authorization context for a user: group links
// determine manager scopes, memberships determine what the user may do as a
// student.
func (s *AuthorizationService) LoadPrincipal(ctx context.Context, userID int64) (*Principal, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error loading user for principal")
		return nil, fmt.Errorf("failed to load principal user: %w", err)
	}

	links, err := s.userRepo.GetGroupLinks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load principal group links: %w", err)
	}

	memberships, err := s.associationUserRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load principal memberships: %w", err)
	}

	p := &Principal{
		UserID:      user.ID,
		IsStaff:     user.IsStaff,
		IsValidated: user.IsValidatedByAdmin,
		Memberships: memberships,
	}
	for _, link := range links {
		if link.InstitutionID != nil {
			p.ManagedInstitutionIDs = append(p.ManagedInstitutionIDs, *link.InstitutionID)
		}
		if link.FundID != nil {
			p.ManagedFundIDs = append(p.ManagedFundIDs, *link.FundID)
		}
		// A single permissive group is enough to allow personal projects.
		if link.Group != nil && link.Group.AssociationsPossible {
			p.CanSubmitProjects = true
		}
	}
	return p, nil
}
