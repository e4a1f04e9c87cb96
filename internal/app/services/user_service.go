package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/db"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/helpers"
)

// UserService defines the interface for user management operations
type UserService interface {
	GetAll(ctx context.Context, principal *auth.Principal, filter *dto.UserFilterRequest) (*dto.UserListResponse, error)
	GetByID(ctx context.Context, principal *auth.Principal, id int64) (*dto.UserResponse, error)
	Update(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, principal *auth.Principal, id int64) error

	GetGroups(ctx context.Context) ([]dto.GroupResponse, error)
	GetGroupLinks(ctx context.Context, principal *auth.Principal, userID int64) ([]dto.GroupLinkResponse, error)
	CreateGroupLink(ctx context.Context, principal *auth.Principal, req *dto.CreateGroupLinkRequest) (*dto.GroupLinkResponse, error)
	DeleteGroupLink(ctx context.Context, principal *auth.Principal, linkID int64) error
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	db             *db.PostgresDB
	userRepo       *repositories.UserRepository
	memberRepo     *repositories.AssociationUserRepository
	historyService HistoryService
	logger         zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	database *db.PostgresDB,
	userRepo *repositories.UserRepository,
	memberRepo *repositories.AssociationUserRepository,
	historyService HistoryService,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		db:             database,
		userRepo:       userRepo,
		memberRepo:     memberRepo,
		historyService: historyService,
		logger:         logger,
	}
}

// GetAll retrieves users matching the filter. Managers only.
func (s *userServiceImpl) GetAll(ctx context.Context, principal *auth.Principal, filter *dto.UserFilterRequest) (*dto.UserListResponse, error) {
	if !principal.IsManager() {
		return nil, apperrors.ErrPermissionDenied
	}

	institutionIDs, err := helpers.ParseIDList(filter.InstitutionIDs)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid institutions filter")
	}

	users, total, err := s.userRepo.GetAll(ctx, repositories.UserFilter{
		Search:             filter.Search,
		IsValidatedByAdmin: filter.IsValidatedByAdmin,
		AssociationID:      filter.AssociationID,
		InstitutionIDs:     institutionIDs,
		Page:               filter.Page,
		PageSize:           filter.PageSize,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.UserListResponse{
		Users:          make([]dto.UserResponse, 0, len(users)),
		PaginationInfo: dto.NewPaginationInfo(filter.Page, filter.PageSize, total),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, dto.FromUser(u))
	}
	return resp, nil
}

// GetByID retrieves one user: the user themself or a manager.
func (s *userServiceImpl) GetByID(ctx context.Context, principal *auth.Principal, id int64) (*dto.UserResponse, error) {
	if id != principal.UserID && !principal.IsManager() {
		return nil, apperrors.ErrPermissionDenied
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(u)

	links, err := s.userRepo.GetGroupLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		resp.Groups = append(resp.Groups, dto.FromGroupLink(l))
	}
	return &resp, nil
}

// Update applies a partial update. Identity fields belong to the user,
// validation belongs to managers. Federated accounts keep their identity
// fields read-only.
func (s *userServiceImpl) Update(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if id != principal.UserID && !principal.IsManager() {
		return nil, apperrors.ErrPermissionDenied
	}
	if req.IsValidatedByAdmin != nil && !principal.IsManager() {
		return nil, apperrors.NewForbiddenError("only managers may validate accounts")
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	identityEdit := req.FirstName != nil || req.LastName != nil || req.Email != nil
	if identityEdit && u.IsCas {
		return nil, apperrors.NewForbiddenError("identity fields are managed by the identity federation")
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.IsValidatedByAdmin != nil {
		u.IsValidatedByAdmin = *req.IsValidatedByAdmin
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := dto.FromUser(u)
	return &resp, nil
}

// Delete removes an account: the user themself or a manager. Memberships
// and group links go with it.
func (s *userServiceImpl) Delete(ctx context.Context, principal *auth.Principal, id int64) error {
	if id != principal.UserID && !principal.IsManager() {
		return apperrors.ErrPermissionDenied
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// GetGroups retrieves the group catalog
func (s *userServiceImpl) GetGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.userRepo.GetAllGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.FromGroup(g))
	}
	return out, nil
}

// GetGroupLinks lists a user's scoped group memberships
func (s *userServiceImpl) GetGroupLinks(ctx context.Context, principal *auth.Principal, userID int64) ([]dto.GroupLinkResponse, error) {
	if userID != principal.UserID && !principal.IsManager() {
		return nil, apperrors.ErrPermissionDenied
	}
	links, err := s.userRepo.GetGroupLinks(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, dto.FromGroupLink(l))
	}
	return out, nil
}

// CreateGroupLink attaches a user to a group. Staff groups are handed out
// by staff only, and a user never mixes staff and public groups.
func (s *userServiceImpl) CreateGroupLink(ctx context.Context, principal *auth.Principal, req *dto.CreateGroupLinkRequest) (*dto.GroupLinkResponse, error) {
	group, err := s.userRepo.GetGroupByID(ctx, req.GroupID)
	if err != nil {
		return nil, apperrors.ErrGroupNotFound
	}

	if group.IsStaffGroup() && !principal.IsStaff {
		return nil, apperrors.ErrGroupRestricted
	}
	if req.UserID != principal.UserID && !principal.IsManager() {
		return nil, apperrors.ErrPermissionDenied
	}
	if !group.RegistrationAllowed && !principal.IsStaff {
		return nil, apperrors.ErrGroupRestricted
	}

	// Scoping dimensions are only meaningful where the group declares them.
	if req.InstitutionID != nil && !group.InstitutionIDPossible {
		return nil, apperrors.NewInvariantError(apperrors.ErrValidationFailed,
			"group does not take an institution scope")
	}
	if req.FundID != nil && !group.FundIDPossible {
		return nil, apperrors.NewInvariantError(apperrors.ErrValidationFailed,
			"group does not take a fund scope")
	}

	existing, err := s.userRepo.GetGroupLinks(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	for _, l := range existing {
		if l.Group != nil && l.Group.IsStaffGroup() != group.IsStaffGroup() {
			return nil, apperrors.ErrGroupIncompatible
		}
	}

	link := &models.GroupInstitutionFundUser{
		UserID:        req.UserID,
		GroupID:       req.GroupID,
		InstitutionID: req.InstitutionID,
		FundID:        req.FundID,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.userRepo.CreateGroupLink(ctx, link)
		if err != nil {
			return err
		}
		link.ID = id
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:                models.ActionGroupLinkCreated,
			ActionUserID:               principal.UserID,
			UserID:                     &req.UserID,
			GroupInstitutionFundUserID: &id,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromGroupLink(link)
	return &resp, nil
}

// DeleteGroupLink detaches a user from a group. Managers only.
func (s *userServiceImpl) DeleteGroupLink(ctx context.Context, principal *auth.Principal, linkID int64) error {
	if !principal.IsManager() {
		return apperrors.ErrPermissionDenied
	}
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.userRepo.DeleteGroupLink(ctx, linkID); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:                models.ActionGroupLinkDeleted,
			ActionUserID:               principal.UserID,
			GroupInstitutionFundUserID: &linkID,
		})
		return nil
	})
}
