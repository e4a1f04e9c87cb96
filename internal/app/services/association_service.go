package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/db"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/email"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/helpers"
)

// AssociationService defines the interface for association operations
type AssociationService interface {
	GetAll(ctx context.Context, filter *dto.AssociationFilterRequest) (*dto.AssociationListResponse, error)
	GetAllPublic(ctx context.Context) ([]dto.PublicAssociationResponse, error)
	GetNames(ctx context.Context) ([]dto.AssociationNameResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.AssociationResponse, error)
	Create(ctx context.Context, principal *auth.Principal, req *dto.CreateAssociationRequest) (*dto.AssociationResponse, error)
	Update(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateAssociationRequest) (*dto.AssociationResponse, error)
	Delete(ctx context.Context, principal *auth.Principal, id int64) error
	UpdateCharterStatus(ctx context.Context, principal *auth.Principal, id int64, target models.CharterStatus) (*dto.AssociationResponse, error)

	GetMembers(ctx context.Context, principal *auth.Principal, associationID int64) ([]dto.AssociationUserResponse, error)
	AddMember(ctx context.Context, principal *auth.Principal, req *dto.CreateAssociationUserRequest) (*dto.AssociationUserResponse, error)
	UpdateMember(ctx context.Context, principal *auth.Principal, membershipID int64, req *dto.UpdateAssociationUserRequest) (*dto.AssociationUserResponse, error)
	RemoveMember(ctx context.Context, principal *auth.Principal, membershipID int64) error

	Export(ctx context.Context, principal *auth.Principal, id int64) (*dto.AssociationExportResponse, error)

	GetActivityFields(ctx context.Context) ([]dto.ActivityFieldResponse, error)
	GetInstitutions(ctx context.Context) ([]dto.InstitutionResponse, error)
	GetInstitutionComponents(ctx context.Context) ([]dto.InstitutionComponentResponse, error)
}

// associationServiceImpl implements AssociationService
type associationServiceImpl struct {
	db              *db.PostgresDB
	associationRepo *repositories.AssociationRepository
	memberRepo      *repositories.AssociationUserRepository
	institutionRepo *repositories.InstitutionRepository
	userRepo        *repositories.UserRepository
	documentRepo    *repositories.DocumentRepository
	uploadRepo      *repositories.DocumentUploadRepository
	historyService  HistoryService
	notifier        email.Notifier
	logger          zerolog.Logger
}

// NewAssociationService creates a new AssociationService
func NewAssociationService(
	database *db.PostgresDB,
	associationRepo *repositories.AssociationRepository,
	memberRepo *repositories.AssociationUserRepository,
	institutionRepo *repositories.InstitutionRepository,
	userRepo *repositories.UserRepository,
	documentRepo *repositories.DocumentRepository,
	uploadRepo *repositories.DocumentUploadRepository,
	historyService HistoryService,
	notifier email.Notifier,
	logger zerolog.Logger,
) AssociationService {
	return &associationServiceImpl{
		db:              database,
		associationRepo: associationRepo,
		memberRepo:      memberRepo,
		institutionRepo: institutionRepo,
		userRepo:        userRepo,
		documentRepo:    documentRepo,
		uploadRepo:      uploadRepo,
		historyService:  historyService,
		notifier:        notifier,
		logger:          logger,
	}
}

// GetAll retrieves associations matching the filter
func (s *associationServiceImpl) GetAll(ctx context.Context, filter *dto.AssociationFilterRequest) (*dto.AssociationListResponse, error) {
	institutionIDs, err := helpers.ParseIDList(filter.InstitutionIDs)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid institutions filter")
	}

	associations, total, err := s.associationRepo.GetAll(ctx, repositories.AssociationFilter{
		Name:            filter.Name,
		Acronym:         filter.Acronym,
		InstitutionIDs:  institutionIDs,
		ActivityFieldID: filter.ActivityFieldID,
		IsEnabled:       filter.IsEnabled,
		IsPublic:        filter.IsPublic,
		IsSite:          filter.IsSite,
		UserID:          filter.UserID,
		Page:            filter.Page,
		PageSize:        filter.PageSize,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.AssociationListResponse{
		Associations:   make([]dto.AssociationResponse, 0, len(associations)),
		PaginationInfo: dto.NewPaginationInfo(filter.Page, filter.PageSize, total),
	}
	for _, a := range associations {
		resp.Associations = append(resp.Associations, dto.FromAssociation(a))
	}
	return resp, nil
}

// GetAllPublic retrieves the anonymous directory: enabled, site-chartered
// associations flagged public, restricted fields only.
func (s *associationServiceImpl) GetAllPublic(ctx context.Context) ([]dto.PublicAssociationResponse, error) {
	enabled, public := true, true
	associations, _, err := s.associationRepo.GetAll(ctx, repositories.AssociationFilter{
		IsEnabled: &enabled,
		IsPublic:  &public,
		PageSize:  500,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.PublicAssociationResponse, 0, len(associations))
	for _, a := range associations {
		out = append(out, dto.FromAssociationPublic(a))
	}
	return out, nil
}

// GetByID retrieves one association
func (s *associationServiceImpl) GetByID(ctx context.Context, id int64) (*dto.AssociationResponse, error) {
	a, err := s.associationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromAssociation(a)
	return &resp, nil
}

// Create registers a new association. Managers only, scoped to their
// institutions.
func (s *associationServiceImpl) Create(ctx context.Context, principal *auth.Principal, req *dto.CreateAssociationRequest) (*dto.AssociationResponse, error) {
	s.logger.Debug().Str("name", req.Name).Msg("Creating association")

	if !principal.ManagesInstitution(req.InstitutionID) {
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.institutionRepo.GetByID(ctx, req.InstitutionID); err != nil {
		return nil, apperrors.NewResourceNotFoundError("institution not found")
	}
	if _, err := s.institutionRepo.GetActivityFieldByID(ctx, req.ActivityFieldID); err != nil {
		return nil, apperrors.NewResourceNotFoundError("activity field not found")
	}
	if req.InstitutionComponentID != nil {
		comp, err := s.institutionRepo.GetComponentByID(ctx, *req.InstitutionComponentID)
		if err != nil {
			return nil, apperrors.NewResourceNotFoundError("institution component not found")
		}
		if comp.InstitutionID != req.InstitutionID {
			return nil, apperrors.NewInvariantError(apperrors.ErrValidationFailed,
				"institution component belongs to another institution")
		}
	}

	// The folded-name probe gives a friendly error before the unique index
	// has the final word.
	taken, err := s.associationRepo.ExistsFoldedName(ctx, req.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrAssociationNameTaken
	}

	a := &models.Association{
		Name:                   req.Name,
		Acronym:                req.Acronym,
		InstitutionID:          req.InstitutionID,
		InstitutionComponentID: req.InstitutionComponentID,
		ActivityFieldID:        req.ActivityFieldID,
		Email:                  req.Email,
		SocialNetworks:         []string{},
		IsEnabled:              true,
		IsSite:                 req.IsSite,
		CanSubmitProjects:      true,
		CharterStatus:          models.CharterNone,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.associationRepo.Create(ctx, tx, a)
		if err != nil {
			return err
		}
		a.ID = id
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:   models.ActionAssociationCreated,
			ActionUserID:  principal.UserID,
			AssociationID: &id,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, a.ID)
}

// contactOnly reports whether the update touches only the fields an
// association officer may edit without manager authority.
func contactOnly(req *dto.UpdateAssociationRequest) bool {
	return req.Name == nil && req.Acronym == nil && req.InstitutionID == nil &&
		req.InstitutionComponentID == nil && req.ActivityFieldID == nil &&
		req.IsEnabled == nil && req.IsSite == nil && req.IsPublic == nil &&
		req.CanSubmitProjects == nil && req.AmountMembersAllowed == nil
}

// Update applies a partial update. Officers may edit contact fields of their
// own association; structural fields and flags require a manager of the
// association's institution.
func (s *associationServiceImpl) Update(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateAssociationRequest) (*dto.AssociationResponse, error) {
	a, err := s.associationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isManager := principal.ManagesInstitution(a.InstitutionID)
	if !isManager {
		if !principal.CanActForAssociation(id, time.Now()) {
			return nil, apperrors.ErrPermissionDenied
		}
		if !contactOnly(req) {
			return nil, apperrors.NewForbiddenError("only contact fields may be edited by association officers")
		}
	}

	if req.Name != nil && *req.Name != a.Name {
		taken, err := s.associationRepo.ExistsFoldedName(ctx, *req.Name, a.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrAssociationNameTaken
		}
		a.Name = *req.Name
	}
	if req.Acronym != nil {
		a.Acronym = *req.Acronym
	}
	if req.InstitutionID != nil {
		if !principal.ManagesInstitution(*req.InstitutionID) {
			return nil, apperrors.ErrPermissionDenied
		}
		a.InstitutionID = *req.InstitutionID
	}
	if req.InstitutionComponentID != nil {
		a.InstitutionComponentID = req.InstitutionComponentID
	}
	if req.ActivityFieldID != nil {
		if _, err := s.institutionRepo.GetActivityFieldByID(ctx, *req.ActivityFieldID); err != nil {
			return nil, apperrors.NewResourceNotFoundError("activity field not found")
		}
		a.ActivityFieldID = *req.ActivityFieldID
	}
	if req.Email != nil {
		a.Email = *req.Email
	}
	if req.Address != nil {
		a.Address = *req.Address
	}
	if req.Phone != nil {
		a.Phone = *req.Phone
	}
	if req.Website != nil {
		a.Website = *req.Website
	}
	if req.SocialNetworks != nil {
		a.SocialNetworks = req.SocialNetworks
	}
	if req.IsEnabled != nil {
		a.IsEnabled = *req.IsEnabled
	}
	if req.IsSite != nil {
		a.IsSite = *req.IsSite
	}
	if req.IsPublic != nil {
		if *req.IsPublic && !(a.IsEnabled && a.IsSite) {
			return nil, apperrors.ErrPublicRequiresSite
		}
		a.IsPublic = *req.IsPublic
	}
	if req.CanSubmitProjects != nil {
		a.CanSubmitProjects = *req.CanSubmitProjects
	}
	if req.AmountMembersAllowed != nil {
		a.AmountMembersAllowed = req.AmountMembersAllowed
	}
	if req.LastGOADate != nil {
		a.LastGOADate = req.LastGOADate
	}

	// Disabling or un-siting silently retracts the public flag.
	if a.NormalizePublicFlag() {
		s.logger.Info().Int64("associationID", a.ID).Msg("Public flag cleared, association no longer enabled site")
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Lowering the ceiling must not orphan sitting members, so the count
		// is checked under the same row lock AddMember takes.
		if req.AmountMembersAllowed != nil {
			if _, err := s.associationRepo.LockByID(ctx, tx, a.ID); err != nil {
				return err
			}
			count, err := s.memberRepo.CountMembers(ctx, tx, a.ID)
			if err != nil {
				return err
			}
			if count > *req.AmountMembersAllowed {
				return apperrors.NewInvariantError(apperrors.ErrInvariant,
					"member ceiling cannot drop below the current member count")
			}
		}
		if err := s.associationRepo.Update(ctx, tx, a); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:   models.ActionAssociationUpdated,
			ActionUserID:  principal.UserID,
			AssociationID: &a.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, a.ID)
}

// Delete removes an association. The association must be disabled first so a
// deletion is always a two-step, deliberate act.
func (s *associationServiceImpl) Delete(ctx context.Context, principal *auth.Principal, id int64) error {
	a, err := s.associationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !principal.ManagesInstitution(a.InstitutionID) {
		return apperrors.ErrPermissionDenied
	}
	if a.IsEnabled {
		return apperrors.ErrAssociationEnabled
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.associationRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:   models.ActionAssociationDeleted,
			ActionUserID:  principal.UserID,
			AssociationID: &id,
		})
		return nil
	})
}

// UpdateCharterStatus drives the charter through its lifecycle. Submissions
// come from association officers and require the mandatory charter
// documents; decisions are reserved to managers.
func (s *associationServiceImpl) UpdateCharterStatus(ctx context.Context, principal *auth.Principal, id int64, target models.CharterStatus) (*dto.AssociationResponse, error) {
	a, err := s.associationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isManager := principal.ManagesInstitution(a.InstitutionID)
	if models.IsCharterDecision(target) || target == models.CharterExpired {
		if !isManager {
			return nil, apperrors.ErrPermissionDenied
		}
	} else if !isManager && !principal.CanActForAssociation(id, time.Now()) {
		return nil, apperrors.ErrPermissionDenied
	}

	if !a.CanTransitionCharter(target) {
		return nil, apperrors.NewInvariantError(apperrors.ErrCharterTransition,
			"cannot move charter from "+string(a.CharterStatus)+" to "+string(target))
	}

	if target == models.CharterProcessing {
		missing, err := s.missingCharterDocuments(ctx, id)
		if err != nil {
			return nil, err
		}
		if missing {
			return nil, apperrors.ErrCharterDocsMissing
		}
	}

	a.CharterStatus = target
	switch target {
	case models.CharterValidated:
		now := time.Now()
		a.CharterDate = &now
		a.IsSite = true
	case models.CharterRejected:
		a.IsSite = false
	}
	if a.NormalizePublicFlag() {
		s.logger.Info().Int64("associationID", a.ID).Msg("Public flag cleared, charter rejected")
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.associationRepo.Update(ctx, tx, a); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:   models.ActionAssociationCharterChanged,
			ActionUserID:  principal.UserID,
			AssociationID: &a.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if models.IsCharterDecision(target) && a.Email != "" {
		if err := s.notifier.Send(email.TemplateCharterDecision, a.Email, map[string]string{
			"association_name": a.Name,
			"decision":         string(target),
		}); err != nil {
			s.logger.Error().Err(err).Int64("associationID", a.ID).Msg("Failed to send charter decision mail")
		}
	}

	return s.GetByID(ctx, a.ID)
}

// missingCharterDocuments reports whether a required charter document type
// has no upload for the association.
func (s *associationServiceImpl) missingCharterDocuments(ctx context.Context, associationID int64) (bool, error) {
	required, err := s.documentRepo.GetRequiredByProcessTypes(ctx, []models.ProcessType{models.ProcessCharterAssociation})
	if err != nil {
		return false, err
	}
	for _, doc := range required {
		count, err := s.uploadRepo.CountForOwner(ctx, doc.ID, nil, &associationID, nil)
		if err != nil {
			return false, err
		}
		if count == 0 {
			return true, nil
		}
	}
	return false, nil
}

// GetMembers lists the memberships of an association. Members see their own
// association; managers see all.
func (s *associationServiceImpl) GetMembers(ctx context.Context, principal *auth.Principal, associationID int64) ([]dto.AssociationUserResponse, error) {
	a, err := s.associationRepo.GetByID(ctx, associationID)
	if err != nil {
		return nil, err
	}
	if !principal.ManagesInstitution(a.InstitutionID) && !principal.IsMemberOf(associationID) {
		return nil, apperrors.ErrPermissionDenied
	}

	members, err := s.memberRepo.GetByAssociation(ctx, associationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssociationUserResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.FromAssociationUser(m))
	}
	return out, nil
}

// AddMember registers a membership. The association row is locked for the
// duration so the member ceiling cannot be raced past.
func (s *associationServiceImpl) AddMember(ctx context.Context, principal *auth.Principal, req *dto.CreateAssociationUserRequest) (*dto.AssociationUserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, apperrors.NewResourceNotFoundError("user not found")
	}

	links, err := s.userRepo.GetGroupLinks(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	canJoin := false
	for _, link := range links {
		if link.Group != nil && link.Group.AssociationsPossible {
			canJoin = true
			break
		}
	}
	if !canJoin {
		return nil, apperrors.ErrGroupNoAssociations
	}

	a, err := s.associationRepo.GetByID(ctx, req.AssociationID)
	if err != nil {
		return nil, err
	}

	// Users join themselves as plain members; managers and presidents may add
	// others and hand out the presidency.
	isManager := principal.ManagesInstitution(a.InstitutionID)
	canActFor := principal.CanActForAssociation(req.AssociationID, time.Now())
	if req.UserID != principal.UserID {
		if !isManager && !canActFor {
			return nil, apperrors.ErrPermissionDenied
		}
	} else if req.IsPresident && !isManager && !canActFor {
		return nil, apperrors.NewForbiddenError("self-enrollment cannot claim an officer role")
	}

	m := &models.AssociationUser{
		UserID:        req.UserID,
		AssociationID: req.AssociationID,
		IsPresident:   req.IsPresident,
		// A manager enrolling a validated account vouches for the membership
		// in the same gesture.
		IsValidatedByAdmin: isManager && user.IsValidatedByAdmin,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		a, err := s.associationRepo.LockByID(ctx, tx, req.AssociationID)
		if err != nil {
			return err
		}
		if !a.IsEnabled {
			return apperrors.NewForbiddenError("association is disabled")
		}

		count, err := s.memberRepo.CountMembers(ctx, tx, req.AssociationID)
		if err != nil {
			return err
		}
		if !a.CanHoldMembers(count + 1) {
			return apperrors.ErrAssociationAtCapacity
		}

		if req.IsPresident {
			hasPresident, err := s.memberRepo.HasPresident(ctx, tx, req.AssociationID, 0)
			if err != nil {
				return err
			}
			if hasPresident {
				return apperrors.ErrPresidentExists
			}
		}

		id, err := s.memberRepo.Create(ctx, tx, m)
		if err != nil {
			return err
		}
		m.ID = id
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:       models.ActionAssociationUserCreated,
			ActionUserID:      principal.UserID,
			UserID:            &req.UserID,
			AssociationID:     &req.AssociationID,
			AssociationUserID: &id,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromAssociationUser(m)
	return &resp, nil
}

// UpdateMember changes officer roles, the delegation window or the admin
// validation flag of a membership.
func (s *associationServiceImpl) UpdateMember(ctx context.Context, principal *auth.Principal, membershipID int64, req *dto.UpdateAssociationUserRequest) (*dto.AssociationUserResponse, error) {
	m, err := s.memberRepo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	a, err := s.associationRepo.GetByID(ctx, m.AssociationID)
	if err != nil {
		return nil, err
	}

	isManager := principal.ManagesInstitution(a.InstitutionID)
	if !isManager && !principal.CanActForAssociation(m.AssociationID, time.Now()) {
		return nil, apperrors.ErrPermissionDenied
	}
	if req.IsValidatedByAdmin != nil && !isManager {
		return nil, apperrors.NewForbiddenError("only managers may validate memberships")
	}

	// The sitting president cannot strip their own presidency; someone else
	// must take over first.
	if req.IsPresident != nil && !*req.IsPresident &&
		m.IsPresident && m.UserID == principal.UserID {
		return nil, apperrors.ErrCannotSelfDemote
	}

	grantPresidency := req.IsPresident != nil && *req.IsPresident && !m.IsPresident
	if req.IsPresident != nil {
		m.IsPresident = *req.IsPresident
	}
	// The presidency is exclusive of the other officer roles, so granting it
	// drops whichever role the member held before.
	if grantPresidency {
		m.IsVicePresident = false
		m.IsSecretary = false
		m.IsTreasurer = false
	}
	if req.IsVicePresident != nil {
		m.IsVicePresident = *req.IsVicePresident
	}
	if req.IsSecretary != nil {
		m.IsSecretary = *req.IsSecretary
	}
	if req.IsTreasurer != nil {
		m.IsTreasurer = *req.IsTreasurer
	}
	if req.CanBePresidentFrom != nil {
		m.CanBePresidentFrom = req.CanBePresidentFrom
	}
	if req.CanBePresidentTo != nil {
		m.CanBePresidentTo = req.CanBePresidentTo
	}
	if req.IsValidatedByAdmin != nil {
		m.IsValidatedByAdmin = *req.IsValidatedByAdmin
	}

	if m.OfficerFlagCount() > 1 {
		return nil, apperrors.NewInvariantError(apperrors.ErrValidationFailed,
			"a member holds at most one officer role")
	}
	if m.CanBePresidentFrom != nil && m.CanBePresidentTo != nil &&
		m.CanBePresidentFrom.After(*m.CanBePresidentTo) {
		return nil, apperrors.NewInvariantError(apperrors.ErrValidationFailed,
			"delegation window start must not be after its end")
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.associationRepo.LockByID(ctx, tx, m.AssociationID); err != nil {
			return err
		}
		// Handing the presidency over strips it from the sitting president.
		if m.IsPresident {
			if err := s.memberRepo.ClearPresident(ctx, tx, m.AssociationID, m.ID); err != nil {
				return err
			}
		}
		if err := s.memberRepo.Update(ctx, tx, m); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:       models.ActionAssociationUserUpdated,
			ActionUserID:      principal.UserID,
			UserID:            &m.UserID,
			AssociationID:     &m.AssociationID,
			AssociationUserID: &m.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromAssociationUser(m)
	return &resp, nil
}

// RemoveMember deletes a membership: the member themself, a president, or a
// manager.
func (s *associationServiceImpl) RemoveMember(ctx context.Context, principal *auth.Principal, membershipID int64) error {
	m, err := s.memberRepo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if m.UserID != principal.UserID {
		a, err := s.associationRepo.GetByID(ctx, m.AssociationID)
		if err != nil {
			return err
		}
		if !principal.ManagesInstitution(a.InstitutionID) && !principal.CanActForAssociation(m.AssociationID, time.Now()) {
			return apperrors.ErrPermissionDenied
		}
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.memberRepo.Delete(ctx, tx, membershipID); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:       models.ActionAssociationUserDeleted,
			ActionUserID:      principal.UserID,
			UserID:            &m.UserID,
			AssociationID:     &m.AssociationID,
			AssociationUserID: &m.ID,
		})
		return nil
	})
}

// GetInstitutions retrieves the institution catalog
func (s *associationServiceImpl) GetInstitutions(ctx context.Context) ([]dto.InstitutionResponse, error) {
	institutions, err := s.institutionRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InstitutionResponse, 0, len(institutions))
	for _, i := range institutions {
		out = append(out, dto.FromInstitution(i))
	}
	return out, nil
}

// GetInstitutionComponents retrieves the institution component catalog
func (s *associationServiceImpl) GetInstitutionComponents(ctx context.Context) ([]dto.InstitutionComponentResponse, error) {
	components, err := s.institutionRepo.GetAllComponents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InstitutionComponentResponse, 0, len(components))
	for _, comp := range components {
		out = append(out, dto.InstitutionComponentResponse{
			ID:            comp.ID,
			Name:          comp.Name,
			InstitutionID: comp.InstitutionID,
		})
	}
	return out, nil
}

// GetNames lists every enabled association as a picker entry.
func (s *associationServiceImpl) GetNames(ctx context.Context) ([]dto.AssociationNameResponse, error) {
	associations, err := s.associationRepo.GetNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssociationNameResponse, 0, len(associations))
	for _, a := range associations {
		out = append(out, dto.AssociationNameResponse{
			ID:            a.ID,
			Name:          a.Name,
			Acronym:       a.Acronym,
			InstitutionID: a.InstitutionID,
		})
	}
	return out, nil
}

// Export assembles the association dossier consumed by the PDF formatter.
func (s *associationServiceImpl) Export(ctx context.Context, principal *auth.Principal, id int64) (*dto.AssociationExportResponse, error) {
	a, err := s.associationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.ManagesInstitution(a.InstitutionID) && !principal.IsMemberOf(id) {
		return nil, apperrors.ErrPermissionDenied
	}

	members, err := s.memberRepo.GetByAssociation(ctx, id)
	if err != nil {
		return nil, err
	}
	uploads, err := s.uploadRepo.GetAll(ctx, repositories.DocumentUploadFilter{AssociationID: &id})
	if err != nil {
		return nil, err
	}

	out := &dto.AssociationExportResponse{
		Association: dto.FromAssociation(a),
		Members:     make([]dto.AssociationUserResponse, 0, len(members)),
		Documents:   make([]dto.DocumentUploadResponse, 0, len(uploads)),
	}
	for _, m := range members {
		out.Members = append(out.Members, dto.FromAssociationUser(m))
	}
	for _, u := range uploads {
		out.Documents = append(out.Documents, dto.FromDocumentUpload(u))
	}
	return out, nil
}

// GetActivityFields retrieves the activity field catalog
func (s *associationServiceImpl) GetActivityFields(ctx context.Context) ([]dto.ActivityFieldResponse, error) {
	fields, err := s.institutionRepo.GetAllActivityFields(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityFieldResponse, 0, len(fields))
	for _, f := range fields {
		out = append(out, dto.ActivityFieldResponse{ID: f.ID, Name: f.Name})
	}
	return out, nil
}
