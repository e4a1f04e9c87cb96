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
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/helpers"
)

// CommissionService defines the interface for commission operations
type CommissionService interface {
	GetAll(ctx context.Context, filter *dto.CommissionFilterRequest) ([]dto.CommissionResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.CommissionResponse, error)
	Create(ctx context.Context, principal *auth.Principal, req *dto.CreateCommissionRequest) (*dto.CommissionResponse, error)
	Update(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateCommissionRequest) (*dto.CommissionResponse, error)
	Delete(ctx context.Context, principal *auth.Principal, id int64) error

	Export(ctx context.Context, principal *auth.Principal, id int64) (*dto.CommissionExportResponse, error)

	GetFunds(ctx context.Context) ([]dto.FundResponse, error)
	GetCommissionFunds(ctx context.Context, commissionID int64) ([]dto.CommissionFundResponse, error)
}

// commissionServiceImpl implements CommissionService
type commissionServiceImpl struct {
	db             *db.PostgresDB
	commissionRepo *repositories.CommissionRepository
	fundRepo       *repositories.FundRepository
	projectRepo    *repositories.ProjectRepository
	logger         zerolog.Logger
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(
	database *db.PostgresDB,
	commissionRepo *repositories.CommissionRepository,
	fundRepo *repositories.FundRepository,
	projectRepo *repositories.ProjectRepository,
	logger zerolog.Logger,
) CommissionService {
	return &commissionServiceImpl{
		db:             database,
		commissionRepo: commissionRepo,
		fundRepo:       fundRepo,
		projectRepo:    projectRepo,
		logger:         logger,
	}
}

// GetAll retrieves commissions matching the filter
func (s *commissionServiceImpl) GetAll(ctx context.Context, filter *dto.CommissionFilterRequest) ([]dto.CommissionResponse, error) {
	fundIDs, err := helpers.ParseIDList(filter.FundIDs)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid funds filter")
	}
	datesAfter, err := helpers.ParseDateParam(filter.DatesAfter)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid datesAfter filter")
	}

	commissions, err := s.commissionRepo.GetAll(ctx, repositories.CommissionFilter{
		FundIDs:          fundIDs,
		IsOpenToProjects: filter.IsOpenToProjects,
		OnlyNext:         filter.OnlyNext != nil && *filter.OnlyNext,
		ActiveProjects:   filter.ActiveProjects,
		IsSite:           filter.IsSite,
		DatesAfter:       datesAfter,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.CommissionResponse, 0, len(commissions))
	for _, c := range commissions {
		out = append(out, dto.FromCommission(c))
	}
	return out, nil
}

// GetByID retrieves one commission with its funds
func (s *commissionServiceImpl) GetByID(ctx context.Context, id int64) (*dto.CommissionResponse, error) {
	c, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromCommission(c)
	return &resp, nil
}

// validateDates checks the deadline ordering rules shared by create and
// update. Past deadlines are rejected on create only, so an old commission
// stays editable.
func validateCommissionDates(deadline, session time.Time, rejectPast bool) error {
	if deadline.After(session) {
		return apperrors.ErrCommissionDates
	}
	if rejectPast {
		today := time.Now().Truncate(24 * time.Hour)
		if deadline.Before(today) {
			return apperrors.ErrCommissionPastDate
		}
	}
	return nil
}

// Create schedules a commission over one or more funds. Staff only.
func (s *commissionServiceImpl) Create(ctx context.Context, principal *auth.Principal, req *dto.CreateCommissionRequest) (*dto.CommissionResponse, error) {
	if !principal.IsStaff {
		return nil, apperrors.ErrPermissionDenied
	}
	if err := validateCommissionDates(req.SubmissionDeadline, req.SessionDate, true); err != nil {
		return nil, err
	}

	funds, err := s.fundRepo.GetByIDs(ctx, req.FundIDs)
	if err != nil {
		return nil, err
	}
	if len(funds) != len(req.FundIDs) {
		return nil, apperrors.NewResourceNotFoundError("one or more funds do not exist")
	}

	c := &models.Commission{
		Name:               req.Name,
		SubmissionDeadline: req.SubmissionDeadline,
		SessionDate:        req.SessionDate,
		IsOpenToProjects:   req.IsOpenToProjects,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.commissionRepo.Create(ctx, tx, c, req.FundIDs)
		if err != nil {
			return err
		}
		c.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("commissionID", c.ID).Str("name", c.Name).Msg("Commission created")
	return s.GetByID(ctx, c.ID)
}

// Update applies a partial update, optionally replacing the fund links.
// Staff only.
func (s *commissionServiceImpl) Update(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateCommissionRequest) (*dto.CommissionResponse, error) {
	if !principal.IsStaff {
		return nil, apperrors.ErrPermissionDenied
	}

	c, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.SubmissionDeadline != nil {
		c.SubmissionDeadline = *req.SubmissionDeadline
	}
	if req.SessionDate != nil {
		c.SessionDate = *req.SessionDate
	}
	if req.IsOpenToProjects != nil {
		c.IsOpenToProjects = *req.IsOpenToProjects
	}

	if err := validateCommissionDates(c.SubmissionDeadline, c.SessionDate, false); err != nil {
		return nil, err
	}

	if req.FundIDs != nil {
		funds, err := s.fundRepo.GetByIDs(ctx, req.FundIDs)
		if err != nil {
			return nil, err
		}
		if len(funds) != len(req.FundIDs) {
			return nil, apperrors.NewResourceNotFoundError("one or more funds do not exist")
		}
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.commissionRepo.Update(ctx, tx, c, req.FundIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes a commission; submissions of projects still in flight go
// with it through the cascade. Refused once the session has been held or a
// finished project keeps its decision record on the commission. Staff only.
func (s *commissionServiceImpl) Delete(ctx context.Context, principal *auth.Principal, id int64) error {
	if !principal.IsStaff {
		return apperrors.ErrPermissionDenied
	}

	c, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.SessionHeldBefore(time.Now()) {
		return apperrors.ErrCommissionHeld
	}

	hasFinished, err := s.commissionRepo.HasFinishedSubmissions(ctx, id)
	if err != nil {
		return err
	}
	if hasFinished {
		return apperrors.ErrCommissionInUse
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.commissionRepo.Delete(ctx, tx, id)
	})
}

// GetFunds retrieves the fund catalog
func (s *commissionServiceImpl) GetFunds(ctx context.Context) ([]dto.FundResponse, error) {
	funds, err := s.fundRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FundResponse, 0, len(funds))
	for _, f := range funds {
		out = append(out, dto.FromFund(f))
	}
	return out, nil
}

// Export assembles the commission dossier consumed by the PDF formatter.
// Managers only.
func (s *commissionServiceImpl) Export(ctx context.Context, principal *auth.Principal, id int64) (*dto.CommissionExportResponse, error) {
	if !principal.IsManager() {
		return nil, apperrors.ErrPermissionDenied
	}

	c, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	links, err := s.commissionRepo.GetCommissionFunds(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.GetByCommission(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &dto.CommissionExportResponse{
		Commission: dto.FromCommission(c),
		Funds:      make([]dto.CommissionFundResponse, 0, len(links)),
		Projects:   make([]dto.ProjectSummaryResponse, 0, len(projects)),
	}
	for _, cf := range links {
		out.Funds = append(out.Funds, dto.FromCommissionFund(cf))
	}
	for _, p := range projects {
		out.Projects = append(out.Projects, dto.FromProjectSummary(p))
	}
	return out, nil
}

// GetCommissionFunds lists a commission's fund links
func (s *commissionServiceImpl) GetCommissionFunds(ctx context.Context, commissionID int64) ([]dto.CommissionFundResponse, error) {
	links, err := s.commissionRepo.GetCommissionFunds(ctx, commissionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommissionFundResponse, 0, len(links))
	for _, l := range links {
		out = append(out, dto.FromCommissionFund(l))
	}
	return out, nil
}
