package services

import (
	"context"
	"strings"
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
)

// ProjectService defines the interface for project funding workflow operations
type ProjectService interface {
	GetAll(ctx context.Context, principal *auth.Principal, filter *dto.ProjectFilterRequest) (*dto.ProjectListResponse, error)
	GetByID(ctx context.Context, principal *auth.Principal, id int64) (*dto.ProjectResponse, error)
	Create(ctx context.Context, principal *auth.Principal, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Update(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	UpdateReview(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateProjectReviewRequest) (*dto.ProjectResponse, error)
	UpdateStatus(ctx context.Context, principal *auth.Principal, id int64, target models.ProjectStatus) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, principal *auth.Principal, id int64) error
	Export(ctx context.Context, principal *auth.Principal, id int64) (*dto.ProjectExportResponse, error)

	GetCategoryNames(ctx context.Context) ([]dto.ProjectCategoryNameResponse, error)

	GetComments(ctx context.Context, principal *auth.Principal, projectID int64) ([]dto.ProjectCommentResponse, error)
	CreateComment(ctx context.Context, principal *auth.Principal, projectID int64, req *dto.CreateProjectCommentRequest) (*dto.ProjectCommentResponse, error)

	GetSubmissions(ctx context.Context, principal *auth.Principal, projectID int64) ([]dto.ProjectCommissionFundResponse, error)
	CreateSubmission(ctx context.Context, principal *auth.Principal, req *dto.CreateProjectCommissionFundRequest) (*dto.ProjectCommissionFundResponse, error)
	UpdateSubmission(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateProjectCommissionFundRequest) (*dto.ProjectCommissionFundResponse, error)
	DeleteSubmission(ctx context.Context, principal *auth.Principal, id int64) error
}

// projectServiceImpl implements ProjectService
type projectServiceImpl struct {
	db              *db.PostgresDB
	projectRepo     *repositories.ProjectRepository
	pcfRepo         *repositories.ProjectCommissionFundRepository
	commissionRepo  *repositories.CommissionRepository
	associationRepo *repositories.AssociationRepository
	documentRepo    *repositories.DocumentRepository
	uploadRepo      *repositories.DocumentUploadRepository
	historyService  HistoryService
	notifier        email.Notifier
	logger          zerolog.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	database *db.PostgresDB,
	projectRepo *repositories.ProjectRepository,
	pcfRepo *repositories.ProjectCommissionFundRepository,
	commissionRepo *repositories.CommissionRepository,
	associationRepo *repositories.AssociationRepository,
	documentRepo *repositories.DocumentRepository,
	uploadRepo *repositories.DocumentUploadRepository,
	historyService HistoryService,
	notifier email.Notifier,
	logger zerolog.Logger,
) ProjectService {
	return &projectServiceImpl{
		db:              database,
		projectRepo:     projectRepo,
		pcfRepo:         pcfRepo,
		commissionRepo:  commissionRepo,
		associationRepo: associationRepo,
		documentRepo:    documentRepo,
		uploadRepo:      uploadRepo,
		historyService:  historyService,
		notifier:        notifier,
		logger:          logger,
	}
}

// GetAll retrieves projects matching the filter. Non-managers must scope the
// query to themselves or an association they belong to.
func (s *projectServiceImpl) GetAll(ctx context.Context, principal *auth.Principal, filter *dto.ProjectFilterRequest) (*dto.ProjectListResponse, error) {
	if !principal.IsManager() {
		switch {
		case filter.UserID != nil && *filter.UserID == principal.UserID:
		case filter.AssociationID != nil && principal.IsMemberOf(*filter.AssociationID):
		default:
			// Default unscoped queries to the caller's own projects.
			filter.UserID = &principal.UserID
			filter.AssociationID = nil
		}
	}

	var statuses []models.ProjectStatus
	if filter.Statuses != "" {
		for _, raw := range strings.Split(filter.Statuses, ",") {
			if raw = strings.TrimSpace(raw); raw != "" {
				statuses = append(statuses, models.ProjectStatus(raw))
			}
		}
	}

	projects, total, err := s.projectRepo.GetAll(ctx, repositories.ProjectFilter{
		Name:          filter.Name,
		AssociationID: filter.AssociationID,
		UserID:        filter.UserID,
		Statuses:      statuses,
		CommissionID:  filter.CommissionID,
		ActiveOnly:    filter.ActiveProjects,
		Page:          filter.Page,
		PageSize:      filter.PageSize,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ProjectListResponse{
		Projects:       make([]dto.ProjectSummaryResponse, 0, len(projects)),
		PaginationInfo: dto.NewPaginationInfo(filter.Page, filter.PageSize, total),
	}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, dto.FromProjectSummary(p))
	}
	return resp, nil
}

// GetByID retrieves one project
func (s *projectServiceImpl) GetByID(ctx context.Context, principal *auth.Principal, id int64) (*dto.ProjectResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canAccess(ctx, principal, p); err != nil {
		return nil, err
	}
	resp := dto.FromProject(p)
	return &resp, nil
}

// Create opens a draft project for exactly one bearer: an association acted
// for by its president, or the calling user personally.
func (s *projectServiceImpl) Create(ctx context.Context, principal *auth.Principal, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if (req.AssociationID == nil) == (req.UserID == nil) {
		return nil, apperrors.ErrProjectOwnership
	}
	if req.PlannedStartDate.After(req.PlannedEndDate) {
		return nil, apperrors.ErrProjectDates
	}

	p := &models.Project{
		Name:             req.Name,
		AssociationID:    req.AssociationID,
		UserID:           req.UserID,
		PlannedStartDate: req.PlannedStartDate,
		PlannedEndDate:   req.PlannedEndDate,
		PlannedLocation:  req.PlannedLocation,
		ProjectStatus:    models.ProjectDraft,
	}

	if req.AssociationID != nil {
		a, err := s.associationRepo.GetByID(ctx, *req.AssociationID)
		if err != nil {
			return nil, err
		}
		if !a.IsEnabled || !a.CanSubmitProjects {
			return nil, apperrors.ErrCannotSubmitProjects
		}
		m := principal.MembershipIn(a.ID)
		if m == nil || !m.CanActAsPresident(time.Now()) {
			return nil, apperrors.ErrNotPresident
		}
		p.AssociationUserID = &m.ID
	} else {
		if *req.UserID != principal.UserID {
			return nil, apperrors.ErrPermissionDenied
		}
		if !principal.CanSubmitProjects || !principal.IsValidated {
			return nil, apperrors.ErrCannotSubmitProjects
		}
	}

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.projectRepo.Create(ctx, tx, p)
		if err != nil {
			return err
		}
		p.ID = id
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectCreated,
			ActionUserID: principal.UserID,
			ProjectID:    &id,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromProject(p)
	return &resp, nil
}

// Update applies a bearer-side update. Only drafts are editable.
func (s *projectServiceImpl) Update(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanEditProject(p, time.Now()) {
		return nil, apperrors.ErrPermissionDenied
	}
	if !p.ProjectStatus.IsStudentEditable() {
		return nil, apperrors.ErrProjectNotEditable
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.PlannedStartDate != nil {
		p.PlannedStartDate = *req.PlannedStartDate
	}
	if req.PlannedEndDate != nil {
		p.PlannedEndDate = *req.PlannedEndDate
	}
	if req.PlannedLocation != nil {
		p.PlannedLocation = *req.PlannedLocation
	}
	if req.BudgetPreviousEdition != nil {
		p.BudgetPreviousEdition = *req.BudgetPreviousEdition
	}
	if req.TargetAudience != nil {
		p.TargetAudience = *req.TargetAudience
	}
	if req.AmountStudentsAudience != nil {
		p.AmountStudentsAudience = *req.AmountStudentsAudience
	}
	if req.AmountAllAudience != nil {
		p.AmountAllAudience = *req.AmountAllAudience
	}
	if req.TicketPrice != nil {
		p.TicketPrice = *req.TicketPrice
	}
	if req.IndividualCost != nil {
		p.IndividualCost = *req.IndividualCost
	}
	if req.Goals != nil {
		p.Goals = *req.Goals
	}
	if req.Summary != nil {
		p.Summary = *req.Summary
	}
	if req.PlannedActivities != nil {
		p.PlannedActivities = *req.PlannedActivities
	}
	if req.PreventionSafety != nil {
		p.PreventionSafety = *req.PreventionSafety
	}
	if req.MarketingCampaign != nil {
		p.MarketingCampaign = *req.MarketingCampaign
	}

	if p.PlannedStartDate.After(p.PlannedEndDate) {
		return nil, apperrors.ErrProjectDates
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.projectRepo.Update(ctx, tx, p); err != nil {
			return err
		}
		if req.CategoryIDs != nil {
			if err := s.projectRepo.ReplaceCategories(ctx, tx, p.ID, req.CategoryIDs); err != nil {
				return err
			}
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectUpdated,
			ActionUserID: principal.UserID,
			ProjectID:    &p.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromProject(p)
	return &resp, nil
}

// UpdateReview fills in review-side fields, open from validation until the
// review is filed.
func (s *projectServiceImpl) UpdateReview(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateProjectReviewRequest) (*dto.ProjectResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanEditProject(p, time.Now()) {
		return nil, apperrors.ErrPermissionDenied
	}
	if p.ProjectStatus != models.ProjectValidated && p.ProjectStatus != models.ProjectReviewDraft {
		return nil, apperrors.ErrProjectNotEditable
	}

	if req.Outcome != nil {
		p.Outcome = req.Outcome
	}
	if req.Income != nil {
		p.Income = req.Income
	}
	if req.RealStartDate != nil {
		p.RealStartDate = req.RealStartDate
	}
	if req.RealEndDate != nil {
		p.RealEndDate = req.RealEndDate
	}
	if req.RealLocation != nil {
		p.RealLocation = req.RealLocation
	}
	if req.Review != nil {
		p.Review = req.Review
	}
	if req.ImpactStudents != nil {
		p.ImpactStudents = req.ImpactStudents
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Difficulties != nil {
		p.Difficulties = req.Difficulties
	}
	if req.Improvements != nil {
		p.Improvements = req.Improvements
	}

	if p.RealStartDate != nil && p.RealEndDate != nil && p.RealStartDate.After(*p.RealEndDate) {
		return nil, apperrors.ErrProjectDates
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.projectRepo.Update(ctx, tx, p); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectUpdated,
			ActionUserID: principal.UserID,
			ProjectID:    &p.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromProject(p)
	return &resp, nil
}

// projectScope loads the owning association and the funds a project's
// submissions target, the inputs of the project access predicates.
func projectScope(ctx context.Context, q repositories.Querier, associationRepo *repositories.AssociationRepository,
	pcfRepo *repositories.ProjectCommissionFundRepository, p *models.Project) (*models.Association, []int64, error) {
	var association *models.Association
	if p.AssociationID != nil {
		a, err := associationRepo.GetByID(ctx, *p.AssociationID)
		if err != nil {
			return nil, nil, err
		}
		association = a
	}
	fundIDs, err := pcfRepo.GetFundIDsForProject(ctx, q, p.ID)
	if err != nil {
		return nil, nil, err
	}
	return association, fundIDs, nil
}

// canAccess resolves the project's scope and applies the read predicate.
func (s *projectServiceImpl) canAccess(ctx context.Context, principal *auth.Principal, p *models.Project) error {
	association, fundIDs, err := projectScope(ctx, s.db.Pool, s.associationRepo, s.pcfRepo, p)
	if err != nil {
		return err
	}
	if !principal.CanAccessProject(p, association, fundIDs) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// statusActor resolves which side of the transition table applies to the
// caller for this project.
func (s *projectServiceImpl) statusActor(ctx context.Context, principal *auth.Principal, p *models.Project) (models.StatusActor, error) {
	association, fundIDs, err := projectScope(ctx, s.db.Pool, s.associationRepo, s.pcfRepo, p)
	if err != nil {
		return "", err
	}
	if principal.ManagesProject(p, association, fundIDs) {
		return models.ActorManager, nil
	}
	if principal.CanEditProject(p, time.Now()) {
		return models.ActorStudent, nil
	}
	return "", apperrors.ErrPermissionDenied
}

// UpdateStatus drives the project through the funding workflow. Submission
// steps require the mandatory documents of their phase; manager decisions
// notify the bearer.
func (s *projectServiceImpl) UpdateStatus(ctx context.Context, principal *auth.Principal, id int64, target models.ProjectStatus) (*dto.ProjectResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := s.statusActor(ctx, principal, p)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionStatus(p.ProjectStatus, actor, target) {
		return nil, apperrors.NewInvariantError(apperrors.ErrProjectTransition,
			"cannot move project from "+string(p.ProjectStatus)+" to "+string(target))
	}

	switch {
	case p.ProjectStatus == models.ProjectDraft && target == models.ProjectProcessing:
		submissions, err := s.pcfRepo.GetByProject(ctx, s.db.Pool, p.ID)
		if err != nil {
			return nil, err
		}
		if len(submissions) == 0 {
			return nil, apperrors.NewInvariantError(apperrors.ErrValidationFailed,
				"project has no commission fund submissions")
		}
		missing, err := s.missingProjectDocuments(ctx, p, []models.ProcessType{models.ProcessDocumentProject})
		if err != nil {
			return nil, err
		}
		if missing {
			return nil, apperrors.ErrProjectDocsMissing
		}

	case p.ProjectStatus == models.ProjectValidated && target == models.ProjectReviewDraft:
		submissions, err := s.pcfRepo.GetByProject(ctx, s.db.Pool, p.ID)
		if err != nil {
			return nil, err
		}
		// Each submission must carry a decision, or its commission session
		// must already have been held.
		now := time.Now()
		for _, pcf := range submissions {
			if pcf.IsValidatedByAdmin != nil {
				continue
			}
			cf, err := s.commissionRepo.GetCommissionFundByID(ctx, pcf.CommissionFundID)
			if err != nil {
				return nil, err
			}
			if cf.Commission == nil || !cf.Commission.SessionHeldBefore(now) {
				return nil, apperrors.ErrReviewCommissionPending
			}
		}

	case p.ProjectStatus == models.ProjectReviewDraft && target == models.ProjectReviewProcessing:
		missing, err := s.missingProjectDocuments(ctx, p, []models.ProcessType{models.ProcessDocumentProjectReview})
		if err != nil {
			return nil, err
		}
		if missing {
			return nil, apperrors.ErrProjectDocsMissing
		}
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.projectRepo.UpdateStatus(ctx, tx, p.ID, target); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectStatusChanged,
			ActionUserID: principal.UserID,
			ProjectID:    &p.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.ProjectStatus = target

	if actor == models.ActorManager &&
		(target == models.ProjectValidated || target == models.ProjectRejected ||
			target == models.ProjectReviewValidated || target == models.ProjectReviewRejected) {
		s.notifyDecision(ctx, p, target)
	}

	resp := dto.FromProject(p)
	return &resp, nil
}

// notifyDecision mails the bearer about a manager decision
func (s *projectServiceImpl) notifyDecision(ctx context.Context, p *models.Project, decision models.ProjectStatus) {
	recipient := ""
	if p.AssociationID != nil {
		if a, err := s.associationRepo.GetByID(ctx, *p.AssociationID); err == nil {
			recipient = a.Email
		}
	}
	if recipient == "" {
		return
	}
	if err := s.notifier.Send(email.TemplateProjectDecision, recipient, map[string]string{
		"project_name": p.Name,
		"decision":     string(decision),
	}); err != nil {
		s.logger.Error().Err(err).Int64("projectID", p.ID).Msg("Failed to send project decision mail")
	}
}

// missingProjectDocuments reports whether a required document of the given
// process types has no upload for the project.
func (s *projectServiceImpl) missingProjectDocuments(ctx context.Context, p *models.Project, processTypes []models.ProcessType) (bool, error) {
	required, err := s.documentRepo.GetRequiredByProcessTypes(ctx, processTypes)
	if err != nil {
		return false, err
	}
	for _, doc := range required {
		count, err := s.uploadRepo.CountForOwner(ctx, doc.ID, nil, nil, &p.ID)
		if err != nil {
			return false, err
		}
		if count == 0 {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a project: its bearer while still a draft, or a manager
// once archived.
func (s *projectServiceImpl) Delete(ctx context.Context, principal *auth.Principal, id int64) error {
	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.statusActor(ctx, principal, p)
	if err != nil {
		return err
	}
	switch actor {
	case models.ActorStudent:
		if p.ProjectStatus != models.ProjectDraft {
			return apperrors.ErrProjectNotEditable
		}
	case models.ActorManager:
		if !p.ProjectStatus.IsArchived() {
			return apperrors.NewForbiddenError("only archived projects may be deleted by managers")
		}
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.projectRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectDeleted,
			ActionUserID: principal.UserID,
			ProjectID:    &id,
		})
		return nil
	})
}

// Export assembles the project dossier consumed by the PDF formatter.
func (s *projectServiceImpl) Export(ctx context.Context, principal *auth.Principal, id int64) (*dto.ProjectExportResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canAccess(ctx, principal, p); err != nil {
		return nil, err
	}

	submissions, err := s.pcfRepo.GetByProject(ctx, s.db.Pool, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.projectRepo.GetComments(ctx, id, !principal.IsManager())
	if err != nil {
		return nil, err
	}
	uploads, err := s.uploadRepo.GetAll(ctx, repositories.DocumentUploadFilter{ProjectID: &id})
	if err != nil {
		return nil, err
	}

	out := &dto.ProjectExportResponse{
		Project:     dto.FromProject(p),
		Submissions: make([]dto.ProjectCommissionFundResponse, 0, len(submissions)),
		Comments:    make([]dto.ProjectCommentResponse, 0, len(comments)),
		Documents:   make([]dto.DocumentUploadResponse, 0, len(uploads)),
	}
	for _, pcf := range submissions {
		out.Submissions = append(out.Submissions, dto.FromProjectCommissionFund(pcf))
	}
	for _, c := range comments {
		out.Comments = append(out.Comments, dto.ProjectCommentResponse{
			ID:           c.ID,
			ProjectID:    c.ProjectID,
			UserID:       c.UserID,
			Text:         c.Text,
			IsVisible:    c.IsVisible,
			CreationDate: c.CreationDate,
			EditionDate:  c.EditionDate,
		})
	}
	for _, u := range uploads {
		out.Documents = append(out.Documents, dto.FromDocumentUpload(u))
	}
	return out, nil
}

// GetCategoryNames retrieves the project category catalog
func (s *projectServiceImpl) GetCategoryNames(ctx context.Context) ([]dto.ProjectCategoryNameResponse, error) {
	names, err := s.projectRepo.GetAllCategoryNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectCategoryNameResponse, 0, len(names))
	for _, n := range names {
		out = append(out, dto.ProjectCategoryNameResponse{ID: n.ID, Name: n.Name})
	}
	return out, nil
}

// GetComments lists a project's comments. Bearers see only the visible ones.
func (s *projectServiceImpl) GetComments(ctx context.Context, principal *auth.Principal, projectID int64) ([]dto.ProjectCommentResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.canAccess(ctx, principal, p); err != nil {
		return nil, err
	}

	comments, err := s.projectRepo.GetComments(ctx, projectID, !principal.IsManager())
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectCommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, dto.ProjectCommentResponse{
			ID:           c.ID,
			ProjectID:    c.ProjectID,
			UserID:       c.UserID,
			Text:         c.Text,
			IsVisible:    c.IsVisible,
			CreationDate: c.CreationDate,
			EditionDate:  c.EditionDate,
		})
	}
	return out, nil
}

// CreateComment leaves a remark on a project. Hidden comments are a manager
// tool.
func (s *projectServiceImpl) CreateComment(ctx context.Context, principal *auth.Principal, projectID int64, req *dto.CreateProjectCommentRequest) (*dto.ProjectCommentResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.canAccess(ctx, principal, p); err != nil {
		return nil, err
	}
	if !req.IsVisible && !principal.IsManager() {
		return nil, apperrors.NewForbiddenError("only managers may leave hidden comments")
	}

	c := &models.ProjectComment{
		ProjectID: projectID,
		UserID:    principal.UserID,
		Text:      req.Text,
		IsVisible: req.IsVisible,
	}
	id, err := s.projectRepo.CreateComment(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id

	return &dto.ProjectCommentResponse{
		ID:           c.ID,
		ProjectID:    c.ProjectID,
		UserID:       c.UserID,
		Text:         c.Text,
		IsVisible:    c.IsVisible,
		CreationDate: c.CreationDate,
		EditionDate:  c.EditionDate,
	}, nil
}

// GetSubmissions lists a project's commission fund submissions
func (s *projectServiceImpl) GetSubmissions(ctx context.Context, principal *auth.Principal, projectID int64) ([]dto.ProjectCommissionFundResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.canAccess(ctx, principal, p); err != nil {
		return nil, err
	}

	submissions, err := s.pcfRepo.GetByProject(ctx, s.db.Pool, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectCommissionFundResponse, 0, len(submissions))
	for _, pcf := range submissions {
		out = append(out, dto.FromProjectCommissionFund(pcf))
	}
	return out, nil
}

// CreateSubmission submits a draft project to a commission fund. All of a
// project's submissions must target the same commission, the commission must
// be open with its deadline ahead, and site funds take site associations
// only.
func (s *projectServiceImpl) CreateSubmission(ctx context.Context, principal *auth.Principal, req *dto.CreateProjectCommissionFundRequest) (*dto.ProjectCommissionFundResponse, error) {
	p, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !principal.CanEditProject(p, time.Now()) {
		return nil, apperrors.ErrPermissionDenied
	}
	if p.ProjectStatus != models.ProjectDraft {
		return nil, apperrors.ErrProjectNotEditable
	}

	cf, err := s.commissionRepo.GetCommissionFundByID(ctx, req.CommissionFundID)
	if err != nil {
		return nil, err
	}
	if cf.Commission == nil || cf.Fund == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	if !cf.Commission.IsOpenToProjects {
		return nil, apperrors.ErrCommissionClosed
	}
	if !cf.Commission.AcceptsSubmissionsOn(time.Now()) {
		return nil, apperrors.ErrDeadlinePassed
	}
	if cf.Fund.IsSite {
		if p.AssociationID == nil {
			return nil, apperrors.ErrSiteFundRestricted
		}
		a, err := s.associationRepo.GetByID(ctx, *p.AssociationID)
		if err != nil {
			return nil, err
		}
		if !a.IsSite {
			return nil, apperrors.ErrSiteFundRestricted
		}
	}

	pcf := &models.ProjectCommissionFund{
		ProjectID:                   req.ProjectID,
		CommissionFundID:            req.CommissionFundID,
		IsFirstEdition:              req.IsFirstEdition,
		AmountAskedPreviousEdition:  req.AmountAskedPreviousEdition,
		AmountEarnedPreviousEdition: req.AmountEarnedPreviousEdition,
		AmountAsked:                 req.AmountAsked,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		commissionIDs, err := s.pcfRepo.GetCommissionIDsForProject(ctx, tx, req.ProjectID)
		if err != nil {
			return err
		}
		for _, cid := range commissionIDs {
			if cid != cf.CommissionID {
				return apperrors.ErrMultipleCommissions
			}
		}

		id, err := s.pcfRepo.Create(ctx, tx, pcf)
		if err != nil {
			return err
		}
		pcf.ID = id
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectSubmissionCreated,
			ActionUserID: principal.UserID,
			ProjectID:    &req.ProjectID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromProjectCommissionFund(pcf)
	return &resp, nil
}

// UpdateSubmission updates a submission. Bearer fields are editable while
// the project is a draft; validator fields belong to the fund's managers and
// resolve the project decision once every submission is decided.
func (s *projectServiceImpl) UpdateSubmission(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateProjectCommissionFundRequest) (*dto.ProjectCommissionFundResponse, error) {
	pcf, err := s.pcfRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.projectRepo.GetByID(ctx, pcf.ProjectID)
	if err != nil {
		return nil, err
	}

	if req.HasValidatorFields() {
		return s.updateSubmissionDecision(ctx, principal, pcf, p, req)
	}

	if !principal.CanEditProject(p, time.Now()) {
		return nil, apperrors.ErrPermissionDenied
	}
	if p.ProjectStatus != models.ProjectDraft {
		return nil, apperrors.ErrProjectNotEditable
	}

	cf, err := s.commissionRepo.GetCommissionFundByID(ctx, pcf.CommissionFundID)
	if err != nil {
		return nil, err
	}
	if cf.Commission == nil || !cf.Commission.AcceptsSubmissionsOn(time.Now()) {
		return nil, apperrors.ErrDeadlinePassed
	}

	if req.IsFirstEdition != nil {
		pcf.IsFirstEdition = *req.IsFirstEdition
	}
	if req.AmountAskedPreviousEdition != nil {
		pcf.AmountAskedPreviousEdition = *req.AmountAskedPreviousEdition
	}
	if req.AmountEarnedPreviousEdition != nil {
		pcf.AmountEarnedPreviousEdition = *req.AmountEarnedPreviousEdition
	}
	if req.AmountAsked != nil {
		pcf.AmountAsked = *req.AmountAsked
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.pcfRepo.Update(ctx, tx, pcf); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectSubmissionUpdated,
			ActionUserID: principal.UserID,
			ProjectID:    &pcf.ProjectID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromProjectCommissionFund(pcf)
	return &resp, nil
}

// updateSubmissionDecision applies validator fields and promotes the project
// once the last pending decision lands. The read and the promotion share one
// transaction so two concurrent validators cannot both see a pending state.
func (s *projectServiceImpl) updateSubmissionDecision(ctx context.Context, principal *auth.Principal, pcf *models.ProjectCommissionFund, p *models.Project, req *dto.UpdateProjectCommissionFundRequest) (*dto.ProjectCommissionFundResponse, error) {
	cf, err := s.commissionRepo.GetCommissionFundByID(ctx, pcf.CommissionFundID)
	if err != nil {
		return nil, err
	}
	if !principal.ManagesFund(cf.FundID) {
		return nil, apperrors.ErrValidatorFieldForbidden
	}
	if p.ProjectStatus != models.ProjectProcessing {
		return nil, apperrors.ErrProjectNotEditable
	}

	if req.AmountEarned != nil {
		pcf.AmountEarned = req.AmountEarned
	}
	if req.IsValidatedByAdmin != nil {
		pcf.IsValidatedByAdmin = req.IsValidatedByAdmin
	}

	var promoted models.ProjectStatus
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.pcfRepo.Update(ctx, tx, pcf); err != nil {
			return err
		}

		submissions, err := s.pcfRepo.GetByProject(ctx, tx, pcf.ProjectID)
		if err != nil {
			return err
		}
		if status, resolved := models.ResolveProjectDecision(submissions); resolved && status != p.ProjectStatus {
			if err := s.projectRepo.UpdateStatus(ctx, tx, p.ID, status); err != nil {
				return err
			}
			promoted = status
			s.historyService.Record(ctx, tx, &models.History{
				ActionTitle:  models.ActionProjectStatusChanged,
				ActionUserID: principal.UserID,
				ProjectID:    &p.ID,
			})
		}

		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectSubmissionUpdated,
			ActionUserID: principal.UserID,
			ProjectID:    &pcf.ProjectID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if promoted == models.ProjectValidated || promoted == models.ProjectRejected {
		p.ProjectStatus = promoted
		s.notifyDecision(ctx, p, promoted)
	}

	resp := dto.FromProjectCommissionFund(pcf)
	return &resp, nil
}

// DeleteSubmission withdraws a submission from a draft project
func (s *projectServiceImpl) DeleteSubmission(ctx context.Context, principal *auth.Principal, id int64) error {
	pcf, err := s.pcfRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p, err := s.projectRepo.GetByID(ctx, pcf.ProjectID)
	if err != nil {
		return err
	}
	if !principal.CanEditProject(p, time.Now()) {
		return apperrors.ErrPermissionDenied
	}
	if p.ProjectStatus != models.ProjectDraft {
		return apperrors.ErrProjectNotEditable
	}

	cf, err := s.commissionRepo.GetCommissionFundByID(ctx, pcf.CommissionFundID)
	if err != nil {
		return err
	}
	if cf.Commission == nil || !cf.Commission.AcceptsSubmissionsOn(time.Now()) {
		return apperrors.ErrDeadlinePassed
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.pcfRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:  models.ActionProjectSubmissionDeleted,
			ActionUserID: principal.UserID,
			ProjectID:    &pcf.ProjectID,
		})
		return nil
	})
}
