package services

import (
	"context"
	"io"
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
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/filestorage"
)

// DocumentService defines the interface for document type and upload operations
type DocumentService interface {
	GetDocuments(ctx context.Context, filter *dto.DocumentFilterRequest) ([]dto.DocumentResponse, error)
	GetDocumentByID(ctx context.Context, id int64) (*dto.DocumentResponse, error)
	CreateDocument(ctx context.Context, principal *auth.Principal, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	UpdateDocument(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	DeleteDocument(ctx context.Context, principal *auth.Principal, id int64) error

	GetUploads(ctx context.Context, principal *auth.Principal, filter *dto.DocumentUploadFilterRequest) ([]dto.DocumentUploadResponse, error)
	GetUploadByID(ctx context.Context, principal *auth.Principal, id int64) (*dto.DocumentUploadResponse, error)
	CreateUpload(ctx context.Context, principal *auth.Principal, req *dto.CreateDocumentUploadRequest, filename, mimeType string, file io.Reader) (*dto.DocumentUploadResponse, error)
	PatchUpload(ctx context.Context, principal *auth.Principal, id int64, req *dto.PatchDocumentUploadRequest) (*dto.DocumentUploadResponse, error)
	DeleteUpload(ctx context.Context, principal *auth.Principal, id int64) error
	OpenUploadFile(ctx context.Context, principal *auth.Principal, id int64) (io.ReadCloser, string, error)
}

// documentServiceImpl implements DocumentService
type documentServiceImpl struct {
	db              *db.PostgresDB
	documentRepo    *repositories.DocumentRepository
	uploadRepo      *repositories.DocumentUploadRepository
	projectRepo     *repositories.ProjectRepository
	associationRepo *repositories.AssociationRepository
	pcfRepo         *repositories.ProjectCommissionFundRepository
	publicStorage   filestorage.Storage
	privateStorage  filestorage.Storage
	historyService  HistoryService
	logger          zerolog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	database *db.PostgresDB,
	documentRepo *repositories.DocumentRepository,
	uploadRepo *repositories.DocumentUploadRepository,
	projectRepo *repositories.ProjectRepository,
	associationRepo *repositories.AssociationRepository,
	pcfRepo *repositories.ProjectCommissionFundRepository,
	publicStorage filestorage.Storage,
	privateStorage filestorage.Storage,
	historyService HistoryService,
	logger zerolog.Logger,
) DocumentService {
	return &documentServiceImpl{
		db:              database,
		documentRepo:    documentRepo,
		uploadRepo:      uploadRepo,
		projectRepo:     projectRepo,
		associationRepo: associationRepo,
		pcfRepo:         pcfRepo,
		publicStorage:   publicStorage,
		privateStorage:  privateStorage,
		historyService:  historyService,
		logger:          logger,
	}
}

// canAccessProject resolves the project's scope and applies the read
// predicate.
func (s *documentServiceImpl) canAccessProject(ctx context.Context, principal *auth.Principal, project *models.Project) bool {
	association, fundIDs, err := projectScope(ctx, s.db.Pool, s.associationRepo, s.pcfRepo, project)
	if err != nil {
		return false
	}
	return principal.CanAccessProject(project, association, fundIDs)
}

// GetDocuments retrieves document type definitions matching the filter
func (s *documentServiceImpl) GetDocuments(ctx context.Context, filter *dto.DocumentFilterRequest) ([]dto.DocumentResponse, error) {
	var processTypes []models.ProcessType
	if filter.ProcessTypes != "" {
		for _, raw := range strings.Split(filter.ProcessTypes, ",") {
			if raw = strings.TrimSpace(raw); raw != "" {
				processTypes = append(processTypes, models.ProcessType(raw))
			}
		}
	}

	documents, err := s.documentRepo.GetAll(ctx, processTypes, filter.FundID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		out = append(out, dto.FromDocument(d))
	}
	return out, nil
}

// GetDocumentByID retrieves one document type definition
func (s *documentServiceImpl) GetDocumentByID(ctx context.Context, id int64) (*dto.DocumentResponse, error) {
	d, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromDocument(d)
	return &resp, nil
}

// CreateDocument registers a document type definition. Staff only.
func (s *documentServiceImpl) CreateDocument(ctx context.Context, principal *auth.Principal, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if !principal.IsStaff {
		return nil, apperrors.ErrPermissionDenied
	}

	d := &models.Document{
		Name:                 req.Name,
		Acronym:              req.Acronym,
		ProcessType:          models.ProcessType(req.ProcessType),
		IsMultiple:           req.IsMultiple,
		IsRequiredInProcess:  req.IsRequiredInProcess,
		DaysBeforeExpiration: req.DaysBeforeExpiration,
		ExpirationDay:        req.ExpirationDay,
		MimeTypes:            req.MimeTypes,
		InstitutionID:        req.InstitutionID,
		FundID:               req.FundID,
	}

	if !d.HasValidExpirationRule() {
		return nil, apperrors.ErrDocumentExpirationRule
	}

	id, err := s.documentRepo.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	d.ID = id

	resp := dto.FromDocument(d)
	return &resp, nil
}

// UpdateDocument modifies a document type definition. Staff only, and only
// for process types still open to edits.
func (s *documentServiceImpl) UpdateDocument(ctx context.Context, principal *auth.Principal, id int64, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	if !principal.IsStaff {
		return nil, apperrors.ErrPermissionDenied
	}

	d, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsUpdatable() {
		return nil, apperrors.ErrDocumentNotUpdatable
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Acronym != nil {
		d.Acronym = *req.Acronym
	}
	if req.IsMultiple != nil {
		d.IsMultiple = *req.IsMultiple
	}
	if req.IsRequiredInProcess != nil {
		d.IsRequiredInProcess = *req.IsRequiredInProcess
	}
	if req.DaysBeforeExpiration != nil {
		d.DaysBeforeExpiration = req.DaysBeforeExpiration
	}
	if req.ExpirationDay != nil {
		d.ExpirationDay = req.ExpirationDay
	}
	if req.MimeTypes != nil {
		d.MimeTypes = req.MimeTypes
	}

	if !d.HasValidExpirationRule() {
		return nil, apperrors.ErrDocumentExpirationRule
	}

	if err := s.documentRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	resp := dto.FromDocument(d)
	return &resp, nil
}

// DeleteDocument removes a document type definition. Refused while uploads
// reference it. Staff only.
func (s *documentServiceImpl) DeleteDocument(ctx context.Context, principal *auth.Principal, id int64) error {
	if !principal.IsStaff {
		return apperrors.ErrPermissionDenied
	}
	if _, err := s.documentRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.documentRepo.Delete(ctx, id)
}

// canSeeUpload reports whether the principal may read an upload and its file
func (s *documentServiceImpl) canSeeUpload(ctx context.Context, principal *auth.Principal, u *models.DocumentUpload) bool {
	if principal.IsManager() {
		return true
	}
	if u.UserID != nil && *u.UserID == principal.UserID {
		return true
	}
	if u.AssociationID != nil && principal.IsMemberOf(*u.AssociationID) {
		return true
	}
	if u.ProjectID != nil {
		project, err := s.projectRepo.GetByID(ctx, *u.ProjectID)
		if err == nil && s.canAccessProject(ctx, principal, project) {
			return true
		}
	}
	return false
}

// GetUploads lists uploads. Non-managers must scope the query to themselves,
// an association they belong to, or a project they can access.
func (s *documentServiceImpl) GetUploads(ctx context.Context, principal *auth.Principal, filter *dto.DocumentUploadFilterRequest) ([]dto.DocumentUploadResponse, error) {
	if !principal.IsManager() {
		switch {
		case filter.UserID != nil && *filter.UserID == principal.UserID:
		case filter.AssociationID != nil && principal.IsMemberOf(*filter.AssociationID):
		case filter.ProjectID != nil:
			project, err := s.projectRepo.GetByID(ctx, *filter.ProjectID)
			if err != nil || !s.canAccessProject(ctx, principal, project) {
				return nil, apperrors.ErrPermissionDenied
			}
		default:
			return nil, apperrors.ErrPermissionDenied
		}
	}

	var processTypes []models.ProcessType
	if filter.ProcessTypes != "" {
		for _, raw := range strings.Split(filter.ProcessTypes, ",") {
			if raw = strings.TrimSpace(raw); raw != "" {
				processTypes = append(processTypes, models.ProcessType(raw))
			}
		}
	}

	uploads, err := s.uploadRepo.GetAll(ctx, repositories.DocumentUploadFilter{
		UserID:        filter.UserID,
		AssociationID: filter.AssociationID,
		ProjectID:     filter.ProjectID,
		ProcessTypes:  processTypes,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentUploadResponse, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, dto.FromDocumentUpload(u))
	}
	return out, nil
}

// GetUploadByID retrieves one upload's metadata
func (s *documentServiceImpl) GetUploadByID(ctx context.Context, principal *auth.Principal, id int64) (*dto.DocumentUploadResponse, error) {
	u, err := s.uploadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canSeeUpload(ctx, principal, u) {
		return nil, apperrors.ErrPermissionDenied
	}
	resp := dto.FromDocumentUpload(u)
	return &resp, nil
}

// CreateUpload stores a file and its metadata row. The upload binds to
// exactly one owner and must carry an accepted MIME type. Personal documents
// land in the encrypted store.
func (s *documentServiceImpl) CreateUpload(ctx context.Context, principal *auth.Principal, req *dto.CreateDocumentUploadRequest, filename, mimeType string, file io.Reader) (*dto.DocumentUploadResponse, error) {
	doc, err := s.documentRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	u := &models.DocumentUpload{
		DocumentID:    doc.ID,
		UserID:        req.UserID,
		AssociationID: req.AssociationID,
		ProjectID:     req.ProjectID,
	}
	if req.Comment != "" {
		u.Comment = &req.Comment
	}

	if u.OwnerCount() != 1 {
		return nil, apperrors.ErrDocumentOwnerBinding
	}
	if !doc.AcceptsMime(mimeType) {
		return nil, apperrors.ErrMimeRejected
	}

	switch {
	case u.UserID != nil:
		if *u.UserID != principal.UserID && !principal.IsManager() {
			return nil, apperrors.ErrPermissionDenied
		}
	case u.AssociationID != nil:
		if !principal.IsMemberOf(*u.AssociationID) && !principal.IsManager() {
			return nil, apperrors.ErrPermissionDenied
		}
	case u.ProjectID != nil:
		project, err := s.projectRepo.GetByID(ctx, *u.ProjectID)
		if err != nil {
			return nil, err
		}
		if !s.canAccessProject(ctx, principal, project) {
			return nil, apperrors.ErrPermissionDenied
		}
	}

	if !doc.IsMultiple {
		count, err := s.uploadRepo.CountForOwner(ctx, doc.ID, u.UserID, u.AssociationID, u.ProjectID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.NewConflictError("this document is already uploaded for this owner")
		}
	}

	key, err := s.storageFor(doc).Save(ctx, strings.ToLower(string(doc.ProcessType)), filename, file)
	if err != nil {
		return nil, err
	}
	u.Path = key

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.uploadRepo.Create(ctx, u)
		if err != nil {
			return err
		}
		u.ID = id
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:      models.ActionDocumentUploadCreated,
			ActionUserID:     principal.UserID,
			DocumentUploadID: &id,
		})
		return nil
	})
	if err != nil {
		// Orphaned file, remove it before reporting the failure.
		if delErr := s.storageFor(doc).Delete(ctx, key); delErr != nil {
			s.logger.Error().Err(delErr).Str("key", key).Msg("Failed to remove orphaned upload file")
		}
		return nil, err
	}

	u.Document = doc
	resp := dto.FromDocumentUpload(u)
	return &resp, nil
}

// PatchUpload validates or comments an upload. Validation is a manager act;
// flipping validate off clears the validation date.
func (s *documentServiceImpl) PatchUpload(ctx context.Context, principal *auth.Principal, id int64, req *dto.PatchDocumentUploadRequest) (*dto.DocumentUploadResponse, error) {
	u, err := s.uploadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Validate != nil && !principal.IsManager() {
		return nil, apperrors.NewForbiddenError("only managers may validate uploads")
	}
	if req.Validate == nil && !s.canSeeUpload(ctx, principal, u) {
		return nil, apperrors.ErrPermissionDenied
	}

	if req.Validate != nil {
		if *req.Validate {
			now := time.Now()
			u.ValidatedDate = &now
		} else {
			u.ValidatedDate = nil
		}
	}
	if req.Comment != nil {
		u.Comment = req.Comment
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.uploadRepo.SetValidated(ctx, u.ID, u.ValidatedDate, u.Comment); err != nil {
			return err
		}
		if req.Validate != nil && *req.Validate {
			s.historyService.Record(ctx, tx, &models.History{
				ActionTitle:      models.ActionDocumentUploadValidated,
				ActionUserID:     principal.UserID,
				DocumentUploadID: &u.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromDocumentUpload(u)
	return &resp, nil
}

// DeleteUpload removes an upload row and its stored file
func (s *documentServiceImpl) DeleteUpload(ctx context.Context, principal *auth.Principal, id int64) error {
	u, err := s.uploadRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.canSeeUpload(ctx, principal, u) {
		return apperrors.ErrPermissionDenied
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.uploadRepo.Delete(ctx, id); err != nil {
			return err
		}
		s.historyService.Record(ctx, tx, &models.History{
			ActionTitle:      models.ActionDocumentUploadDeleted,
			ActionUserID:     principal.UserID,
			DocumentUploadID: &id,
		})
		return nil
	})
	if err != nil {
		return err
	}

	if u.Document != nil {
		if err := s.storageFor(u.Document).Delete(ctx, u.Path); err != nil {
			s.logger.Error().Err(err).Str("key", u.Path).Msg("Failed to remove stored file")
		}
	}
	return nil
}

// OpenUploadFile streams an upload's content along with a download filename
func (s *documentServiceImpl) OpenUploadFile(ctx context.Context, principal *auth.Principal, id int64) (io.ReadCloser, string, error) {
	u, err := s.uploadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !s.canSeeUpload(ctx, principal, u) {
		return nil, "", apperrors.ErrPermissionDenied
	}
	if u.Document == nil {
		return nil, "", apperrors.ErrDocumentNotFound
	}

	rc, err := s.storageFor(u.Document).Open(ctx, u.Path)
	if err != nil {
		return nil, "", err
	}

	// The stored key ends with the slugged original name.
	name := u.Path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, "_"); idx >= 0 {
		name = name[idx+1:]
	}
	return rc, name, nil
}

// storageFor routes personal documents to the encrypted private store and
// everything else to the public one.
func (s *documentServiceImpl) storageFor(d *models.Document) filestorage.Storage {
	if d.ProcessType == models.ProcessDocumentUser {
		return s.privateStorage
	}
	return s.publicStorage
}
