package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
)

// HistoryService defines the interface for audit log operations
type HistoryService interface {
	GetAll(ctx context.Context, filter *dto.HistoryFilterRequest) (*dto.PaginatedResponse, error)
	Record(ctx context.Context, q repositories.Querier, entry *models.History)
}

// historyServiceImpl implements HistoryService
type historyServiceImpl struct {
	historyRepo *repositories.HistoryRepository
	logger      zerolog.Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(historyRepo *repositories.HistoryRepository, logger zerolog.Logger) HistoryService {
	return &historyServiceImpl{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// GetAll retrieves audit rows with pagination
func (s *historyServiceImpl) GetAll(ctx context.Context, filter *dto.HistoryFilterRequest) (*dto.PaginatedResponse, error) {
	repoFilter := repositories.HistoryFilter{
		UserID:   filter.UserID,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for _, title := range splitActionTitles(filter.ActionTitles) {
		repoFilter.ActionTitles = append(repoFilter.ActionTitles, models.HistoryAction(title))
	}

	histories, total, err := s.historyRepo.GetAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.HistoryResponse, 0, len(histories))
	for _, h := range histories {
		items = append(items, dto.HistoryResponse{
			ID:           h.ID,
			ActionTitle:  string(h.ActionTitle),
			ActionUserID: h.ActionUserID,
			CreationDate: h.CreationDate.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: dto.NewPaginationInfo(filter.Page, filter.PageSize, total),
	}, nil
}

// Record appends an audit row, logging instead of failing the caller when
// the write cannot land. Auditing never aborts the audited change.
func (s *historyServiceImpl) Record(ctx context.Context, q repositories.Querier, entry *models.History) {
	if err := s.historyRepo.Create(ctx, q, entry); err != nil {
		s.logger.Error().Err(err).Str("action", string(entry.ActionTitle)).Msg("Failed to append history row")
	}
}

func splitActionTitles(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
