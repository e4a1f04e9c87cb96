package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
)

// SettingService defines the interface for runtime setting operations
type SettingService interface {
	GetAll(ctx context.Context) ([]dto.SettingResponse, error)
	GetByName(ctx context.Context, name string) (*dto.SettingResponse, error)
	Update(ctx context.Context, principal *auth.Principal, name string, req *dto.UpdateSettingRequest) (*dto.SettingResponse, error)
}

// settingServiceImpl implements SettingService
type settingServiceImpl struct {
	settingRepo *repositories.SettingRepository
	logger      zerolog.Logger
}

// NewSettingService creates a new SettingService
func NewSettingService(settingRepo *repositories.SettingRepository, logger zerolog.Logger) SettingService {
	return &settingServiceImpl{
		settingRepo: settingRepo,
		logger:      logger,
	}
}

// GetAll retrieves every runtime setting
func (s *settingServiceImpl) GetAll(ctx context.Context) ([]dto.SettingResponse, error) {
	settings, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SettingResponse, 0, len(settings))
	for _, setting := range settings {
		out = append(out, dto.FromSetting(setting))
	}
	return out, nil
}

// GetByName retrieves one setting
func (s *settingServiceImpl) GetByName(ctx context.Context, name string) (*dto.SettingResponse, error) {
	setting, err := s.settingRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	resp := dto.FromSetting(setting)
	return &resp, nil
}

// Update replaces a setting's parameters document. Settings are seeded with
// the deployment; names are never created through the API. Staff only.
func (s *settingServiceImpl) Update(ctx context.Context, principal *auth.Principal, name string, req *dto.UpdateSettingRequest) (*dto.SettingResponse, error) {
	if !principal.IsStaff {
		return nil, apperrors.ErrPermissionDenied
	}

	setting, err := s.settingRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(req.Parameters, &doc); err != nil {
		return nil, apperrors.NewBadRequestError("parameters must be a JSON object")
	}
	if _, ok := doc["value"]; !ok {
		return nil, apperrors.NewInvariantError(apperrors.ErrValidationFailed,
			"parameters must carry a value key")
	}

	setting.Parameters = req.Parameters
	if err := s.settingRepo.Update(ctx, setting); err != nil {
		return nil, err
	}

	s.logger.Info().Str("setting", name).Msg("Setting updated")
	resp := dto.FromSetting(setting)
	return &resp, nil
}
