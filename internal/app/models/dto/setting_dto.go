package dto

import (
	"encoding/json"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// UpdateSettingRequest replaces a setting's parameters document
type UpdateSettingRequest struct {
	Parameters json.RawMessage `json:"parameters" binding:"required"`
}

// SettingResponse represents a runtime setting
type SettingResponse struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}

// FromSetting converts a setting model to its response shape
func FromSetting(s *models.Setting) SettingResponse {
	return SettingResponse{
		ID:         s.ID,
		Name:       s.Name,
		Parameters: s.Parameters,
	}
}

// HistoryResponse represents an audit row
type HistoryResponse struct {
	ID           int64  `json:"id"`
	ActionTitle  string `json:"actionTitle"`
	ActionUserID int64  `json:"actionUserId"`
	CreationDate string `json:"creationDate"`
}

// HistoryFilterRequest represents audit list filters
type HistoryFilterRequest struct {
	ActionTitles string `form:"actionTitles"`
	UserID       *int64 `form:"userId"`
	Page         int    `form:"page,default=1" binding:"min=1"`
	PageSize     int    `form:"pageSize,default=50" binding:"min=1,max=200"`
}
