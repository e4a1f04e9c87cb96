package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/services"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/middleware"
)

// SettingController handles runtime setting and audit log endpoints
type SettingController struct {
	settingService services.SettingService
	historyService services.HistoryService
}

// NewSettingController creates a new SettingController
func NewSettingController(settingService services.SettingService, historyService services.HistoryService) *SettingController {
	return &SettingController{
		settingService: settingService,
		historyService: historyService,
	}
}

// GetSettings handles GET /settings
func (c *SettingController) GetSettings(ctx *gin.Context) {
	resp, err := c.settingService.GetAll(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Settings retrieved successfully"))
}

// GetSetting handles GET /settings/:name
func (c *SettingController) GetSetting(ctx *gin.Context) {
	resp, err := c.settingService.GetByName(ctx.Request.Context(), ctx.Param("name"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Setting retrieved successfully"))
}

// UpdateSetting handles PATCH /settings/:name
func (c *SettingController) UpdateSetting(ctx *gin.Context) {
	var req dto.UpdateSettingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.settingService.Update(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("name"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Setting updated successfully"))
}

// GetHistories handles GET /histories
func (c *SettingController) GetHistories(ctx *gin.Context) {
	var filter dto.HistoryFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.historyService.GetAll(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Histories retrieved successfully"))
}
