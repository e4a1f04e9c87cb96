package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/services"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/middleware"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
)

// CommissionController handles commission and fund endpoints
type CommissionController struct {
	commissionService services.CommissionService
}

// NewCommissionController creates a new CommissionController
func NewCommissionController(commissionService services.CommissionService) *CommissionController {
	return &CommissionController{commissionService: commissionService}
}

// GetCommissions handles GET /commissions
func (c *CommissionController) GetCommissions(ctx *gin.Context) {
	var filter dto.CommissionFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.commissionService.GetAll(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Commissions retrieved successfully"))
}

// GetCommission handles GET /commissions/:id
func (c *CommissionController) GetCommission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid commission id"))
		return
	}

	resp, err := c.commissionService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Commission retrieved successfully"))
}

// ExportCommission handles GET /commissions/:id/export
func (c *CommissionController) ExportCommission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid commission id"))
		return
	}

	resp, err := c.commissionService.Export(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Commission export retrieved successfully"))
}

// CreateCommission handles POST /commissions
func (c *CommissionController) CreateCommission(ctx *gin.Context) {
	var req dto.CreateCommissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.commissionService.Create(ctx.Request.Context(), middleware.GetPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Commission created successfully"))
}

// UpdateCommission handles PATCH /commissions/:id
func (c *CommissionController) UpdateCommission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid commission id"))
		return
	}

	var req dto.UpdateCommissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.commissionService.Update(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Commission updated successfully"))
}

// DeleteCommission handles DELETE /commissions/:id
func (c *CommissionController) DeleteCommission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid commission id"))
		return
	}

	if err := c.commissionService.Delete(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetFunds handles GET /funds
func (c *CommissionController) GetFunds(ctx *gin.Context) {
	resp, err := c.commissionService.GetFunds(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Funds retrieved successfully"))
}

// GetCommissionFunds handles GET /commissions/:id/funds
func (c *CommissionController) GetCommissionFunds(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid commission id"))
		return
	}

	resp, err := c.commissionService.GetCommissionFunds(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Commission funds retrieved successfully"))
}
