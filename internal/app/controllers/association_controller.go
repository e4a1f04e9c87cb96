package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/services"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/middleware"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
)

// AssociationController handles association, membership and catalog endpoints
type AssociationController struct {
	associationService services.AssociationService
}

// NewAssociationController creates a new AssociationController
func NewAssociationController(associationService services.AssociationService) *AssociationController {
	return &AssociationController{associationService: associationService}
}

// GetAssociations handles GET /associations
func (c *AssociationController) GetAssociations(ctx *gin.Context) {
	var filter dto.AssociationFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.associationService.GetAll(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Associations retrieved successfully"))
}

// GetPublicAssociations handles GET /associations/public, the anonymous
// directory.
func (c *AssociationController) GetPublicAssociations(ctx *gin.Context) {
	resp, err := c.associationService.GetAllPublic(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Associations retrieved successfully"))
}

// GetAssociationNames handles GET /associations/names, the picker list.
func (c *AssociationController) GetAssociationNames(ctx *gin.Context) {
	resp, err := c.associationService.GetNames(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Association names retrieved successfully"))
}

// GetAssociation handles GET /associations/:id
func (c *AssociationController) GetAssociation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid association id"))
		return
	}

	resp, err := c.associationService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Association retrieved successfully"))
}

// CreateAssociation handles POST /associations
func (c *AssociationController) CreateAssociation(ctx *gin.Context) {
	var req dto.CreateAssociationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.associationService.Create(ctx.Request.Context(), middleware.GetPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Association created successfully"))
}

// UpdateAssociation handles PATCH /associations/:id
func (c *AssociationController) UpdateAssociation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid association id"))
		return
	}

	var req dto.UpdateAssociationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.associationService.Update(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Association updated successfully"))
}

// DeleteAssociation handles DELETE /associations/:id
func (c *AssociationController) DeleteAssociation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid association id"))
		return
	}

	if err := c.associationService.Delete(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UpdateCharterStatus handles PATCH /associations/:id/status
func (c *AssociationController) UpdateCharterStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid association id"))
		return
	}

	var req dto.UpdateCharterStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.associationService.UpdateCharterStatus(ctx.Request.Context(), middleware.GetPrincipal(ctx),
		id, models.CharterStatus(req.CharterStatus))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Charter status updated successfully"))
}

// ExportAssociation handles GET /associations/:id/export
func (c *AssociationController) ExportAssociation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid association id"))
		return
	}

	resp, err := c.associationService.Export(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Association export retrieved successfully"))
}

// GetMembers handles GET /associations/:id/members
func (c *AssociationController) GetMembers(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid association id"))
		return
	}

	resp, err := c.associationService.GetMembers(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Members retrieved successfully"))
}

// AddMember handles POST /associations/members
func (c *AssociationController) AddMember(ctx *gin.Context) {
	var req dto.CreateAssociationUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.associationService.AddMember(ctx.Request.Context(), middleware.GetPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Member added successfully"))
}

// UpdateMember handles PATCH /associations/members/:id
func (c *AssociationController) UpdateMember(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid membership id"))
		return
	}

	var req dto.UpdateAssociationUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.associationService.UpdateMember(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Member updated successfully"))
}

// RemoveMember handles DELETE /associations/members/:id
func (c *AssociationController) RemoveMember(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid membership id"))
		return
	}

	if err := c.associationService.RemoveMember(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetActivityFields handles GET /associations/activity_fields
func (c *AssociationController) GetActivityFields(ctx *gin.Context) {
	resp, err := c.associationService.GetActivityFields(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Activity fields retrieved successfully"))
}

// GetInstitutions handles GET /institutions
func (c *AssociationController) GetInstitutions(ctx *gin.Context) {
	resp, err := c.associationService.GetInstitutions(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Institutions retrieved successfully"))
}

// GetInstitutionComponents handles GET /institutions/components
func (c *AssociationController) GetInstitutionComponents(ctx *gin.Context) {
	resp, err := c.associationService.GetInstitutionComponents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Institution components retrieved successfully"))
}
