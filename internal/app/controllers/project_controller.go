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

// ProjectController handles project funding workflow endpoints
type ProjectController struct {
	projectService services.ProjectService
}

// NewProjectController creates a new ProjectController
func NewProjectController(projectService services.ProjectService) *ProjectController {
	return &ProjectController{projectService: projectService}
}

// GetProjects handles GET /projects
func (c *ProjectController) GetProjects(ctx *gin.Context) {
	var filter dto.ProjectFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.projectService.GetAll(ctx.Request.Context(), middleware.GetPrincipal(ctx), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Projects retrieved successfully"))
}

// GetProject handles GET /projects/:id
func (c *ProjectController) GetProject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	resp, err := c.projectService.GetByID(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Project retrieved successfully"))
}

// CreateProject handles POST /projects
func (c *ProjectController) CreateProject(ctx *gin.Context) {
	var req dto.CreateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.projectService.Create(ctx.Request.Context(), middleware.GetPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Project created successfully"))
}

// UpdateProject handles PATCH /projects/:id
func (c *ProjectController) UpdateProject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	var req dto.UpdateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.projectService.Update(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Project updated successfully"))
}

// UpdateProjectReview handles PATCH /projects/:id/review
func (c *ProjectController) UpdateProjectReview(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	var req dto.UpdateProjectReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.projectService.UpdateReview(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Project review updated successfully"))
}

// UpdateProjectStatus handles PATCH /projects/:id/status
func (c *ProjectController) UpdateProjectStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	var req dto.UpdateProjectStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.projectService.UpdateStatus(ctx.Request.Context(), middleware.GetPrincipal(ctx),
		id, models.ProjectStatus(req.ProjectStatus))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Project status updated successfully"))
}

// DeleteProject handles DELETE /projects/:id
func (c *ProjectController) DeleteProject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	if err := c.projectService.Delete(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ExportProject handles GET /projects/:id/export
func (c *ProjectController) ExportProject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	resp, err := c.projectService.Export(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Project export retrieved successfully"))
}

// GetCategoryNames handles GET /projects/categories
func (c *ProjectController) GetCategoryNames(ctx *gin.Context) {
	resp, err := c.projectService.GetCategoryNames(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Categories retrieved successfully"))
}

// GetComments handles GET /projects/:id/comments
func (c *ProjectController) GetComments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	resp, err := c.projectService.GetComments(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Comments retrieved successfully"))
}

// CreateComment handles POST /projects/:id/comments
func (c *ProjectController) CreateComment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	var req dto.CreateProjectCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.projectService.CreateComment(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Comment created successfully"))
}

// GetSubmissions handles GET /projects/:id/commission_funds
func (c *ProjectController) GetSubmissions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid project id"))
		return
	}

	resp, err := c.projectService.GetSubmissions(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Submissions retrieved successfully"))
}

// CreateSubmission handles POST /projects/commission_funds
func (c *ProjectController) CreateSubmission(ctx *gin.Context) {
	var req dto.CreateProjectCommissionFundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.projectService.CreateSubmission(ctx.Request.Context(), middleware.GetPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Submission created successfully"))
}

// UpdateSubmission handles PATCH /projects/commission_funds/:id
func (c *ProjectController) UpdateSubmission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid submission id"))
		return
	}

	var req dto.UpdateProjectCommissionFundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.projectService.UpdateSubmission(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Submission updated successfully"))
}

// DeleteSubmission handles DELETE /projects/commission_funds/:id
func (c *ProjectController) DeleteSubmission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid submission id"))
		return
	}

	if err := c.projectService.DeleteSubmission(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
