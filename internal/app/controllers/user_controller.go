package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/services"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/middleware"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
)

// UserController handles user and group endpoints
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// GetUsers handles GET /users
func (c *UserController) GetUsers(ctx *gin.Context) {
	var filter dto.UserFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.userService.GetAll(ctx.Request.Context(), middleware.GetPrincipal(ctx), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Users retrieved successfully"))
}

// GetUser handles GET /users/:id
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid user id"))
		return
	}

	resp, err := c.userService.GetByID(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "User retrieved successfully"))
}

// GetMe handles GET /users/me
func (c *UserController) GetMe(ctx *gin.Context) {
	principal := middleware.GetPrincipal(ctx)
	resp, err := c.userService.GetByID(ctx.Request.Context(), principal, principal.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "User retrieved successfully"))
}

// UpdateUser handles PATCH /users/:id
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid user id"))
		return
	}

	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.userService.Update(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "User updated successfully"))
}

// DeleteUser handles DELETE /users/:id
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid user id"))
		return
	}

	if err := c.userService.Delete(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetGroups handles GET /groups
func (c *UserController) GetGroups(ctx *gin.Context) {
	resp, err := c.userService.GetGroups(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Groups retrieved successfully"))
}

// GetUserGroups handles GET /users/:id/groups
func (c *UserController) GetUserGroups(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid user id"))
		return
	}

	resp, err := c.userService.GetGroupLinks(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Group links retrieved successfully"))
}

// CreateGroupLink handles POST /users/groups
func (c *UserController) CreateGroupLink(ctx *gin.Context) {
	var req dto.CreateGroupLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.userService.CreateGroupLink(ctx.Request.Context(), middleware.GetPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Group link created successfully"))
}

// DeleteGroupLink handles DELETE /users/groups/:id
func (c *UserController) DeleteGroupLink(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid group link id"))
		return
	}

	if err := c.userService.DeleteGroupLink(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
