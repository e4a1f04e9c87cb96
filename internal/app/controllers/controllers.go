package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/services"
)

// Controllers holds all the controller instances
type Controllers struct {
	AuthController        *AuthController
	UserController        *UserController
	AssociationController *AssociationController
	CommissionController  *CommissionController
	DocumentController    *DocumentController
	ProjectController     *ProjectController
	SettingController     *SettingController
}

// NewControllers initializes all controllers
func NewControllers(s *services.Services) *Controllers {
	return &Controllers{
		AuthController:        NewAuthController(s.AuthService),
		UserController:        NewUserController(s.UserService),
		AssociationController: NewAssociationController(s.AssociationService),
		CommissionController:  NewCommissionController(s.CommissionService),
		DocumentController:    NewDocumentController(s.DocumentService),
		ProjectController:     NewProjectController(s.ProjectService),
		SettingController:     NewSettingController(s.SettingService, s.HistoryService),
	}
}

// parseIDParam reads a numeric path parameter
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
