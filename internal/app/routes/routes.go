package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/controllers"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c *controllers.Controllers,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.AuthController.Register)
		auth.POST("/login", c.AuthController.Login)
		auth.POST("/refresh", c.AuthController.Refresh)
	}

	// The anonymous association directory
	v1.GET("/associations/public", c.AssociationController.GetPublicAssociations)
	v1.GET("/associations/names", c.AssociationController.GetAssociationNames)

	// Catalogs are public reads
	v1.GET("/institutions", c.AssociationController.GetInstitutions)
	v1.GET("/institutions/components", c.AssociationController.GetInstitutionComponents)
	v1.GET("/associations/activity_fields", c.AssociationController.GetActivityFields)
	v1.GET("/funds", c.CommissionController.GetFunds)
	v1.GET("/commissions", c.CommissionController.GetCommissions)
	v1.GET("/commissions/:id", c.CommissionController.GetCommission)
	v1.GET("/commissions/:id/funds", c.CommissionController.GetCommissionFunds)
	v1.GET("/projects/categories", c.ProjectController.GetCategoryNames)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		users := authenticated.Group("/users")
		{
			users.GET("", c.UserController.GetUsers)
			users.GET("/me", c.UserController.GetMe)
			users.GET("/:id", c.UserController.GetUser)
			users.PATCH("/:id", c.UserController.UpdateUser)
			users.DELETE("/:id", c.UserController.DeleteUser)
			users.GET("/:id/groups", c.UserController.GetUserGroups)
			users.POST("/groups", c.UserController.CreateGroupLink)
			users.DELETE("/groups/:id", c.UserController.DeleteGroupLink)
		}

		authenticated.GET("/groups", c.UserController.GetGroups)

		associations := authenticated.Group("/associations")
		{
			associations.GET("", c.AssociationController.GetAssociations)
			associations.POST("", c.AssociationController.CreateAssociation)
			associations.GET("/:id", c.AssociationController.GetAssociation)
			associations.PATCH("/:id", c.AssociationController.UpdateAssociation)
			associations.DELETE("/:id", c.AssociationController.DeleteAssociation)
			associations.PATCH("/:id/status", c.AssociationController.UpdateCharterStatus)
			associations.GET("/:id/export", c.AssociationController.ExportAssociation)
			associations.GET("/:id/members", c.AssociationController.GetMembers)
			associations.POST("/members", c.AssociationController.AddMember)
			associations.PATCH("/members/:id", c.AssociationController.UpdateMember)
			associations.DELETE("/members/:id", c.AssociationController.RemoveMember)
		}

		commissionsProtected := authenticated.Group("/commissions")
		commissionsProtected.Use(authMiddleware.StaffRequired())
		{
			commissionsProtected.GET("/:id/export", c.CommissionController.ExportCommission)
			commissionsProtected.POST("", c.CommissionController.CreateCommission)
			commissionsProtected.PATCH("/:id", c.CommissionController.UpdateCommission)
			commissionsProtected.DELETE("/:id", c.CommissionController.DeleteCommission)
		}

		documents := authenticated.Group("/documents")
		{
			documents.GET("", c.DocumentController.GetDocuments)
			documents.GET("/:id", c.DocumentController.GetDocument)

			uploads := documents.Group("/uploads")
			{
				uploads.GET("", c.DocumentController.GetUploads)
				uploads.POST("", c.DocumentController.CreateUpload)
				uploads.GET("/:id", c.DocumentController.GetUpload)
				uploads.PATCH("/:id", c.DocumentController.PatchUpload)
				uploads.DELETE("/:id", c.DocumentController.DeleteUpload)
				uploads.GET("/:id/file", c.DocumentController.DownloadUpload)
			}

			documentsStaff := documents.Group("")
			documentsStaff.Use(authMiddleware.StaffRequired())
			{
				documentsStaff.POST("", c.DocumentController.CreateDocument)
				documentsStaff.PATCH("/:id", c.DocumentController.UpdateDocument)
				documentsStaff.DELETE("/:id", c.DocumentController.DeleteDocument)
			}
		}

		projects := authenticated.Group("/projects")
		{
			projects.GET("", c.ProjectController.GetProjects)
			projects.POST("", c.ProjectController.CreateProject)
			projects.GET("/:id", c.ProjectController.GetProject)
			projects.PATCH("/:id", c.ProjectController.UpdateProject)
			projects.DELETE("/:id", c.ProjectController.DeleteProject)
			projects.PATCH("/:id/review", c.ProjectController.UpdateProjectReview)
			projects.PATCH("/:id/status", c.ProjectController.UpdateProjectStatus)
			projects.GET("/:id/export", c.ProjectController.ExportProject)
			projects.GET("/:id/comments", c.ProjectController.GetComments)
			projects.POST("/:id/comments", c.ProjectController.CreateComment)
			projects.GET("/:id/commission_funds", c.ProjectController.GetSubmissions)
			projects.POST("/commission_funds", c.ProjectController.CreateSubmission)
			projects.PATCH("/commission_funds/:id", c.ProjectController.UpdateSubmission)
			projects.DELETE("/commission_funds/:id", c.ProjectController.DeleteSubmission)
		}

		settings := authenticated.Group("/settings")
		{
			settings.GET("", c.SettingController.GetSettings)
			settings.GET("/:name", c.SettingController.GetSetting)

			settingsStaff := settings.Group("")
			settingsStaff.Use(authMiddleware.StaffRequired())
			{
				settingsStaff.PATCH("/:name", c.SettingController.UpdateSetting)
			}
		}

		historiesStaff := authenticated.Group("/histories")
		historiesStaff.Use(authMiddleware.StaffRequired())
		{
			historiesStaff.GET("", c.SettingController.GetHistories)
		}
	}
}
