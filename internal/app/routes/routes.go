package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/unicluster/internal/app/controllers"
	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	placementController *controllers.PlacementController,
	applicationController *controllers.ApplicationController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/programmes/:id/offerings", placementController.ListOfferings)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	admin := authMiddleware.RoleRequired(string(models.RoleAdmin))

	placements := authenticated.Group("/placements")
	{
		placements.GET("", placementController.ListPlacements)
		placements.GET("/:id", placementController.GetPlacement)
		placements.GET("/student/:studentId", placementController.ListStudentPlacements)

		placements.POST("/auto", admin, placementController.RunAutoPlacement)
		placements.POST("", admin, placementController.CreatePlacement)
		placements.DELETE("/:id", admin, placementController.DeletePlacement)
	}

	applications := authenticated.Group("/applications")
	{
		applications.POST("", applicationController.CreateApplication)
		applications.GET("", applicationController.ListApplications)
		applications.GET("/:id", applicationController.GetApplication)
		applications.GET("/student/:studentId", applicationController.ListStudentApplications)

		applications.PATCH("/:id/status", admin, applicationController.UpdateApplicationStatus)
	}

	authenticated.GET("/students/:id/eligibility", applicationController.GetEligibility)
}
