package routes

import (
	"gbp-agency-api/controllers"
	"gbp-agency-api/middleware"
	"gbp-agency-api/models"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the API surface. The Google controller is built in
// main (it owns the shared profile client and its rate limiter) and handed
// in here instead of living as package state.
func SetupRoutes(router *gin.Engine, google *controllers.GoogleController) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "GBP Agency API is running",
				})
			})

			// Billing events arrive signed by the payment provider, not by
			// an operator token.
			public.POST("/webhooks/billing", controllers.ReceiveBillingWebhook)
		}

		// Protected routes (require an authenticated operator)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Bulk CSV imports. Upload/process/cancel are owner+manager;
			// status polling and templates are open to every operator.
			bulk := protected.Group("/bulk-imports")
			{
				bulk.GET("/jobs", controllers.ListBulkJobs)
				bulk.GET("/jobs/:job_id", controllers.GetBulkJob)
				bulk.GET("/templates/:import_type", controllers.DownloadImportTemplate)

				bulk.POST("/upload", middleware.RequireRole(models.OperatorRoleOwner, models.OperatorRoleManager), controllers.UploadBulkImport)
				bulk.POST("/process", middleware.RequireRole(models.OperatorRoleOwner, models.OperatorRoleManager), controllers.ProcessBulkRows)
				bulk.POST("/jobs/:job_id/cancel", middleware.RequireRole(models.OperatorRoleOwner, models.OperatorRoleManager), controllers.CancelBulkJob)
			}

			// Clients
			clients := protected.Group("/clients")
			{
				clients.GET("", controllers.GetClients)
				clients.GET("/:id", controllers.GetClient)
				clients.POST("", middleware.RequireRole(models.OperatorRoleOwner, models.OperatorRoleManager), controllers.CreateClient)
			}

			// Locations
			locations := protected.Group("/locations")
			{
				locations.GET("", controllers.GetLocations)
				locations.GET("/:id", controllers.GetLocation)
				locations.POST("", middleware.RequireRole(models.OperatorRoleOwner, models.OperatorRoleManager), controllers.CreateLocation)
			}

			// Posts
			posts := protected.Group("/posts")
			{
				posts.GET("", controllers.GetPosts)
				posts.POST("", controllers.CreatePost)
				posts.POST("/draft", controllers.DraftPost)
			}

			// Media assets
			media := protected.Group("/media")
			{
				media.GET("", controllers.GetMedia)
				media.POST("", controllers.CreateMedia)
			}

			// Competitors
			competitors := protected.Group("/competitors")
			{
				competitors.GET("", controllers.GetCompetitors)
				competitors.POST("", controllers.CreateCompetitor)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
			}

			// Google Business Profile integration
			googleGroup := protected.Group("/google")
			{
				googleGroup.GET("/status", google.Status)
				googleGroup.POST("/connect", middleware.RequireRole(models.OperatorRoleOwner), google.Connect)
				googleGroup.POST("/locations/:id/sync", middleware.RequireRole(models.OperatorRoleOwner, models.OperatorRoleManager), google.SyncLocation)
				googleGroup.POST("/sync", middleware.RequireRole(models.OperatorRoleOwner, models.OperatorRoleManager), google.SyncAgency)
			}
		}
	}
}
