package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/openlend/docpipe-backend/internal/handlers"
)

type RouterConfig struct {
	ApplicationHandler  *handlers.ApplicationHandler
	DocumentHandler     *handlers.DocumentHandler
	JobHandler          *handlers.JobHandler
	ValidationHandler   *handlers.ValidationHandler
	GoldenRecordHandler *handlers.GoldenRecordHandler
	LogHandler          *handlers.LogHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Applications
		api.POST("/applications", cfg.ApplicationHandler.Intake)
		api.GET("/applications", cfg.ApplicationHandler.List)
		api.GET("/applications/:application_id", cfg.ApplicationHandler.Get)
		api.GET("/applications/:application_id/status", cfg.ApplicationHandler.Status)

		// Documents
		api.POST("/applications/:application_id/documents", cfg.DocumentHandler.Register)
		api.GET("/applications/:application_id/documents", cfg.DocumentHandler.List)
		api.GET("/documents/:document_id", cfg.DocumentHandler.Get)
		api.GET("/documents/:document_id/logs", cfg.DocumentHandler.Logs)

		// Jobs
		api.GET("/applications/:application_id/jobs", cfg.JobHandler.ListByApplication)
		api.POST("/applications/:application_id/jobs/retry", cfg.JobHandler.RetryFailed)
		api.POST("/jobs/:job_id/cancel", cfg.JobHandler.Cancel)
		api.POST("/jobs/:job_id/retry", cfg.JobHandler.Retry)

		// Validation + golden record
		api.GET("/applications/:application_id/validation", cfg.ValidationHandler.Results)
		api.GET("/applications/:application_id/golden-record", cfg.GoldenRecordHandler.Latest)
		api.GET("/applications/:application_id/golden-record/versions", cfg.GoldenRecordHandler.Versions)

		// Audit trail
		api.GET("/applications/:application_id/logs", cfg.LogHandler.ByApplication)
	}

	return router
}
