package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/db"
	"github.com/openlend/docpipe-backend/internal/events"
	"github.com/openlend/docpipe-backend/internal/handlers"
	"github.com/openlend/docpipe-backend/internal/jobs"
	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/server"
	"github.com/openlend/docpipe-backend/internal/services"
	"github.com/openlend/docpipe-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	maxConcurrent := utils.GetEnvAsInt("MAX_CONCURRENT_JOBS", 4, log)
	maxRetries := utils.GetEnvAsInt("MAX_RETRIES", 3, log)
	pollIntervalMS := utils.GetEnvAsInt("JOB_POLL_INTERVAL_MS", 1000, log)
	baseBackoffMS := utils.GetEnvAsInt("JOB_BASE_BACKOFF_MS", 5000, log)
	staleProcessingMS := utils.GetEnvAsInt("JOB_STALE_PROCESSING_MS", 300000, log)
	mappingPath := utils.GetEnv("FIELD_MAPPING_PATH", "", log)

	// Field mapping registry
	registry, err := config.LoadFile(mappingPath)
	if err != nil {
		log.Fatal("Failed to load field mappings", "path", mappingPath, "error", err)
	}
	log.Info("Field mappings loaded", "fields", len(registry.Mappings()))

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	applicationRepo := repos.NewApplicationRepo(theDB, log)
	documentRepo := repos.NewDocumentRepo(theDB, log)
	extractionRepo := repos.NewExtractionResultRepo(theDB, log)
	jobRepo := repos.NewProcessingJobRepo(theDB, log)
	validationRepo := repos.NewValidationResultRepo(theDB, log)
	goldenRepo := repos.NewGoldenRecordRepo(theDB, log)
	logRepo := repos.NewProcessingLogRepo(theDB, log)

	// Events
	var publisher events.Publisher
	if os.Getenv("REDIS_ADDR") != "" {
		publisher, err = events.NewRedisPublisher(log)
		if err != nil {
			log.Fatal("Redis init failed", "error", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set; pipeline events will not be published")
		publisher = events.NewNoopPublisher()
	}
	defer publisher.Close()

	// Blob store
	blobs, err := services.NewLocalBlobStore(log)
	if err != nil {
		log.Fatal("Blob store init failed", "error", err)
	}

	// OCR
	var ocr services.OCRClient
	if os.Getenv("DOCUMENTAI_PROCESSOR_ID") != "" {
		ocr, err = services.NewDocAIClient(log)
		if err != nil {
			log.Fatal("Document AI init failed", "error", err)
		}
	} else {
		log.Warn("DOCUMENTAI_PROCESSOR_ID not set; using stub OCR client")
		ocr = services.NewStubOCRClient(log)
	}
	defer ocr.Close()

	// Services
	log.Info("Setting up Services from main...")
	locks := jobs.NewAppLocks()
	pipelineService := services.NewPipelineService(theDB, log, locks, applicationRepo, documentRepo, jobRepo, logRepo, publisher, maxRetries)
	applicationService := services.NewApplicationService(theDB, log, applicationRepo, documentRepo, blobs, pipelineService)
	documentService := services.NewDocumentService(theDB, log, applicationRepo, documentRepo, blobs, pipelineService)
	statusService := services.NewStatusService(log, registry, applicationRepo, documentRepo, jobRepo, validationRepo, goldenRepo, logRepo)

	// Job handlers
	jobRegistry := jobs.NewRegistry()
	for _, h := range []jobs.Handler{
		services.NewIngestionHandler(log, documentRepo, blobs, pipelineService),
		services.NewExtractionHandler(log, documentRepo, extractionRepo, blobs, ocr, pipelineService),
		services.NewValidationHandler(theDB, log, registry, applicationService, documentRepo, extractionRepo, validationRepo),
		services.NewFormattingHandler(theDB, log, registry, locks, applicationService, applicationRepo, documentRepo, jobRepo, extractionRepo, validationRepo, goldenRepo, publisher),
	} {
		if err := jobRegistry.Register(h); err != nil {
			log.Fatal("Failed to register job handler", "error", err)
		}
	}

	// Worker
	worker := jobs.NewWorker(theDB, log, jobRepo, logRepo, jobRegistry, publisher, jobs.WorkerConfig{
		MaxConcurrentJobs: maxConcurrent,
		PollInterval:      time.Duration(pollIntervalMS) * time.Millisecond,
		BaseBackoff:       time.Duration(baseBackoffMS) * time.Millisecond,
		StaleProcessing:   time.Duration(staleProcessingMS) * time.Millisecond,
	})
	worker.SetTerminalHook(pipelineService.OnJobTerminal)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker.Start(workerCtx)
	log.Info("Job worker started", "max_concurrent_jobs", maxConcurrent)

	// HTTP
	router := server.NewRouter(server.RouterConfig{
		ApplicationHandler:  handlers.NewApplicationHandler(log, applicationService, statusService),
		DocumentHandler:     handlers.NewDocumentHandler(log, documentService, statusService),
		JobHandler:          handlers.NewJobHandler(log, pipelineService, statusService),
		ValidationHandler:   handlers.NewValidationHandler(log, statusService),
		GoldenRecordHandler: handlers.NewGoldenRecordHandler(log, statusService),
		LogHandler:          handlers.NewLogHandler(log, statusService),
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
