package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"hrflow/internal/config"
	"hrflow/internal/handlers"
	"hrflow/internal/logger"
	"hrflow/internal/repositories"
	"hrflow/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	log.Info("database initialized")

	// Repositories
	candidateRepo := repositories.NewCandidateRepository(db)
	emailRepo := repositories.NewEmailRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)
	outboundRepo := repositories.NewOutboundRepository(db)

	// Support services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", zap.Error(err))
	}
	pdfParser := services.NewPDFParserService()

	geminiService, err := services.NewGeminiService(cfg.Gemini, log)
	if err != nil {
		log.Fatal("failed to initialize Gemini client", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		log,
	)
	if err != nil {
		log.Fatal("failed to initialize Qdrant client", zap.Error(err))
	}
	if err := qdrantService.InitCollection(); err != nil {
		log.Fatal("failed to initialize Qdrant collection", zap.Error(err))
	}
	log.Info("Qdrant collection ready", zap.String("collection", cfg.Qdrant.Collection))

	retriever := services.NewKnowledgeRetriever(geminiService, qdrantService, cfg.Retrieval, log)

	// Rejection pipeline
	structurer := services.NewCVStructurer(geminiService, cfg.Gemini.MaxRetries, log)
	validator := services.NewStructureValidator()
	corrector := services.NewStructureCorrector(
		geminiService,
		validator,
		cfg.Pipeline.MaxCorrectionAttempts,
		cfg.Gemini.MaxRetries,
		log,
	)
	generator := services.NewFeedbackGenerator(geminiService, retriever, cfg.Gemini.MaxRetries, log)
	pipeline := services.NewRejectionPipeline(
		candidateRepo,
		feedbackRepo,
		outboundRepo,
		structurer,
		validator,
		corrector,
		generator,
		log,
	)

	// Email routing
	classifier := services.NewEmailClassifier(geminiService, cfg.Gemini.MaxRetries, log)
	responder := services.NewQueryResponder(geminiService, retriever, cfg.Gemini.MaxRetries, log)
	router := services.NewEmailRouter(
		emailRepo,
		ticketRepo,
		outboundRepo,
		candidateRepo,
		classifier,
		responder,
		cfg.Mail,
		log,
	)

	// Background processing
	ctx := context.Background()
	worker := services.NewWorker(pipeline, router, cfg.Worker.Concurrency, log)
	worker.Start(ctx)

	monitor := services.NewEmailMonitor(emailRepo, worker, cfg.Mail.PollInterval, log)
	monitor.Start(ctx)

	// Handlers
	uploadHandler := handlers.NewUploadHandler(candidateRepo, storageService, pdfParser, cfg.Storage.MaxFileSize)
	rejectionHandler := handlers.NewRejectionHandler(candidateRepo, worker)
	artifactHandler := handlers.NewArtifactHandler(feedbackRepo)
	emailHandler := handlers.NewEmailHandler(emailRepo, worker)

	app := fiber.New(fiber.Config{
		AppName:      "HRFlow API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/candidates", uploadHandler.HandleUpload)
	api.Post("/candidates/:id/reject", rejectionHandler.HandleReject)
	api.Get("/candidates/:id/feedback", artifactHandler.HandleListCandidateArtifacts)
	api.Get("/rejections/:event_id", artifactHandler.HandleGetArtifact)
	api.Post("/emails/inbound", emailHandler.HandleInbound)
	api.Get("/emails/:id", emailHandler.HandleGetOutcome)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "HRFlow API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/candidates",
				"POST /api/v1/candidates/:id/reject",
				"GET /api/v1/candidates/:id/feedback",
				"GET /api/v1/rejections/:event_id",
				"POST /api/v1/emails/inbound",
				"GET /api/v1/emails/:id",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down")
		monitor.Stop()
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
