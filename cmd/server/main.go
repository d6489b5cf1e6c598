package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/document-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/document-analyzer-api/internal/config"
	"github.com/BerylCAtieno/document-analyzer-api/internal/db"
	"github.com/BerylCAtieno/document-analyzer-api/internal/handlers"
	"github.com/BerylCAtieno/document-analyzer-api/internal/metrics"
	"github.com/BerylCAtieno/document-analyzer-api/internal/orchestrator"
	"github.com/BerylCAtieno/document-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/document-analyzer-api/internal/router"
	"github.com/BerylCAtieno/document-analyzer-api/internal/services"
	"github.com/BerylCAtieno/document-analyzer-api/internal/storage"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(database); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Blob storage
	blobStore, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", "error", err)
	}

	// Repositories
	docRepo := repository.NewDocumentRepository(database)
	analysisRepo := repository.NewAnalysisRepository(database)
	conversationRepo := repository.NewConversationRepository(database)

	// LLM gateway and analysis pipeline
	llmClient := analyzer.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.LLMTimeout, logger)
	llmAnalyzer := analyzer.NewAnalyzer(llmClient, logger)

	appMetrics := metrics.New()

	runner := orchestrator.NewRunner(analysisRepo, llmAnalyzer, logger, appMetrics, cfg.AnalysisQueueSize, cfg.AnalysisTimeout)
	runner.Start(cfg.AnalysisWorkers)

	// Services
	analysisService := services.NewAnalysisService(docRepo, analysisRepo, runner, llmAnalyzer, logger)
	docService := services.NewDocumentService(docRepo, blobStore, analysisService, logger)
	conversationService := services.NewConversationService(docRepo, conversationRepo, llmAnalyzer, logger)

	// HTTP surface
	handler := router.New(router.Deps{
		Documents:     handlers.NewDocumentHandler(docService, cfg.MaxFileSize, logger),
		Analysis:      handlers.NewAnalysisHandler(analysisService, logger),
		Conversations: handlers.NewConversationHandler(conversationService, logger),
		Metrics:       appMetrics,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	// Drain queued analyses so in-flight placeholders reach a terminal state.
	if err := runner.Shutdown(ctx); err != nil {
		logger.Error("Analysis runner did not drain in time", "error", err)
	}

	logger.Info("Server exited")
}
