package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rosterly/backend/internal/application/bulk"
	"github.com/rosterly/backend/internal/application/export"
	"github.com/rosterly/backend/internal/infrastructure/config"
	"github.com/rosterly/backend/internal/infrastructure/logger"
	"github.com/rosterly/backend/internal/infrastructure/persistence"
	"github.com/rosterly/backend/internal/interfaces/http/handler"
	"github.com/rosterly/backend/internal/interfaces/http/middleware"
	"github.com/rosterly/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Rosterly Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	scheduleRepo := persistence.NewGormScheduleRepository(db.DB)
	importRunRepo := persistence.NewGormImportRunRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Initialize application services
	importCoordinator := bulk.NewImportCoordinator(
		employeeRepo,
		scheduleRepo,
		importRunRepo,
		txManager,
		log,
		cfg.Import.MaxErrors,
	)
	previewGenerator := bulk.NewPreviewGenerator(
		employeeRepo,
		scheduleRepo,
		cfg.Import.MaxErrors,
		cfg.Import.PreviewRows,
	)
	exportService := export.NewService(
		employeeRepo,
		scheduleRepo,
		export.Options{CalendarName: cfg.Export.CalendarName},
		log,
	)

	// Initialize HTTP handlers
	importHandler := handler.NewImportHandler(
		importCoordinator,
		previewGenerator,
		cfg.Import.MaxFileSize,
		cfg.Import.HistorySize,
	)
	exportHandler := handler.NewExportHandler(exportService)
	healthHandler := handler.NewHealthHandler(db.DB)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	// 5. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Configure CORS from config
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit leaves headroom for multipart framing around the
	// file payload itself; the handler enforces the exact file ceiling.
	engine.Use(middleware.BodyLimit(cfg.Import.MaxFileSize + 1<<20))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler.Health)

	// Setup API routes using router
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(importHandler).
		Register(exportHandler).
		Setup()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
