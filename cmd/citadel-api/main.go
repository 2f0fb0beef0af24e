package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/citadel-archive/citadel-api/api/swagger"
	"github.com/citadel-archive/citadel-api/internal/handler"
	"github.com/citadel-archive/citadel-api/internal/middleware"
	"github.com/citadel-archive/citadel-api/internal/repository"
	"github.com/citadel-archive/citadel-api/internal/service"
	"github.com/citadel-archive/citadel-api/pkg/config"
	"github.com/citadel-archive/citadel-api/pkg/database"
	"github.com/citadel-archive/citadel-api/pkg/logger"
	corsmiddleware "github.com/citadel-archive/citadel-api/pkg/middleware/cors"
	reqidmiddleware "github.com/citadel-archive/citadel-api/pkg/middleware/requestid"
	"github.com/citadel-archive/citadel-api/pkg/storage"
)

// @title Citadel Archive API
// @version 0.1.0
// @description Local-first personal archive backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewSQLite(cfg.Store)
	if err != nil {
		logr.Sugar().Fatalw("failed to open local store", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := repository.Migrate(db); err != nil {
		logr.Sugar().Fatalw("failed to migrate local store", "error", err)
	}

	eventRepo := repository.NewEventRepository(db)
	appStateRepo := repository.NewAppStateRepository(db)

	// Completed setups point the vault at the user-chosen root; before
	// first run it falls back to the configured default.
	rootPath := cfg.Vault.DefaultRoot
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	state, err := appStateRepo.Get(ctx)
	cancel()
	if err != nil {
		logr.Sugar().Fatalw("failed to read settings", "error", err)
	}
	if state != nil && state.RootPath != "" {
		rootPath = state.RootPath
	}
	vault, err := storage.NewVault(rootPath)
	if err != nil {
		logr.Sugar().Fatalw("failed to open archive root", "error", err)
	}

	signer := storage.NewSignedURLSigner(cfg.Vault.SignedURLSecret, cfg.Vault.SignedURLTTL)
	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	eventSvc := service.NewEventService(eventRepo, vault, signer, metricsSvc, validate, logr,
		service.EventServiceConfig{APIPrefix: cfg.APIPrefix})
	captureSvc := service.NewCaptureService(eventRepo, vault, validate, logr)
	assistantSvc := service.NewAssistantService(eventRepo, appStateRepo, cfg.Assistant, validate, logr)
	settingsSvc := service.NewSettingsService(appStateRepo, cfg.Capture, validate, logr)
	exportSvc := service.NewExportService(eventRepo, logr)

	eventHandler := handler.NewEventHandler(eventSvc)
	timelineHandler := handler.NewTimelineHandler(eventSvc, exportSvc)
	captureHandler := handler.NewCaptureHandler(captureSvc)
	assistantHandler := handler.NewAssistantHandler(assistantSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		events := api.Group("/events")
		{
			events.POST("", eventHandler.CreateNote)
			events.GET("", eventHandler.List)
			events.POST("/import", eventHandler.Import)
			events.GET("/:id", eventHandler.Get)
			events.PATCH("/:id", eventHandler.Update)
			events.DELETE("/:id", eventHandler.Delete)
			events.PATCH("/:id/classification", eventHandler.UpdateClassification)
			events.PUT("/:id/answers/:question", eventHandler.SetAnswer)
			events.POST("/:id/confirm", eventHandler.Confirm)
			events.POST("/:id/archive", eventHandler.Archive)
			events.GET("/:id/files/:fileId/url", eventHandler.FileURL)
			events.GET("/:id/files/:fileId/download", eventHandler.Download)
		}

		api.GET("/search", eventHandler.Search)
		api.GET("/timeline", timelineHandler.Timeline)
		api.GET("/timeline/export", timelineHandler.Export)
		api.GET("/event-types/:type/questions", timelineHandler.Questions)

		capture := api.Group("/capture", middleware.Pairing(cfg.Capture.PairingSecret))
		{
			capture.POST("", captureHandler.Capture)
			capture.GET("/pending", captureHandler.Pending)
		}

		assistant := api.Group("/assistant")
		{
			assistant.POST("/chat", assistantHandler.Chat)
			assistant.POST("/classify", assistantHandler.Classify)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", settingsHandler.Get)
			settings.PUT("", settingsHandler.Update)
			settings.POST("/setup", settingsHandler.Setup)
			settings.POST("/link-code", settingsHandler.LinkCode)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
