package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FIN-COACH/internal"
	"FIN-COACH/internal/cache"
	"FIN-COACH/internal/config"
	"FIN-COACH/internal/export"
	"FIN-COACH/internal/gelf"
	"FIN-COACH/internal/handlers"
	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/services"
	"FIN-COACH/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const devJWTSecret = "dev-only-secret-change-me"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Forward logs to Graylog when configured
	if cfg.Logging.GELFAddr != "" {
		writer, err := gelf.New(cfg.Logging.GELFAddr, "fin-coach")
		if err != nil {
			log.Printf("Warning: GELF logging disabled: %v", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stderr, writer))
			defer writer.Close()
		}
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		log.Printf("Warning: JWT_SECRET not set, using an insecure development secret")
		jwtSecret = devJWTSecret
	}

	// Initialize database
	if err := internal.InitDB(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize storage client based on configuration
	ctx := context.Background()
	var storageClient storage.StorageClient
	var localStorageClient *storage.LocalStorageClient

	switch cfg.Storage.Type {
	case "gcs":
		log.Printf("Initializing GCS storage with bucket: %s", cfg.GCS.BucketName)
		client, err := storage.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.ProjectID, cfg.GCS.CredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize GCS client: %v", err)
		}
		storageClient = client
		log.Printf("GCS storage initialized")
	default:
		log.Printf("Initializing local storage at: %s", cfg.Storage.LocalPath)
		client, err := storage.NewLocalStorageClient(cfg.Storage.LocalPath, cfg.Storage.LocalURL, cfg.Storage.SecretKey)
		if err != nil {
			log.Fatalf("Failed to initialize local storage client: %v", err)
		}
		storageClient = client
		localStorageClient = client
		log.Printf("Local storage initialized with base URL: %s", cfg.Storage.LocalURL)
	}
	defer storageClient.Close()

	// Form configurations are cached in Redis when an address is set
	var configCache cache.ConfigCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisConfigCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ConfigTTL)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("Warning: Redis unavailable at %s, configuration cache will miss: %v", cfg.Redis.Addr, err)
		} else {
			log.Printf("Configuration cache enabled at %s", cfg.Redis.Addr)
		}
		configCache = redisCache
		defer redisCache.Close()
	}

	// Initialize PDF service with configurable timeout
	pdfService, err := services.NewPDFService(cfg.Gotenberg.URL, cfg.Gotenberg.Timeout)
	if err != nil {
		log.Fatalf("Failed to initialize PDF service: %v", err)
	}
	log.Printf("PDF service initialized with URL: %s, timeout: %s", cfg.Gotenberg.URL, cfg.Gotenberg.Timeout)

	bundle, err := i18n.Load(cfg.Export.DefaultLanguage)
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	// Initialize services
	activityLogService := services.NewActivityLogService()
	formConfigService := services.NewFormConfigService(configCache)
	profileService := services.NewProfileService()
	submissionService := services.NewSubmissionService(formConfigService, profileService, activityLogService)
	authService := services.NewAuthService(jwtSecret, cfg.Auth.TokenTTL)
	documentService := services.NewDocumentService(storageClient, submissionService, formConfigService, activityLogService)
	exporter := export.NewExporter(pdfService, export.Options{
		LogoPath: cfg.Export.LogoPath,
		Caption:  cfg.Export.FooterCaption,
	})
	exportService := services.NewExportService(exporter, bundle, storageClient, submissionService, formConfigService, activityLogService)

	if err := authService.SeedAdmin(cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Printf("Warning: Failed to seed admin account: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) == 0 || cfg.Server.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Page-Count", "X-Export-ID"}
	r.Use(cors.New(corsConfig))

	// Activity logging middleware
	r.Use(activityLogService.LoggingMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"storage":   cfg.Storage.Type,
			"languages": bundle.Languages(),
		})
	})

	// Local file server endpoint (only for local storage with public URL configured)
	if localStorageClient != nil && cfg.Storage.LocalURL != "" && cfg.Storage.LocalURL != "internal://storage" {
		r.GET("/files/*filepath", handlers.ServeSignedFiles(localStorageClient))
		log.Printf("Local file server enabled at /files/*")
	} else if localStorageClient != nil {
		log.Printf("Local storage in internal-only mode - files served through the submission endpoints")
	}

	handlers.RegisterRoutes(r, &handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		FormConfigs: handlers.NewFormConfigHandler(formConfigService),
		Submissions: handlers.NewSubmissionHandler(submissionService, formConfigService, bundle),
		Documents:   handlers.NewDocumentHandler(documentService),
		Exports:     handlers.NewExportHandler(exportService),
		Profile:     handlers.NewProfileHandler(profileService),
		Coach:       handlers.NewCoachHandler(submissionService),
		Admin:       handlers.NewAdminHandler(authService, activityLogService),
		Statistics:  handlers.NewStatisticsHandler(services.NewStatisticsService()),
		I18n:        handlers.NewI18nHandler(bundle),
	}, jwtSecret)

	// Create HTTP server with timeouts long enough for PDF conversion
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s (environment: %s)", cfg.Server.Port, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if err := internal.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	if err := pdfService.Close(); err != nil {
		log.Printf("Error closing PDF service: %v", err)
	}

	log.Println("Server exited")
}
