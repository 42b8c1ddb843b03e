// Package main provides the main entry point for the review funnel service
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reviewloop/reviewloop/app/handlers"
	"github.com/reviewloop/reviewloop/app/middleware"
	"github.com/reviewloop/reviewloop/app/router"
	"github.com/reviewloop/reviewloop/app/services"
	"github.com/reviewloop/reviewloop/config"
	"github.com/reviewloop/reviewloop/funnel"
	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/repository"
	"github.com/reviewloop/reviewloop/wizard"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router router.Router
	config *config.AppConfig
}

func main() {
	log.Println("Starting review funnel service...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure log output before anything else writes logs
	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Expose Prometheus metrics on a dedicated port
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger through lumberjack when file output is configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
}

// startMetricsServer serves the Prometheus scrape endpoint
func startMetricsServer(cfg config.MetricsConfig) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	address := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Metrics server starting on %s%s", address, cfg.Path)

	server := &http.Server{
		Addr:         address,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Run schema migrations
	err = db.AutoMigrate(
		&models.Marketplace{},
		&models.Campaign{},
		&models.ReviewTarget{},
		&models.ShortLink{},
		&models.ScanEvent{},
		&models.ReviewSubmission{},
		&models.Admin{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database connection established")
	return db, nil
}

// initializeCache connects to Redis when caching is enabled
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("Redis connection established")
	return client, nil
}

// initializeApplication wires repositories, flows, services, handlers, and the router
func initializeApplication(cfg *config.AppConfig) (*Application, error) {
	// Database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Optional Redis cache for wizard sessions
	redisClient, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	// Repositories
	marketplaceRepo := repository.NewMarketplaceRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	targetRepo := repository.NewReviewTargetRepository(db)
	shortLinkRepo := repository.NewShortLinkRepository(db)
	scanRepo := repository.NewScanEventRepository(db)
	submissionRepo := repository.NewReviewSubmissionRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	qrService := services.NewQRService(cfg.App.QRBlockSize)

	// Business flows
	scanFlow := funnel.NewScanFlow(shortLinkRepo, scanRepo, cfg.App.PublicBaseURL)
	landingFlow := funnel.NewLandingFlow(campaignRepo)
	submissionFlow := funnel.NewSubmissionFlow(campaignRepo, submissionRepo)
	seedFlow := funnel.NewSeedFlow(marketplaceRepo, campaignRepo, targetRepo, shortLinkRepo, cfg.App.PublicBaseURL)
	catalogFlow := funnel.NewAdminCatalogFlow(marketplaceRepo, campaignRepo, targetRepo, shortLinkRepo, scanRepo, submissionRepo, cfg.App.PublicBaseURL)
	statsFlow := funnel.NewStatsFlow(marketplaceRepo, campaignRepo, targetRepo, shortLinkRepo, scanRepo, submissionRepo)
	authFlow := funnel.NewAdminAuthFlow(adminRepo, tokenService, cfg.JWT.AccessTokenTTL)

	// Wizard session store: Redis when available, in-process memory otherwise
	var sessionStore wizard.SessionStore
	if redisClient != nil {
		sessionStore = wizard.NewRedisSessionStore(redisClient, cfg.Cache.SessionTTL)
	} else {
		sessionStore = wizard.NewMemorySessionStore(cfg.Cache.SessionTTL)
	}

	// Handlers
	redirectHandler := handlers.NewRedirectHandler(scanFlow)
	qrHandler := handlers.NewQRHandler(scanFlow, qrService)
	landingHandler := handlers.NewLandingHandler(landingFlow)
	reviewHandler := handlers.NewReviewHandler(submissionFlow)
	wizardHandler := handlers.NewWizardHandler(landingFlow, submissionFlow, sessionStore)
	adminAuthHandler := handlers.NewAdminAuthHandler(authFlow)
	adminHandler := handlers.NewAdminHandler(catalogFlow, statsFlow, seedFlow)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Bootstrap the admin account when a password is configured
	if cfg.Admin.Password != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := authFlow.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
			return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
		log.Printf("Admin account %q ready", cfg.Admin.Username)
	}

	// Reconcile seed fixtures when requested
	if cfg.App.SeedOnStartup {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := seedFlow.Reconcile(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile seed data: %w", err)
		}
		log.Printf("Seed data ready: campaign %q, scan path /c/%s", result.CampaignSlug, result.ShortLinkSlug)
	}

	// Router
	appRouter := router.NewFiberRouter(
		router.Config{
			AppName:        "ReviewLoop API v1.0",
			Environment:    cfg.App.Environment,
			AllowedOrigins: cfg.Security.AllowedOrigins,
		},
		redirectHandler,
		qrHandler,
		landingHandler,
		reviewHandler,
		wizardHandler,
		adminAuthHandler,
		adminHandler,
		authMiddleware,
	)

	return &Application{
		router: appRouter,
		config: cfg,
	}, nil
}
