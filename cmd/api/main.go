package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stockroom-labs/stockroom/internal/admission"
	"github.com/stockroom-labs/stockroom/internal/auth"
	"github.com/stockroom-labs/stockroom/internal/background"
	"github.com/stockroom-labs/stockroom/internal/config"
	"github.com/stockroom-labs/stockroom/internal/database"
	"github.com/stockroom-labs/stockroom/internal/handlers"
	middlewareCustom "github.com/stockroom-labs/stockroom/internal/middleware"
	"github.com/stockroom-labs/stockroom/internal/repositories"
	"github.com/stockroom-labs/stockroom/internal/routes"
	"github.com/stockroom-labs/stockroom/internal/services"
	"github.com/stockroom-labs/stockroom/internal/storage"
	"github.com/stockroom-labs/stockroom/internal/telemetry"
	pkghttp "github.com/stockroom-labs/stockroom/pkg/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db.Pool); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	// Telemetry counters
	metrics := telemetry.New()

	// Admission controller and its sweep task
	controller := admission.New(admission.Config{
		MaxRequests:      cfg.Admission.MaxRequests,
		Window:           cfg.Admission.Window,
		LockoutThreshold: cfg.Admission.LockoutThreshold,
		LockoutDuration:  cfg.Admission.LockoutDuration,
		IdleTTL:          cfg.Admission.IdleTTL,
	}, logger, metrics)
	sweeper := background.NewSweeper(controller, logger, cfg.Admission.SweepInterval)

	// Credential verification
	tokenManager := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenExpiry)
	keyManager := auth.NewAPIKeyManager()
	verifier := auth.NewVerifier(tokenManager, keyManager)

	// AWS SES email service (optional)
	var emailService services.EmailService
	if cfg.Email.Enabled {
		sesService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		emailService = sesService
	}

	// Image storage
	imageStore, err := storage.NewLocalImageStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Error("failed to initialize image store", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	userService := services.NewUserService(userRepo, keyManager, emailService, logger)
	catalogService := services.NewCatalogService(productRepo, logger)
	reviewService := services.NewReviewService(reviewRepo, productRepo, logger)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokenManager)
	productHandler := handlers.NewProductHandler(catalogService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	uploadHandler := handlers.NewUploadHandler(imageStore, catalogService, cfg.Uploads.MaxSizeBytes)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middlewareCustom.Admission(controller, ipConfig))

	// Register routes
	routes.RegisterRoutes(router, routes.Deps{
		Products: productHandler,
		Reviews:  reviewHandler,
		Users:    userHandler,
		Uploads:  uploadHandler,
		Verifier: verifier,
		Lookup:   userService.LookupByAPIKeyHash,
		Recorder: controller,
		Observer: metrics,
		IPConfig: ipConfig,
	})

	// Metrics endpoint
	router.Handle("/metrics", metrics.Handler())

	// Health check with database
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start sweep task
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	go sweeper.Start(sweepCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
