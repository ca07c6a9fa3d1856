package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/onurcolak/dispatch-service/environments"
	"github.com/onurcolak/dispatch-service/handlers"
	"github.com/onurcolak/dispatch-service/internal/audit"
	"github.com/onurcolak/dispatch-service/internal/metrics"
	"github.com/onurcolak/dispatch-service/internal/middlewares"
	"github.com/onurcolak/dispatch-service/internal/queue"
	"github.com/onurcolak/dispatch-service/internal/repository"
	"github.com/onurcolak/dispatch-service/internal/service"
	"github.com/onurcolak/dispatch-service/internal/worker"
	"github.com/onurcolak/dispatch-service/pkg/database"
	"github.com/onurcolak/dispatch-service/pkg/gateway"
	"github.com/onurcolak/dispatch-service/pkg/logger"
	"github.com/onurcolak/dispatch-service/pkg/redis"
	"github.com/onurcolak/dispatch-service/pkg/validator"
	"github.com/onurcolak/dispatch-service/pkg/webhook"
	"github.com/onurcolak/dispatch-service/routes"

	_ "github.com/onurcolak/dispatch-service/docs" // swagger docs
)

// @title Dispatch Service API
// @version 1.0
// @description Template driven multi-channel notification dispatch with OTP issuance
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email onur.colak@useinsider.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	// Load config
	cfg := environments.Load()

	logger.Init(cfg.Log.Env, cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	// Hard-fail if required secrets are missing
	if len(middlewares.ParseKeys(cfg.Auth.DispatchAPIKey)) == 0 {
		logger.Fatalf("DISPATCH_API_KEY is required but not set")
	}
	if len(middlewares.ParseKeys(cfg.Auth.AdminAPIKey)) == 0 {
		logger.Fatalf("ADMIN_API_KEY is required but not set")
	}

	emailPolicy, err := service.ParseEmailPolicy(cfg.Dispatch.EmailExcludedTemplates)
	if err != nil {
		logger.Fatalf("Invalid DISPATCH_EMAIL_EXCLUDED_TEMPLATES: %v", err)
	}

	logger.Infof("Starting Dispatch Service...")

	// Init DB
	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed data
	if os.Getenv("SEED_DATA") == "true" {
		if err := database.SeedTestData(db); err != nil {
			logger.Warnf("Failed to seed test data: %v", err)
		}
	}

	// Init redis
	redisClient, err := redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis not available, caching and idempotency markers disabled: %v", err)
		redisClient = nil
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobQueue, workers := newQueue(ctx, cfg, redisClient)

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	templateRepo := repository.NewTemplateRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	signatureRepo := repository.NewSignatureRepository(db)
	deliveryRepo := repository.NewDeliveryLogRepository(db)
	otpRepo := repository.NewOtpRepository(db)
	recorder := audit.NewRecorder(repository.NewAuditRepository(db), m)

	// Initialize services
	registry := service.NewRegistry(providerRepo, signatureRepo)

	var (
		cache   service.DeliveryCache
		tracker worker.JobTracker
	)
	if redisClient != nil {
		cache = redisClient
		tracker = redisClient
	}

	dispatchService := service.NewDispatchService(
		templateRepo,
		registry,
		jobQueue,
		deliveryRepo,
		cache,
		emailPolicy,
		recorder,
		m,
	)
	adminService := service.NewAdminService(providerRepo, signatureRepo, recorder)
	otpService := service.NewOtpService(otpRepo, dispatchService, cfg.OTP, recorder, m)

	// Initialize gateway and worker pool
	mailer := gateway.NewMailer(cfg.SMTP, cfg.Gateway.Timeout)
	executor := worker.NewInstrumentedExecutor(gateway.NewClient(cfg.Gateway, mailer), m)

	var alerts worker.Alerter
	if cfg.Alert.WebhookURL != "" {
		webhookClient := webhook.NewWebhookClient(cfg.Alert)
		logger.Infof("Failure alerts configured: %s", webhookClient.GetURL())
		alerts = webhookClient
	}

	workerCfg := cfg.Worker
	workerCfg.Count = workers
	pool := worker.NewPool(jobQueue, executor, deliveryRepo, tracker, alerts, workerCfg, cfg.Alert.FailureThreshold, m)

	// Initialize handlers
	h := routes.Handlers{
		Health:   handlers.NewHealthHandler(db, redisClient, jobQueue, cfg.Queue.Backend),
		Dispatch: handlers.NewDispatchHandler(dispatchService),
		Otp:      handlers.NewOtpHandler(otpService),
		Delivery: handlers.NewDeliveryHandler(dispatchService),
		Admin:    handlers.NewAdminHandler(adminService),
		Worker:   handlers.NewWorkerHandler(pool, ctx, cfg),
	}

	// Auto-start workers
	if cfg.Worker.AutoStart {
		logger.Infof("Auto-starting workers...")
		if err := pool.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start workers: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middlewares.RequestContext())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
			middlewares.ActorHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, h, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	cancel()

	// Stop workers first so in-flight jobs finish and get logged
	if pool.IsRunning() {
		logger.Infof("Stopping workers...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer stopCancel()

		done := make(chan error, 1)
		go func() {
			done <- pool.Stop()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("Error stopping workers: %v", err)
			}
		case <-stopCtx.Done():
			logger.Warnf("Worker stop timeout, forcing shutdown")
		}
	}

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	logger.Infof("Closing %s queue...", cfg.Queue.Backend)
	if err := jobQueue.Close(); err != nil {
		logger.Errorf("Error closing queue: %v", err)
	}

	// Close database connection
	logger.Infof("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}

// newQueue builds the configured queue backend and returns it with the number
// of consumers it supports.
func newQueue(ctx context.Context, cfg *environments.Config, redisClient *redis.Client) (queue.Queue, int) {
	workers := cfg.Worker.Count

	switch cfg.Queue.Backend {
	case "valkey":
		if redisClient == nil {
			logger.Fatalf("QUEUE_BACKEND=valkey requires a reachable Redis/Valkey server")
		}
		q := queue.NewValkeyQueue(redisClient.Valkey(), cfg.Queue.Name)
		moved, err := q.Recover(ctx)
		if err != nil {
			logger.Fatalf("Failed to recover in-flight jobs: %v", err)
		}
		if moved > 0 {
			logger.Infof("Requeued %d in-flight job(s) from a previous run", moved)
		}
		return q, workers

	case "kafka":
		// One reader keeps partition order intact.
		return queue.NewKafkaQueue(cfg.Queue), 1

	case "memory":
		logger.Warnf("Using in-memory queue: jobs are lost on restart")
		return queue.NewMemoryQueue(cfg.Queue.MemoryBuffer), workers

	default:
		logger.Fatalf("Unknown QUEUE_BACKEND %q (expected valkey, kafka or memory)", cfg.Queue.Backend)
		return nil, 0
	}
}
