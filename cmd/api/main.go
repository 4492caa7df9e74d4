package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadscope_backend/internal/adapters/storage"
	"leadscope_backend/internal/apikeys"
	"leadscope_backend/internal/auth"
	"leadscope_backend/internal/crm"
	"leadscope_backend/internal/email"
	"leadscope_backend/internal/events"
	apphttp "leadscope_backend/internal/http"
	"leadscope_backend/internal/http/router"
	"leadscope_backend/internal/leads"
	"leadscope_backend/internal/leads/handler"
	"leadscope_backend/internal/notification"
	"leadscope_backend/internal/outreach"
	"leadscope_backend/internal/scheduler"
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/db"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := db.Retry(ctx, log, "database migrations", db.StartupAttempts, db.StartupBaseDelay, func() error {
		return db.RunMigrations(ctx, pool, log)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	rdb, closeRedis := initRedis(cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	crmQueue, closeQueue := initCRMQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	sender := email.NewSender(cfg)
	archiver := initExportArchiver(ctx, cfg, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events and streams them to browsers
	notificationModule := notification.New(sender, log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.SSE().Close()

	authModule := auth.NewModule(pool, cfg, eventBus, val, log)

	leadsModule, err := leads.NewModule(pool, eventBus, val, cfg, leads.Dependencies{
		Archiver: archiver,
		Users:    authModule.Directory(),
	}, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	outreachModule, err := outreach.NewModule(ctx, pool, leadsModule.PublicService(), sender, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize outreach module", "error", err)
		panic("failed to initialize outreach module: " + err.Error())
	}

	crmService := crm.NewService(leadsModule.PublicService(), cfg, log)
	crmModule := crm.NewModule(leadsModule.PublicService(), crmService, crmQueue, val, log)

	apiKeysModule := apikeys.NewModule(pool, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:           cfg,
		Logger:           log,
		Health:           pool,
		EventBus:         eventBus,
		PublicMiddleware: apiKeysModule.PublicMiddleware(rdb, cfg.GetAPIRateLimit(), log),
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			outreachModule,
			crmModule,
			apiKeysModule,
			notificationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		// Event streams never finish on their own.
		notificationModule.SSE().Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRedis returns nil when REDIS_URL is unset; the public API then runs
// without a quota.
func initRedis(cfg config.SchedulerConfig, log *logger.Logger) (redis.Cmdable, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; public API rate limit disabled")
		return nil, nil
	}

	client, err := scheduler.RedisClient(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		return nil, nil
	}
	return client, func() { _ = client.Close() }
}

// initCRMQueue returns a nil interface without Redis so CRM pushes run inline.
func initCRMQueue(cfg config.SchedulerConfig, log *logger.Logger) (crm.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; CRM sync runs in the request")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}
	return client, func() { _ = client.Close() }
}

// initExportArchiver returns nil when MinIO is not configured; archive
// exports then answer 503.
func initExportArchiver(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) handler.ExportArchiver {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; export archives disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketExports()
	if err := db.Retry(ctx, log, "ensure exports bucket", db.StartupAttempts, db.StartupBaseDelay, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "exportsBucket", bucket)

	return storage.NewExportArchiver(storageSvc, bucket, log)
}
