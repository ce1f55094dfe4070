package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	legislativeapp "github.com/vscpa/backend/internal/application/legislative"
	membershipapp "github.com/vscpa/backend/internal/application/membership"
	peerreviewapp "github.com/vscpa/backend/internal/application/peerreview"
	profileapp "github.com/vscpa/backend/internal/application/profile"
	referenceapp "github.com/vscpa/backend/internal/application/reference"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/infrastructure/amnet"
	"github.com/vscpa/backend/internal/infrastructure/auth"
	"github.com/vscpa/backend/internal/infrastructure/cache"
	"github.com/vscpa/backend/internal/infrastructure/config"
	"github.com/vscpa/backend/internal/infrastructure/event"
	"github.com/vscpa/backend/internal/infrastructure/logger"
	"github.com/vscpa/backend/internal/infrastructure/persistence"
	"github.com/vscpa/backend/internal/infrastructure/scheduler"
	"github.com/vscpa/backend/internal/infrastructure/storage"
	"github.com/vscpa/backend/internal/infrastructure/telemetry"
	"github.com/vscpa/backend/internal/interfaces/http/handler"
	"github.com/vscpa/backend/internal/interfaces/http/middleware"
	"github.com/vscpa/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	providers, err := telemetry.Setup(ctx, telemetry.ConfigFrom(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	if cfg.Telemetry.LogExportEnabled && providers.IsEnabled() {
		// rebuild so every record is also bridged to the OTLP log exporter
		log, err = logger.New(logCfg, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting VSCPA membership backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", providers.IsEnabled()),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 0)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.DBTraceEnabled && providers.IsEnabled(),
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	licenseRepo := persistence.NewGormLicenseRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)
	termRepo := persistence.NewGormTermRepository(db.DB)
	firmRepo := persistence.NewGormFirmRepository(db.DB)
	contactRepo := persistence.NewGormLegislativeContactRepository(db.DB)

	// Metrics
	meter := providers.Meter("github.com/vscpa/backend")
	syncMetrics, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter:       meter,
		Logger:      log,
		MemberStats: memberRepo,
	})
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}
	syncMetrics.StartCollector(ctx)
	defer syncMetrics.Stop()

	poolMetrics, err := telemetry.NewDBPoolMetrics(meter, sqlDB, 0, log)
	if err != nil {
		log.Fatal("Failed to create database pool metrics", zap.Error(err))
	}
	poolMetrics.Start(ctx)
	defer poolMetrics.Stop()

	syncRepo := telemetry.NewMeteredSyncRecordRepository(persistence.NewGormSyncRecordRepository(db.DB), syncMetrics)

	// AM.net
	amnetClient, amnetEnabled := newAMNetClient(cfg.AMNet, syncMetrics, log)

	// Sync locks and token revocation
	locker, closeLocker, err := cache.NewLockerFactory(cfg.Redis, cache.WithLogger(log)).CreateLocker()
	if err != nil {
		log.Fatal("Failed to create sync locker", zap.Error(err))
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Error("Error closing sync locker", zap.Error(err))
		}
	}()

	blacklist, closeBlacklist, err := auth.NewTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to create token blacklist", zap.Error(err))
	}
	defer func() {
		if err := closeBlacklist(); err != nil {
			log.Error("Error closing token blacklist", zap.Error(err))
		}
	}()

	// Application services
	calendar := membership.NewFiscalCalendar(cfg.Membership.FiscalYearEndMonth, time.Local)
	membershipService := membershipapp.NewService(memberRepo, licenseRepo, uow, amnetClient, calendar, log)
	profileService := profileapp.NewService(
		memberRepo, termRepo, syncRepo, amnetClient, locker, cfg.Membership.SyncLockTTL, calendar, log,
	)
	profileService.SetMembershipRecomputer(profileapp.RecomputeFunc(func(ctx context.Context, id uuid.UUID) error {
		_, err := membershipService.Recompute(ctx, id)
		return err
	}))
	legislativeService := legislativeapp.NewService(memberRepo, contactRepo, syncRepo, amnetClient, log)
	peerReviewService := peerreviewapp.NewService(firmRepo, amnetClient, calendar, log)
	termSync := referenceapp.NewTermSyncService(termRepo, syncRepo, amnetClient, log)
	firmSync := referenceapp.NewFirmSyncService(firmRepo, syncRepo, amnetClient, log)
	catalogService := referenceapp.NewCatalogService(amnetClient, log)

	archive, err := storage.NewS3PayloadArchive(ctx, cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrStorageNotConfigured):
		log.Info("Payload archive disabled")
	case err != nil:
		log.Fatal("Failed to create payload archive", zap.Error(err))
	default:
		profileService.SetPayloadArchive(archive)
		log.Info("Payload archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	membershipService.SetEventPublisher(eventBus)
	profileService.SetEventPublisher(eventBus)
	if cfg.Membership.PushOnUpdate && amnetEnabled {
		memberUpdatedHandler := profileapp.NewMemberUpdatedHandler(profileService, locker, log)
		eventBus.Subscribe(memberUpdatedHandler)
		log.Info("Event handlers registered",
			zap.Strings("member_updated_events", memberUpdatedHandler.EventTypes()),
		)
	}

	// Scheduled sync
	if cfg.Scheduler.Enabled && amnetEnabled {
		stopScheduler := startScheduler(ctx, cfg.Scheduler, amnetClient, scheduler.SyncTasks{
			PullMember: func(ctx context.Context, namesID string) error {
				_, err := profileService.Pull(ctx, namesID)
				return err
			},
			RefreshTerms: func(ctx context.Context) error {
				_, err := termSync.Refresh(ctx)
				return err
			},
			SyncFirmChanges: func(ctx context.Context, since *time.Time) error {
				_, err := firmSync.SyncChanges(ctx, since)
				return err
			},
		}, log)
		defer stopScheduler()
	}

	// HTTP
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}

	engine, err := router.NewEngine(router.Deps{
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     providers.IsEnabled(),
		Logger:      log,
		Meter:       meter,
		JWT:         auth.NewJWTService(cfg.JWT),
		Blacklist:   blacklist,
		RateLimiter: limiter,
	}, router.Handlers{
		System:      handler.NewSystemHandler(version, sqlDB, amnetEnabled),
		Auth:        handler.NewAuthHandler(blacklist),
		Member:      handler.NewMemberHandler(membershipService, profileService),
		Legislative: handler.NewLegislativeHandler(legislativeService),
		PeerReview:  handler.NewPeerReviewHandler(peerReviewService),
		Reference:   handler.NewReferenceHandler(termSync, firmSync),
		Catalog:     handler.NewCatalogHandler(catalogService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newAMNetClient builds the client for the selected AM.net environment.
// An unconfigured environment yields a client whose calls all fail with
// integration.ErrAMNetNotConfigured.
func newAMNetClient(cfg config.AMNetConfig, observer amnet.RequestObserver, log *zap.Logger) (integration.Client, bool) {
	env := cfg.Active()
	client, err := amnet.NewClient(amnet.Config{
		BaseURL:    env.BaseURL,
		User:       env.User,
		Key:        env.Key,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}, log)
	if err != nil {
		log.Warn("AM.net integration disabled", zap.String("env", cfg.Env), zap.Error(err))
		return amnet.Disabled{}, false
	}
	client.SetObserver(observer)
	log.Info("AM.net integration enabled", zap.String("env", cfg.Env), zap.String("base_url", env.BaseURL))
	return client, true
}

// startScheduler starts the job worker pool and the trigger that feeds it.
// The returned function stops both.
func startScheduler(
	ctx context.Context,
	cfg config.SchedulerConfig,
	persons integration.PersonGateway,
	tasks scheduler.SyncTasks,
	log *zap.Logger,
) func() {
	hour, minute, err := scheduler.ParseDailySchedule(cfg.DailyCronSchedule)
	if err != nil {
		log.Fatal("Invalid daily sync schedule", zap.String("schedule", cfg.DailyCronSchedule), zap.Error(err))
	}

	executor := scheduler.NewSyncExecutor(tasks, persons, cfg.ChangedPersonInterval, log)
	jobs := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Enabled,
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
		JobTimeout:        cfg.JobTimeout,
		RetryAttempts:     cfg.RetryAttempts,
		RetryDelay:        cfg.RetryDelay,
	}, executor, log)
	executor.SetSubmitter(jobs)
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start sync scheduler", zap.Error(err))
	}

	trigger := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
		DailyHour:             hour,
		DailyMinute:           minute,
		ChangedPersonInterval: cfg.ChangedPersonInterval,
		CheckInterval:         time.Minute,
	}, jobs, log)
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start sync trigger", zap.Error(err))
	}

	log.Info("Sync scheduler started",
		zap.Int("max_concurrent_jobs", cfg.MaxConcurrentJobs),
		zap.Duration("job_timeout", cfg.JobTimeout),
		zap.String("daily_schedule", cfg.DailyCronSchedule),
		zap.Duration("changed_person_interval", cfg.ChangedPersonInterval),
	)

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := trigger.Stop(stopCtx); err != nil {
			log.Error("Error stopping sync trigger", zap.Error(err))
		}
		if err := jobs.Stop(stopCtx); err != nil {
			log.Error("Error stopping sync scheduler", zap.Error(err))
		}
	}
}
