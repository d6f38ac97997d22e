// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/juandarn/fleximarket-reconciler/config"
	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/fees"
	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/reconciliation"
	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/report"
	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/settlement"
	"github.com/juandarn/fleximarket-reconciler/internal/infra/server/router"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/adapters"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/entrypoint/controller"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/entrypoint/middleware"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/ingestion"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Router      *router.Router
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB) *Injector {
	// Create repositories
	transactionRepo := persistence.NewTransactionRepository(db)
	settlementRepo := persistence.NewSettlementRepository(db)
	discrepancyRepo := persistence.NewDiscrepancyRepository(db)
	reportRepo := persistence.NewReportRepository(db)

	// Create the parser registry with the supported processors
	parserRegistry := ingestion.NewRegistry()

	// Create the job tracker. Redis keeps job state across restarts and
	// replicas; without it, job state lives in process memory.
	var redisClient *redis.Client
	var jobTracker reconciliation.JobTracker
	if cfg.Redis.Enabled {
		redisClient = newRedisClient(&cfg.Redis)
	}
	if redisClient != nil {
		jobTracker = adapters.NewRedisJobTracker(redisClient)
	} else {
		jobTracker = reconciliation.NewInMemoryJobTracker()
	}

	domainConfig := cfg.Reconciliation.ToDomain()

	// Create settlement use cases
	uploadUseCase := settlement.NewUploadSettlementFileUseCase(parserRegistry, settlementRepo)
	loadTransactionsUseCase := settlement.NewLoadTransactionsUseCase(transactionRepo)
	listSettlementsUseCase := settlement.NewListSettlementsUseCase(settlementRepo)

	// Create reconciliation use cases
	runUseCase := reconciliation.NewRunReconciliationUseCase(
		transactionRepo,
		settlementRepo,
		discrepancyRepo,
		reportRepo,
		domainConfig,
	)
	submitJobUseCase := reconciliation.NewSubmitJobUseCase(runUseCase, jobTracker)
	getJobStatusUseCase := reconciliation.NewGetJobStatusUseCase(jobTracker)
	listJobsUseCase := reconciliation.NewListJobsUseCase(jobTracker)

	// Create report use cases
	listReportsUseCase := report.NewListReportsUseCase(reportRepo)
	getReportUseCase := report.NewGetReportUseCase(reportRepo, discrepancyRepo)
	latestReportUseCase := report.NewLatestReportUseCase(reportRepo)
	listDiscrepanciesUseCase := report.NewListDiscrepanciesUseCase(discrepancyRepo)
	discrepancySummaryUseCase := report.NewDiscrepancySummaryUseCase(discrepancyRepo)
	transactionStatusUseCase := report.NewTransactionStatusUseCase(transactionRepo, settlementRepo, discrepancyRepo)
	currencyReportUseCase := report.NewCurrencyReportUseCase(discrepancyRepo)

	// Create fee analysis use case
	analyzeFeesUseCase := fees.NewAnalyzeFeesUseCase(settlementRepo)

	// Create controllers
	healthController := controller.NewHealthController(
		func() bool {
			sqlDB, err := db.DB()
			if err != nil {
				return false
			}
			return sqlDB.Ping() == nil
		},
		redisHealthChecker(redisClient),
	)

	settlementController := controller.NewSettlementController(
		uploadUseCase,
		loadTransactionsUseCase,
		listSettlementsUseCase,
	)

	reconciliationController := controller.NewReconciliationController(
		runUseCase,
		submitJobUseCase,
		getJobStatusUseCase,
		listJobsUseCase,
	)

	reportController := controller.NewReportController(
		listReportsUseCase,
		getReportUseCase,
		latestReportUseCase,
		listDiscrepanciesUseCase,
		discrepancySummaryUseCase,
		transactionStatusUseCase,
		currencyReportUseCase,
	)

	feeController := controller.NewFeeController(analyzeFeesUseCase, cfg.Reconciliation.FeeStdDevThreshold)

	// Create middleware
	runRateLimiter := middleware.NewRateLimiter()

	// Create router
	appRouter := router.NewRouter(
		healthController,
		settlementController,
		reconciliationController,
		reportController,
		feeController,
		runRateLimiter,
	)

	return &Injector{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
		Router:      appRouter,
	}
}

// newRedisClient connects to Redis, returning nil on failure so the
// application can fall back to the in-memory job tracker.
func newRedisClient(cfg *config.RedisConfig) *redis.Client {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		slog.Warn("Invalid Redis URL, falling back to in-memory job tracker", "error", err)
		return nil
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis unreachable, falling back to in-memory job tracker", "error", err)
		_ = client.Close()
		return nil
	}

	slog.Info("Redis connection established")
	return client
}

// redisHealthChecker returns a health probe for the Redis connection, or nil
// when Redis is not configured.
func redisHealthChecker(client *redis.Client) func() bool {
	if client == nil {
		return nil
	}
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err() == nil
	}
}
