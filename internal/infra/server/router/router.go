// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/juandarn/fleximarket-reconciler/internal/integration/entrypoint/controller"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                   *gin.Engine
	healthController         *controller.HealthController
	settlementController     *controller.SettlementController
	reconciliationController *controller.ReconciliationController
	reportController         *controller.ReportController
	feeController            *controller.FeeController
	runRateLimiter           *middleware.RateLimiter
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	settlementController *controller.SettlementController,
	reconciliationController *controller.ReconciliationController,
	reportController *controller.ReportController,
	feeController *controller.FeeController,
	runRateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		healthController:         healthController,
		settlementController:     settlementController,
		reconciliationController: reconciliationController,
		reportController:         reportController,
		feeController:            feeController,
		runRateLimiter:           runRateLimiter,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	// API v1 group
	v1 := r.engine.Group("/api/v1")
	{
		// Settlement ingestion routes
		if r.settlementController != nil {
			settlement := v1.Group("/settlement")
			{
				settlement.POST("/upload", r.settlementController.Upload)
				settlement.POST("/load-transactions", r.settlementController.LoadTransactions)
				settlement.GET("/entries", r.settlementController.ListEntries)
			}
		}

		// Reconciliation run and report routes
		if r.reconciliationController != nil {
			reconciliation := v1.Group("/reconciliation")
			{
				if r.runRateLimiter != nil {
					reconciliation.POST("/run", r.runRateLimiter.Middleware(), r.reconciliationController.Run)
					reconciliation.POST("/run-async", r.runRateLimiter.Middleware(), r.reconciliationController.RunAsync)
				} else {
					reconciliation.POST("/run", r.reconciliationController.Run)
					reconciliation.POST("/run-async", r.reconciliationController.RunAsync)
				}
				reconciliation.GET("/jobs", r.reconciliationController.ListJobs)
				reconciliation.GET("/jobs/:id", r.reconciliationController.GetJob)

				if r.reportController != nil {
					reconciliation.GET("/reports", r.reportController.ListReports)
					reconciliation.GET("/reports/:id", r.reportController.GetReport)
					reconciliation.GET("/report", r.reportController.LatestReport)
				}
			}
		}

		// Discrepancy and transaction query routes
		if r.reportController != nil {
			v1.GET("/discrepancies", r.reportController.ListDiscrepancies)
			v1.GET("/discrepancies/summary", r.reportController.DiscrepancySummary)
			v1.GET("/transactions/:id/status", r.reportController.TransactionStatus)
			v1.GET("/reports/currency", r.reportController.CurrencyReport)
		}

		// Fee analysis routes
		if r.feeController != nil {
			fees := v1.Group("/fees")
			{
				fees.GET("/patterns", r.feeController.Patterns)
				fees.GET("/unusual", r.feeController.Unusual)
				fees.GET("/report", r.feeController.Report)
			}
		}
	}
}
