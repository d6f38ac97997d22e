package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/valueobject"
)

// ReportStatus represents the run state of a reconciliation report.
type ReportStatus string

const (
	ReportStatusRunning   ReportStatus = "running"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

// ReconciliationReport is the audit record of one reconciliation run.
// Created at run start with status running and updated exactly once at run
// end to completed or failed. Never deleted by the engine.
type ReconciliationReport struct {
	ID                        uuid.UUID
	StartedAt                 time.Time
	CompletedAt               *time.Time
	DateRangeStart            time.Time
	DateRangeEnd              time.Time
	TotalTransactions         int
	MatchedCount              int
	DiscrepancyCount          int
	MissingCount              int
	TotalExpectedAmountUSD    decimal.Decimal
	TotalSettledAmountUSD     decimal.Decimal
	TotalDiscrepancyAmountUSD decimal.Decimal
	Status                    ReportStatus
	Summary                   *valueobject.ReportSummary
	CreatedAt                 time.Time
}

// NewReconciliationReport creates the placeholder report persisted at run
// start, before any data is loaded.
func NewReconciliationReport(dateFrom, dateTo time.Time) *ReconciliationReport {
	now := time.Now().UTC()

	return &ReconciliationReport{
		ID:             uuid.New(),
		StartedAt:      now,
		DateRangeStart: dateFrom,
		DateRangeEnd:   dateTo,
		Status:         ReportStatusRunning,
		CreatedAt:      now,
	}
}
