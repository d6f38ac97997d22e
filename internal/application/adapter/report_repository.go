package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// ReportRepository defines the interface for reconciliation-report persistence.
type ReportRepository interface {
	// Create persists the placeholder report row at run start (status running).
	// The row must be durable before the run proceeds so a crash mid-run
	// still leaves an auditable partial record.
	Create(ctx context.Context, report *entity.ReconciliationReport) error

	// Update persists the run-end state transition (completed or failed).
	Update(ctx context.Context, report *entity.ReconciliationReport) error

	// FindByID retrieves a report by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ReconciliationReport, error)

	// FindAll retrieves all reports, ordered by creation date descending.
	FindAll(ctx context.Context) ([]*entity.ReconciliationReport, error)

	// FindLatestInRange retrieves the most recently created report whose date
	// range starts on or after dateFrom and ends on or before dateTo. Nil
	// bounds are ignored; nil result means no report matched.
	FindLatestInRange(ctx context.Context, dateFrom, dateTo *time.Time) (*entity.ReconciliationReport, error)
}
