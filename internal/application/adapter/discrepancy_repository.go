package adapter

import (
	"context"
	"time"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// DiscrepancyFilter defines filter options for listing discrepancies.
type DiscrepancyFilter struct {
	Type      *entity.DiscrepancyType
	Processor *string // Case-insensitive substring match
	Severity  *entity.Severity
	DateFrom  *time.Time // created_at lower bound
	DateTo    *time.Time // created_at upper bound
}

// DiscrepancyPagination defines pagination options.
type DiscrepancyPagination struct {
	Page  int
	Limit int
}

// DiscrepancyListResult represents one page of discrepancies.
type DiscrepancyListResult struct {
	Discrepancies []*entity.Discrepancy
	Total         int64
	Page          int
	Limit         int
}

// DiscrepancyRepository defines the interface for discrepancy persistence.
type DiscrepancyRepository interface {
	// CreateBatch persists discrepancies produced by a run. Implementations
	// must make the inserted rows visible to subsequent reads within the same
	// run (flush semantics).
	CreateBatch(ctx context.Context, discrepancies []*entity.Discrepancy) error

	// FindByFilter retrieves discrepancies matching the filter, newest first.
	FindByFilter(ctx context.Context, filter DiscrepancyFilter, pagination DiscrepancyPagination) (*DiscrepancyListResult, error)

	// FindByReport retrieves every discrepancy linked to a report.
	FindByReport(ctx context.Context, reportID string) ([]*entity.Discrepancy, error)

	// FindByTransactionID retrieves every discrepancy recorded against a
	// transaction.
	FindByTransactionID(ctx context.Context, transactionID string) ([]*entity.Discrepancy, error)

	// FindAll retrieves every stored discrepancy, for cross-run aggregation.
	FindAll(ctx context.Context) ([]*entity.Discrepancy, error)
}
