package adapter

import (
	"context"
	"time"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// SettlementFilter defines filter options for listing settlement entries.
type SettlementFilter struct {
	Processor *string // Case-insensitive substring match
	Currency  *string // Original currency, exact match (uppercased)
	DateFrom  *time.Time
	DateTo    *time.Time
}

// SettlementPagination defines pagination options for settlement listings.
type SettlementPagination struct {
	Page  int
	Limit int
}

// SettlementListResult represents one page of settlement entries.
type SettlementListResult struct {
	Entries []*entity.SettlementEntry
	Total   int64
	Page    int
	Limit   int
}

// SettlementRepository defines the interface for settlement-entry persistence.
type SettlementRepository interface {
	// Create persists a single settlement entry.
	Create(ctx context.Context, entry *entity.SettlementEntry) error

	// FindInRange loads settlement entries whose settlement_date falls inside
	// [dateFrom 00:00:00, dateTo 23:59:59], optionally filtered to the given
	// processor names. Results are ordered by settlement_date then id; the
	// first entry of a duplicate group in this order is the group's primary,
	// so the ordering must stay deterministic.
	FindInRange(ctx context.Context, dateFrom, dateTo time.Time, processors []string) ([]*entity.SettlementEntry, error)

	// FindByFilter retrieves settlement entries with pagination.
	FindByFilter(ctx context.Context, filter SettlementFilter, pagination SettlementPagination) (*SettlementListResult, error)

	// FindByTransactionID retrieves every settlement entry claiming the given
	// transaction. More than one row is possible (duplicate settlements).
	FindByTransactionID(ctx context.Context, transactionID string) ([]*entity.SettlementEntry, error)

	// FindFeeEligible loads every entry usable for fee statistics:
	// gross_amount > 0, fee_amount present, processor and original currency
	// non-empty.
	FindFeeEligible(ctx context.Context) ([]*entity.SettlementEntry, error)
}
