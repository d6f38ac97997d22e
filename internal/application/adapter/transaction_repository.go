// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// TransactionFilter defines filter options for querying expected transactions.
type TransactionFilter struct {
	Status     *entity.TransactionStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Processors []string
}

// TransactionRepository defines the interface for expected-transaction persistence.
type TransactionRepository interface {
	// Create creates a new expected transaction.
	Create(ctx context.Context, transaction *entity.ExpectedTransaction) error

	// CreateBatch inserts many expected transactions, returning the count saved.
	CreateBatch(ctx context.Context, transactions []*entity.ExpectedTransaction) (int, error)

	// FindByTransactionID retrieves a transaction by its external identifier.
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.ExpectedTransaction, error)

	// FindCapturedInRange loads captured transactions whose transaction_date
	// falls inside [dateFrom 00:00:00, dateTo 23:59:59], optionally filtered
	// to the given processor names. Results are ordered by transaction_date
	// then id for reproducibility.
	FindCapturedInRange(ctx context.Context, dateFrom, dateTo time.Time, processors []string) ([]*entity.ExpectedTransaction, error)

	// Count returns the number of stored expected transactions.
	Count(ctx context.Context) (int64, error)
}
