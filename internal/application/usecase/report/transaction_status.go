package report

import (
	"context"
	"fmt"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
)

// TransactionStatusUseCase resolves the full settlement picture for a single
// transaction: the expected transaction, every settlement entry claiming it,
// and every discrepancy recorded against it.
type TransactionStatusUseCase struct {
	transactionRepo adapter.TransactionRepository
	settlementRepo  adapter.SettlementRepository
	discrepancyRepo adapter.DiscrepancyRepository
}

// NewTransactionStatusUseCase creates a new TransactionStatusUseCase instance.
func NewTransactionStatusUseCase(
	transactionRepo adapter.TransactionRepository,
	settlementRepo adapter.SettlementRepository,
	discrepancyRepo adapter.DiscrepancyRepository,
) *TransactionStatusUseCase {
	return &TransactionStatusUseCase{
		transactionRepo: transactionRepo,
		settlementRepo:  settlementRepo,
		discrepancyRepo: discrepancyRepo,
	}
}

// TransactionStatusOutput bundles a transaction with its settlements and
// discrepancies.
type TransactionStatusOutput struct {
	Transaction   *entity.ExpectedTransaction
	Settlements   []*entity.SettlementEntry
	Discrepancies []*entity.Discrepancy
}

// Execute retrieves the status of a transaction by its external identifier.
func (uc *TransactionStatusUseCase) Execute(ctx context.Context, transactionID string) (*TransactionStatusOutput, error) {
	txn, err := uc.transactionRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn == nil {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeTransactionNotFound,
			fmt.Sprintf("transaction %q not found", transactionID),
			domainerror.ErrTransactionNotFound,
		)
	}

	settlements, err := uc.settlementRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}

	discrepancies, err := uc.discrepancyRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load discrepancies: %w", err)
	}

	return &TransactionStatusOutput{
		Transaction:   txn,
		Settlements:   settlements,
		Discrepancies: discrepancies,
	}, nil
}
