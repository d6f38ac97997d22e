package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/normalize"
)

// transactionItem is the JSON shape of one expected transaction in a bulk
// load file.
type transactionItem struct {
	TransactionID      string           `json:"transaction_id"`
	Amount             decimal.Decimal  `json:"amount"`
	Currency           string           `json:"currency"`
	ExpectedFeePercent *decimal.Decimal `json:"expected_fee_percent"`
	ExpectedFeeAmount  *decimal.Decimal `json:"expected_fee_amount"`
	ExpectedNetAmount  *decimal.Decimal `json:"expected_net_amount"`
	ProcessorName      string           `json:"processor_name"`
	Country            string           `json:"country"`
	TransactionDate    string           `json:"transaction_date"`
	Status             string           `json:"status"`
	Metadata           map[string]any   `json:"metadata_json"`
}

// LoadTransactionsOutput reports the per-item outcome of one bulk load.
type LoadTransactionsOutput struct {
	Status  string   `json:"status"`
	Saved   int      `json:"saved"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// LoadTransactionsUseCase bulk-inserts expected transactions from a JSON
// array. Invalid items are skipped and reported, never fatal.
type LoadTransactionsUseCase struct {
	transactionRepo adapter.TransactionRepository
}

// NewLoadTransactionsUseCase creates a new LoadTransactionsUseCase instance.
func NewLoadTransactionsUseCase(transactionRepo adapter.TransactionRepository) *LoadTransactionsUseCase {
	return &LoadTransactionsUseCase{transactionRepo: transactionRepo}
}

// Execute decodes and persists a JSON array of expected transactions.
func (uc *LoadTransactionsUseCase) Execute(ctx context.Context, content []byte) (*LoadTransactionsOutput, error) {
	if len(content) == 0 {
		return nil, domainerror.ErrEmptyFile
	}

	var items []transactionItem
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, fmt.Errorf("invalid transaction file: expected a JSON array: %w", err)
	}

	saved := 0
	skipped := 0
	var errs []string

	for idx, item := range items {
		txn, err := uc.toEntity(item)
		if err != nil {
			skipped++
			errs = append(errs, fmt.Sprintf("Item %d: %v", idx, err))
			slog.Warn("Skipping transaction item", "item", idx, "error", err)
			continue
		}
		if err := uc.transactionRepo.Create(ctx, txn); err != nil {
			skipped++
			errs = append(errs, fmt.Sprintf("Item %d: %v", idx, err))
			slog.Warn("Failed to save transaction item", "item", idx, "error", err)
			continue
		}
		saved++
	}

	slog.Info("Transaction load complete", "saved", saved, "skipped", skipped)

	status := "success"
	if skipped > 0 {
		status = "partial"
	}

	return &LoadTransactionsOutput{
		Status:  status,
		Saved:   saved,
		Skipped: skipped,
		Errors:  errs,
	}, nil
}

func (uc *LoadTransactionsUseCase) toEntity(item transactionItem) (*entity.ExpectedTransaction, error) {
	if item.TransactionID == "" {
		return nil, fmt.Errorf("missing transaction_id")
	}
	if item.Currency == "" {
		return nil, fmt.Errorf("missing currency")
	}

	transactionDate, ok := normalize.NormalizeDate(item.TransactionDate)
	if !ok {
		return nil, fmt.Errorf("unparseable transaction_date %q", item.TransactionDate)
	}

	txn := entity.NewExpectedTransaction(
		normalize.NormalizeTransactionID(item.TransactionID),
		item.Amount,
		item.Currency,
		item.ProcessorName,
		item.Country,
		transactionDate,
		entity.TransactionStatus(item.Status),
	)
	txn.ExpectedFeePercent = item.ExpectedFeePercent
	txn.ExpectedFeeAmount = item.ExpectedFeeAmount
	txn.ExpectedNetAmount = item.ExpectedNetAmount
	txn.Metadata = item.Metadata
	return txn, nil
}
