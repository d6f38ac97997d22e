// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new expected transaction in the database.
func (r *transactionRepository) Create(ctx context.Context, transaction *entity.ExpectedTransaction) error {
	transactionModel := model.ExpectedTransactionFromEntity(transaction)
	result := r.db.WithContext(ctx).Create(transactionModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// CreateBatch inserts many expected transactions, skipping any whose
// transaction_id is already stored. Returns the number actually saved.
func (r *transactionRepository) CreateBatch(ctx context.Context, transactions []*entity.ExpectedTransaction) (int, error) {
	saved := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, txn := range transactions {
			var count int64
			if err := tx.Model(&model.ExpectedTransactionModel{}).
				Where("transaction_id = ?", txn.TransactionID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(model.ExpectedTransactionFromEntity(txn)).Error; err != nil {
				return err
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// FindByTransactionID retrieves a transaction by its external identifier.
// Returns nil when no transaction matches.
func (r *transactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.ExpectedTransaction, error) {
	var transactionModel model.ExpectedTransactionModel
	result := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&transactionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return transactionModel.ToEntity(), nil
}

// FindCapturedInRange loads captured transactions whose transaction_date
// falls inside the inclusive calendar range, ordered deterministically.
func (r *transactionRepository) FindCapturedInRange(
	ctx context.Context,
	dateFrom, dateTo time.Time,
	processors []string,
) ([]*entity.ExpectedTransaction, error) {
	start, end := dayBounds(dateFrom, dateTo)

	query := r.db.WithContext(ctx).
		Where("status = ?", string(entity.TransactionStatusCaptured)).
		Where("transaction_date >= ? AND transaction_date <= ?", start, end)

	if len(processors) > 0 {
		query = query.Where("processor_name IN ?", processors)
	}

	var transactionModels []model.ExpectedTransactionModel
	result := query.Order("transaction_date ASC, id ASC").Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}

	transactions := make([]*entity.ExpectedTransaction, len(transactionModels))
	for i, tm := range transactionModels {
		transactions[i] = tm.ToEntity()
	}
	return transactions, nil
}

// Count returns the number of stored expected transactions.
func (r *transactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.ExpectedTransactionModel{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// dayBounds widens a calendar date range to [from 00:00:00, to 23:59:59].
func dayBounds(dateFrom, dateTo time.Time) (time.Time, time.Time) {
	start := time.Date(dateFrom.Year(), dateFrom.Month(), dateFrom.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(dateTo.Year(), dateTo.Month(), dateTo.Day(), 23, 59, 59, 0, time.UTC)
	return start, end
}
