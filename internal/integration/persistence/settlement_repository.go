package persistence

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/persistence/model"
)

// settlementRepository implements the adapter.SettlementRepository interface.
type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new settlement repository instance.
func NewSettlementRepository(db *gorm.DB) adapter.SettlementRepository {
	return &settlementRepository{
		db: db,
	}
}

// Create persists a single settlement entry.
func (r *settlementRepository) Create(ctx context.Context, entry *entity.SettlementEntry) error {
	entryModel := model.SettlementEntryFromEntity(entry)
	result := r.db.WithContext(ctx).Create(entryModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindInRange loads settlement entries inside the inclusive date range.
// The (settlement_date, id) ordering is what makes the first entry of a
// duplicate group stable across runs.
func (r *settlementRepository) FindInRange(
	ctx context.Context,
	dateFrom, dateTo time.Time,
	processors []string,
) ([]*entity.SettlementEntry, error) {
	start, end := dayBounds(dateFrom, dateTo)

	query := r.db.WithContext(ctx).
		Where("settlement_date >= ? AND settlement_date <= ?", start, end)

	if len(processors) > 0 {
		query = query.Where("processor_name IN ?", processors)
	}

	var entryModels []model.SettlementEntryModel
	result := query.Order("settlement_date ASC, id ASC").Find(&entryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]*entity.SettlementEntry, len(entryModels))
	for i, em := range entryModels {
		entries[i] = em.ToEntity()
	}
	return entries, nil
}

// FindByFilter retrieves settlement entries with pagination.
func (r *settlementRepository) FindByFilter(
	ctx context.Context,
	filter adapter.SettlementFilter,
	pagination adapter.SettlementPagination,
) (*adapter.SettlementListResult, error) {
	query := r.db.WithContext(ctx).Model(&model.SettlementEntryModel{})

	if filter.Processor != nil {
		searchPattern := "%" + strings.ToLower(*filter.Processor) + "%"
		query = query.Where("LOWER(processor_name) LIKE ?", searchPattern)
	}
	if filter.Currency != nil {
		query = query.Where("original_currency = ?", strings.ToUpper(*filter.Currency))
	}
	if filter.DateFrom != nil {
		query = query.Where("settlement_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("settlement_date <= ?", *filter.DateTo)
	}

	var total int64
	countQuery := query.Session(&gorm.Session{})
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (pagination.Page - 1) * pagination.Limit

	var entryModels []model.SettlementEntryModel
	result := query.
		Order("settlement_date DESC, id ASC").
		Offset(offset).
		Limit(pagination.Limit).
		Find(&entryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]*entity.SettlementEntry, len(entryModels))
	for i, em := range entryModels {
		entries[i] = em.ToEntity()
	}

	return &adapter.SettlementListResult{
		Entries: entries,
		Total:   total,
		Page:    pagination.Page,
		Limit:   pagination.Limit,
	}, nil
}

// FindByTransactionID retrieves every settlement entry claiming the given
// transaction, in load order.
func (r *settlementRepository) FindByTransactionID(
	ctx context.Context,
	transactionID string,
) ([]*entity.SettlementEntry, error) {
	var entryModels []model.SettlementEntryModel
	result := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("settlement_date ASC, id ASC").
		Find(&entryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]*entity.SettlementEntry, len(entryModels))
	for i, em := range entryModels {
		entries[i] = em.ToEntity()
	}
	return entries, nil
}

// FindFeeEligible loads every entry usable for fee statistics.
func (r *settlementRepository) FindFeeEligible(ctx context.Context) ([]*entity.SettlementEntry, error) {
	var entryModels []model.SettlementEntryModel
	result := r.db.WithContext(ctx).
		Where("gross_amount > 0").
		Where("fee_amount IS NOT NULL").
		Where("processor_name <> ''").
		Where("original_currency <> ''").
		Find(&entryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]*entity.SettlementEntry, len(entryModels))
	for i, em := range entryModels {
		entries[i] = em.ToEntity()
	}
	return entries, nil
}
