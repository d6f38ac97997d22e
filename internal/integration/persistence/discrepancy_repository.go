package persistence

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/persistence/model"
)

// discrepancyRepository implements the adapter.DiscrepancyRepository interface.
type discrepancyRepository struct {
	db *gorm.DB
}

// NewDiscrepancyRepository creates a new discrepancy repository instance.
func NewDiscrepancyRepository(db *gorm.DB) adapter.DiscrepancyRepository {
	return &discrepancyRepository{
		db: db,
	}
}

// CreateBatch persists discrepancies produced by a run in a single database
// transaction, so the batch is visible to readers all at once.
func (r *discrepancyRepository) CreateBatch(ctx context.Context, discrepancies []*entity.Discrepancy) error {
	if len(discrepancies) == 0 {
		return nil
	}

	discrepancyModels := make([]*model.DiscrepancyModel, len(discrepancies))
	for i, d := range discrepancies {
		discrepancyModels[i] = model.DiscrepancyFromEntity(d)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&discrepancyModels).Error
	})
}

// FindByFilter retrieves discrepancies matching the filter, newest first.
func (r *discrepancyRepository) FindByFilter(
	ctx context.Context,
	filter adapter.DiscrepancyFilter,
	pagination adapter.DiscrepancyPagination,
) (*adapter.DiscrepancyListResult, error) {
	query := r.db.WithContext(ctx).Model(&model.DiscrepancyModel{})

	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.Processor != nil {
		searchPattern := "%" + strings.ToLower(*filter.Processor) + "%"
		query = query.Where("LOWER(processor_name) LIKE ?", searchPattern)
	}
	if filter.Severity != nil {
		query = query.Where("severity = ?", string(*filter.Severity))
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	countQuery := query.Session(&gorm.Session{})
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (pagination.Page - 1) * pagination.Limit

	var discrepancyModels []model.DiscrepancyModel
	result := query.
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(pagination.Limit).
		Find(&discrepancyModels)
	if result.Error != nil {
		return nil, result.Error
	}

	discrepancies := make([]*entity.Discrepancy, len(discrepancyModels))
	for i, dm := range discrepancyModels {
		discrepancies[i] = dm.ToEntity()
	}

	return &adapter.DiscrepancyListResult{
		Discrepancies: discrepancies,
		Total:         total,
		Page:          pagination.Page,
		Limit:         pagination.Limit,
	}, nil
}

// FindByReport retrieves every discrepancy linked to a report.
func (r *discrepancyRepository) FindByReport(ctx context.Context, reportID string) ([]*entity.Discrepancy, error) {
	var discrepancyModels []model.DiscrepancyModel
	result := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC, id ASC").
		Find(&discrepancyModels)
	if result.Error != nil {
		return nil, result.Error
	}

	discrepancies := make([]*entity.Discrepancy, len(discrepancyModels))
	for i, dm := range discrepancyModels {
		discrepancies[i] = dm.ToEntity()
	}
	return discrepancies, nil
}

// FindByTransactionID retrieves every discrepancy recorded against a
// transaction.
func (r *discrepancyRepository) FindByTransactionID(
	ctx context.Context,
	transactionID string,
) ([]*entity.Discrepancy, error) {
	var discrepancyModels []model.DiscrepancyModel
	result := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC, id ASC").
		Find(&discrepancyModels)
	if result.Error != nil {
		return nil, result.Error
	}

	discrepancies := make([]*entity.Discrepancy, len(discrepancyModels))
	for i, dm := range discrepancyModels {
		discrepancies[i] = dm.ToEntity()
	}
	return discrepancies, nil
}

// FindAll retrieves every stored discrepancy, for cross-run aggregation.
func (r *discrepancyRepository) FindAll(ctx context.Context) ([]*entity.Discrepancy, error) {
	var discrepancyModels []model.DiscrepancyModel
	result := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&discrepancyModels)
	if result.Error != nil {
		return nil, result.Error
	}

	discrepancies := make([]*entity.Discrepancy, len(discrepancyModels))
	for i, dm := range discrepancyModels {
		discrepancies[i] = dm.ToEntity()
	}
	return discrepancies, nil
}
