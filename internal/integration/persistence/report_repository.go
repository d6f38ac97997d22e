package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/persistence/model"
)

// reportRepository implements the adapter.ReportRepository interface.
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance.
func NewReportRepository(db *gorm.DB) adapter.ReportRepository {
	return &reportRepository{
		db: db,
	}
}

// Create persists the placeholder report row at run start.
func (r *reportRepository) Create(ctx context.Context, report *entity.ReconciliationReport) error {
	reportModel := model.ReportFromEntity(report)
	result := r.db.WithContext(ctx).Create(reportModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Update persists the run-end state transition.
func (r *reportRepository) Update(ctx context.Context, report *entity.ReconciliationReport) error {
	reportModel := model.ReportFromEntity(report)
	result := r.db.WithContext(ctx).Save(reportModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a report by its ID. Returns nil when no report matches.
func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ReconciliationReport, error) {
	var reportModel model.ReconciliationReportModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&reportModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return reportModel.ToEntity(), nil
}

// FindLatestInRange retrieves the most recently created report matching the
// optional date bounds. Returns nil when no report matches.
func (r *reportRepository) FindLatestInRange(
	ctx context.Context,
	dateFrom, dateTo *time.Time,
) (*entity.ReconciliationReport, error) {
	query := r.db.WithContext(ctx).Model(&model.ReconciliationReportModel{})

	if dateFrom != nil {
		query = query.Where("date_range_start >= ?", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("date_range_end <= ?", *dateTo)
	}

	var reportModel model.ReconciliationReportModel
	result := query.Order("created_at DESC").First(&reportModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return reportModel.ToEntity(), nil
}

// FindAll retrieves all reports, ordered by creation date descending.
func (r *reportRepository) FindAll(ctx context.Context) ([]*entity.ReconciliationReport, error) {
	var reportModels []model.ReconciliationReportModel
	result := r.db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Find(&reportModels)
	if result.Error != nil {
		return nil, result.Error
	}

	reports := make([]*entity.ReconciliationReport, len(reportModels))
	for i, rm := range reportModels {
		reports[i] = rm.ToEntity()
	}
	return reports, nil
}
