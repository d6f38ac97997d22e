package report

import (
	"context"
	"fmt"
	"time"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
)

// LatestReportUseCase retrieves the most recent reconciliation report for an
// optional date range.
type LatestReportUseCase struct {
	reportRepo adapter.ReportRepository
}

// NewLatestReportUseCase creates a new LatestReportUseCase instance.
func NewLatestReportUseCase(reportRepo adapter.ReportRepository) *LatestReportUseCase {
	return &LatestReportUseCase{reportRepo: reportRepo}
}

// Execute returns the newest report whose range starts on or after dateFrom
// and ends on or before dateTo. Nil bounds are ignored.
func (uc *LatestReportUseCase) Execute(ctx context.Context, dateFrom, dateTo *time.Time) (*entity.ReconciliationReport, error) {
	report, err := uc.reportRepo.FindLatestInRange(ctx, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest report: %w", err)
	}
	if report == nil {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeReportNotFound,
			"no reconciliation report found for the given date range",
			domainerror.ErrReportNotFound,
		)
	}
	return report, nil
}
