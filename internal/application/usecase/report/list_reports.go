// Package report contains read-only reporting use cases over reconciliation
// reports and discrepancies.
package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
)

// ListReportsUseCase lists all reconciliation reports, newest first.
type ListReportsUseCase struct {
	reportRepo adapter.ReportRepository
}

// NewListReportsUseCase creates a new ListReportsUseCase instance.
func NewListReportsUseCase(reportRepo adapter.ReportRepository) *ListReportsUseCase {
	return &ListReportsUseCase{reportRepo: reportRepo}
}

// Execute returns all reports ordered by creation date descending.
func (uc *ListReportsUseCase) Execute(ctx context.Context) ([]*entity.ReconciliationReport, error) {
	reports, err := uc.reportRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// GetReportUseCase retrieves one report together with its discrepancies.
type GetReportUseCase struct {
	reportRepo      adapter.ReportRepository
	discrepancyRepo adapter.DiscrepancyRepository
}

// NewGetReportUseCase creates a new GetReportUseCase instance.
func NewGetReportUseCase(
	reportRepo adapter.ReportRepository,
	discrepancyRepo adapter.DiscrepancyRepository,
) *GetReportUseCase {
	return &GetReportUseCase{
		reportRepo:      reportRepo,
		discrepancyRepo: discrepancyRepo,
	}
}

// GetReportOutput bundles a report with its linked discrepancies.
type GetReportOutput struct {
	Report        *entity.ReconciliationReport
	Discrepancies []*entity.Discrepancy
}

// Execute retrieves a report by ID.
func (uc *GetReportUseCase) Execute(ctx context.Context, id uuid.UUID) (*GetReportOutput, error) {
	report, err := uc.reportRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeReportNotFound,
			"report not found",
			domainerror.ErrReportNotFound,
		)
	}

	discrepancies, err := uc.discrepancyRepo.FindByReport(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load report discrepancies: %w", err)
	}

	return &GetReportOutput{
		Report:        report,
		Discrepancies: discrepancies,
	}, nil
}
