package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
)

// ListDiscrepanciesUseCase lists discrepancies with filters and pagination.
type ListDiscrepanciesUseCase struct {
	discrepancyRepo adapter.DiscrepancyRepository
}

// NewListDiscrepanciesUseCase creates a new ListDiscrepanciesUseCase instance.
func NewListDiscrepanciesUseCase(discrepancyRepo adapter.DiscrepancyRepository) *ListDiscrepanciesUseCase {
	return &ListDiscrepanciesUseCase{discrepancyRepo: discrepancyRepo}
}

// Execute retrieves discrepancies matching the filter, newest first.
func (uc *ListDiscrepanciesUseCase) Execute(
	ctx context.Context,
	filter adapter.DiscrepancyFilter,
	pagination adapter.DiscrepancyPagination,
) (*adapter.DiscrepancyListResult, error) {
	result, err := uc.discrepancyRepo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, fmt.Errorf("failed to list discrepancies: %w", err)
	}
	return result, nil
}

// DiscrepancySummaryOutput holds aggregate discrepancy statistics.
type DiscrepancySummaryOutput struct {
	TotalCount     int64           `json:"total_count"`
	ByType         map[string]int  `json:"by_type"`
	ByProcessor    map[string]int  `json:"by_processor"`
	BySeverity     map[string]int  `json:"by_severity"`
	TotalImpactUSD decimal.Decimal `json:"total_impact_usd"`
}

// DiscrepancySummaryUseCase computes aggregate statistics over all stored
// discrepancies.
type DiscrepancySummaryUseCase struct {
	discrepancyRepo adapter.DiscrepancyRepository
}

// NewDiscrepancySummaryUseCase creates a new DiscrepancySummaryUseCase instance.
func NewDiscrepancySummaryUseCase(discrepancyRepo adapter.DiscrepancyRepository) *DiscrepancySummaryUseCase {
	return &DiscrepancySummaryUseCase{discrepancyRepo: discrepancyRepo}
}

// Execute aggregates counts by type, processor, and severity plus the total
// USD impact.
func (uc *DiscrepancySummaryUseCase) Execute(ctx context.Context) (*DiscrepancySummaryOutput, error) {
	discrepancies, err := uc.discrepancyRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load discrepancies: %w", err)
	}

	out := &DiscrepancySummaryOutput{
		TotalCount:     int64(len(discrepancies)),
		ByType:         make(map[string]int),
		ByProcessor:    make(map[string]int),
		BySeverity:     make(map[string]int),
		TotalImpactUSD: decimal.Zero,
	}

	for _, d := range discrepancies {
		out.ByType[string(d.Type)]++
		out.BySeverity[string(d.Severity)]++
		if d.ProcessorName != "" {
			out.ByProcessor[d.ProcessorName]++
		}
		out.TotalImpactUSD = out.TotalImpactUSD.Add(d.ImpactUSD.Abs())
	}
	out.TotalImpactUSD = out.TotalImpactUSD.Round(2)

	return out, nil
}
