package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/valueobject"
)

// RunReconciliationInput represents the input for one reconciliation run.
// Dates are inclusive calendar bounds; Processors optionally limits scope.
type RunReconciliationInput struct {
	DateFrom   time.Time
	DateTo     time.Time
	Processors []string
}

// RunReconciliationUseCase drives one end-to-end reconciliation run.
type RunReconciliationUseCase struct {
	transactionRepo adapter.TransactionRepository
	settlementRepo  adapter.SettlementRepository
	discrepancyRepo adapter.DiscrepancyRepository
	reportRepo      adapter.ReportRepository
	matcher         *Matcher
	config          valueobject.ReconciliationConfig
}

// NewRunReconciliationUseCase creates a new RunReconciliationUseCase instance.
func NewRunReconciliationUseCase(
	transactionRepo adapter.TransactionRepository,
	settlementRepo adapter.SettlementRepository,
	discrepancyRepo adapter.DiscrepancyRepository,
	reportRepo adapter.ReportRepository,
	config valueobject.ReconciliationConfig,
) *RunReconciliationUseCase {
	return &RunReconciliationUseCase{
		transactionRepo: transactionRepo,
		settlementRepo:  settlementRepo,
		discrepancyRepo: discrepancyRepo,
		reportRepo:      reportRepo,
		matcher:         NewMatcher(),
		config:          config,
	}
}

// Execute runs a full reconciliation cycle and returns the persisted report.
//
// The report row is created with status running before any data is loaded, so
// a crash mid-run still leaves an auditable record. On any failure after that
// point the report is finalized as failed and returned together with the
// error; discrepancies persisted before the failure stay persisted.
func (uc *RunReconciliationUseCase) Execute(
	ctx context.Context,
	input RunReconciliationInput,
) (report *entity.ReconciliationReport, err error) {
	if input.DateFrom.After(input.DateTo) {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeInvalidDateRange,
			"invalid reconciliation date range",
			domainerror.ErrInvalidDateRange,
		)
	}

	report = entity.NewReconciliationReport(input.DateFrom, input.DateTo)
	if createErr := uc.reportRepo.Create(ctx, report); createErr != nil {
		return nil, fmt.Errorf("failed to create report: %w", createErr)
	}

	slog.Info("Reconciliation run started",
		"report_id", report.ID,
		"date_from", input.DateFrom.Format("2006-01-02"),
		"date_to", input.DateTo.Format("2006-01-02"),
		"processors", input.Processors,
	)

	// Guaranteed failure finalization: whatever step below errors, the
	// report row transitions to failed exactly once and is kept as a
	// permanent record.
	defer func() {
		if err == nil {
			return
		}
		now := time.Now().UTC()
		report.Status = entity.ReportStatusFailed
		report.CompletedAt = &now
		if updateErr := uc.reportRepo.Update(ctx, report); updateErr != nil {
			slog.Error("Failed to persist failed report", "report_id", report.ID, "error", updateErr)
		}
		slog.Error("Reconciliation run failed", "report_id", report.ID, "error", err)
	}()

	transactions, err := uc.transactionRepo.FindCapturedInRange(ctx, input.DateFrom, input.DateTo, input.Processors)
	if err != nil {
		return report, fmt.Errorf("failed to load transactions: %w", err)
	}

	settlements, err := uc.settlementRepo.FindInRange(ctx, input.DateFrom, input.DateTo, input.Processors)
	if err != nil {
		return report, fmt.Errorf("failed to load settlements: %w", err)
	}

	slog.Info("Data loaded",
		"report_id", report.ID,
		"transactions", len(transactions),
		"settlements", len(settlements),
	)

	matchResult := uc.matcher.Match(transactions, settlements)

	drafts := uc.detectDiscrepancies(matchResult, input.DateTo)

	discrepancies := uc.buildDiscrepancies(drafts, report)
	if err = uc.discrepancyRepo.CreateBatch(ctx, discrepancies); err != nil {
		return report, fmt.Errorf("failed to persist discrepancies: %w", err)
	}

	uc.finalizeReport(report, transactions, settlements, matchResult, discrepancies)
	if err = uc.reportRepo.Update(ctx, report); err != nil {
		return report, fmt.Errorf("failed to finalize report: %w", err)
	}

	slog.Info("Reconciliation complete",
		"report_id", report.ID,
		"discrepancies", len(discrepancies),
	)

	return report, nil
}

// detectDiscrepancies runs every rule against the match partitions. Each
// pair rule fires independently; a single pair may surface under more than
// one rule.
func (uc *RunReconciliationUseCase) detectDiscrepancies(
	matchResult *MatchResult,
	referenceDate time.Time,
) []*Draft {
	var drafts []*Draft

	for _, pair := range matchResult.Matched {
		view := NewPairView(pair)

		if d := DetectAmountMismatch(view, uc.config.AmountTolerancePercent); d != nil {
			drafts = append(drafts, d)
		}
		if d := DetectExcessiveFee(view, uc.config.FeeTolerancePercent); d != nil {
			drafts = append(drafts, d)
		}
		if d := DetectCurrencyMismatch(view, uc.config.FxRateTolerancePercent); d != nil {
			drafts = append(drafts, d)
		}
	}

	for _, txn := range matchResult.UnmatchedTransactions {
		view := NewMissingView(txn)
		if d := DetectMissingSettlement(view, uc.config.SettlementDelayThresholdDays, referenceDate); d != nil {
			drafts = append(drafts, d)
		}
	}

	for _, group := range matchResult.Duplicates {
		if d := DetectDuplicateSettlement(NewDuplicateView(group)); d != nil {
			drafts = append(drafts, d)
		}
	}

	return drafts
}

// buildDiscrepancies converts drafts to persistable entities, assigning each
// a severity from its USD impact.
func (uc *RunReconciliationUseCase) buildDiscrepancies(
	drafts []*Draft,
	report *entity.ReconciliationReport,
) []*entity.Discrepancy {
	discrepancies := make([]*entity.Discrepancy, 0, len(drafts))

	for _, d := range drafts {
		reportID := report.ID
		discrepancies = append(discrepancies, &entity.Discrepancy{
			ID:                 uuid.New(),
			TransactionID:      d.TransactionID,
			SettlementEntryID:  d.SettlementEntryID,
			Type:               d.Type,
			Severity:           entity.Severity(valueobject.CalculateSeverity(d.ImpactUSD, uc.config.Severity)),
			ExpectedValue:      d.ExpectedValue,
			ActualValue:        d.ActualValue,
			DifferenceAmount:   d.DifferenceAmount,
			DifferenceCurrency: d.DifferenceCurrency,
			ImpactUSD:          d.ImpactUSD,
			ProcessorName:      d.ProcessorName,
			Description:        d.Description,
			ReportID:           &reportID,
			CreatedAt:          time.Now().UTC(),
		})
	}

	return discrepancies
}

// finalizeReport fills in the aggregate counts, USD totals and summary
// breakdown, and marks the report completed. It reads the just-built
// discrepancy list rather than re-querying the store.
func (uc *RunReconciliationUseCase) finalizeReport(
	report *entity.ReconciliationReport,
	transactions []*entity.ExpectedTransaction,
	settlements []*entity.SettlementEntry,
	matchResult *MatchResult,
	discrepancies []*entity.Discrepancy,
) {
	totalExpectedUSD := decimal.Zero
	for _, txn := range transactions {
		totalExpectedUSD = totalExpectedUSD.Add(valueobject.ToUSD(txn.NetOrGrossAmount(), txn.Currency))
	}

	totalSettledUSD := decimal.Zero
	for _, stl := range settlements {
		totalSettledUSD = totalSettledUSD.Add(valueobject.ToUSD(stl.NetAmountOrZero(), stl.Currency()))
	}

	totalDiscrepancyUSD := decimal.Zero
	missingCount := 0
	summary := valueobject.NewReportSummary()

	for _, d := range discrepancies {
		totalDiscrepancyUSD = totalDiscrepancyUSD.Add(d.ImpactUSD)
		if d.Type == entity.DiscrepancyTypeMissingSettlement {
			missingCount++
		}
		summary.ByType[string(d.Type)]++
		summary.BySeverity[string(d.Severity)]++
		if d.ProcessorName != "" {
			summary.ByProcessor[d.ProcessorName]++
		}
	}

	now := time.Now().UTC()
	report.CompletedAt = &now
	report.Status = entity.ReportStatusCompleted
	report.TotalTransactions = len(transactions)
	report.MatchedCount = len(matchResult.Matched)
	report.DiscrepancyCount = len(discrepancies)
	report.MissingCount = missingCount
	report.TotalExpectedAmountUSD = totalExpectedUSD
	report.TotalSettledAmountUSD = totalSettledUSD
	report.TotalDiscrepancyAmountUSD = totalDiscrepancyUSD
	report.Summary = summary
}
