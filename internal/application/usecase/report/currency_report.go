package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/valueobject"
)

// CurrencyBucket aggregates discrepancy impact for one grouping key.
type CurrencyBucket struct {
	Count          int             `json:"count"`
	TotalImpactUSD decimal.Decimal `json:"total_impact_usd"`
}

// OriginalCurrencyBucket additionally tracks the local-currency total.
type OriginalCurrencyBucket struct {
	Count            int             `json:"count"`
	TotalImpactUSD   decimal.Decimal `json:"total_impact_usd"`
	TotalImpactLocal decimal.Decimal `json:"total_impact_local"`
}

// CurrencyReportItem is one discrepancy rendered in the unified currency view.
type CurrencyReportItem struct {
	TransactionID    string          `json:"transaction_id"`
	Type             string          `json:"type"`
	Processor        string          `json:"processor"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	OriginalCurrency string          `json:"original_currency"`
	ImpactUSD        decimal.Decimal `json:"impact_usd"`
	Severity         string          `json:"severity"`
}

// CurrencyReportOutput is the multi-currency aggregation across all stored
// discrepancies, denominated in a single target currency.
type CurrencyReportOutput struct {
	TargetCurrency     string                            `json:"target_currency"`
	TotalImpact        decimal.Decimal                   `json:"total_impact"`
	ByProcessor        map[string]CurrencyBucket         `json:"by_processor"`
	ByType             map[string]CurrencyBucket         `json:"by_type"`
	ByOriginalCurrency map[string]OriginalCurrencyBucket `json:"by_original_currency"`
	Discrepancies      []CurrencyReportItem              `json:"discrepancies"`
}

// CurrencyReportUseCase aggregates all discrepancies with their financial
// impact converted into a single target currency, giving stakeholders a
// unified view regardless of the original transaction currencies.
type CurrencyReportUseCase struct {
	discrepancyRepo adapter.DiscrepancyRepository
}

// NewCurrencyReportUseCase creates a new CurrencyReportUseCase instance.
func NewCurrencyReportUseCase(discrepancyRepo adapter.DiscrepancyRepository) *CurrencyReportUseCase {
	return &CurrencyReportUseCase{discrepancyRepo: discrepancyRepo}
}

// Execute builds the multi-currency report. USD is the only supported target
// currency for now; the parameter keeps the surface stable for dashboards.
func (uc *CurrencyReportUseCase) Execute(ctx context.Context, targetCurrency string) (*CurrencyReportOutput, error) {
	if targetCurrency == "" {
		targetCurrency = "USD"
	}

	discrepancies, err := uc.discrepancyRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load discrepancies: %w", err)
	}

	out := &CurrencyReportOutput{
		TargetCurrency:     targetCurrency,
		TotalImpact:        decimal.Zero,
		ByProcessor:        make(map[string]CurrencyBucket),
		ByType:             make(map[string]CurrencyBucket),
		ByOriginalCurrency: make(map[string]OriginalCurrencyBucket),
		Discrepancies:      make([]CurrencyReportItem, 0, len(discrepancies)),
	}

	for _, d := range discrepancies {
		// Use the pre-computed USD impact when set; otherwise convert the
		// local difference on the fly.
		impact := d.ImpactUSD
		if impact.IsZero() {
			impact = valueobject.ToUSD(d.DifferenceAmount, d.DifferenceCurrency)
		}
		impact = impact.Abs()
		out.TotalImpact = out.TotalImpact.Add(impact)

		processor := d.ProcessorName
		if processor == "" {
			processor = "unknown"
		}
		procBucket := out.ByProcessor[processor]
		procBucket.Count++
		procBucket.TotalImpactUSD = procBucket.TotalImpactUSD.Add(impact)
		out.ByProcessor[processor] = procBucket

		typeBucket := out.ByType[string(d.Type)]
		typeBucket.Count++
		typeBucket.TotalImpactUSD = typeBucket.TotalImpactUSD.Add(impact)
		out.ByType[string(d.Type)] = typeBucket

		currency := d.DifferenceCurrency
		if currency == "" {
			currency = "USD"
		}
		currBucket := out.ByOriginalCurrency[currency]
		currBucket.Count++
		currBucket.TotalImpactUSD = currBucket.TotalImpactUSD.Add(impact)
		currBucket.TotalImpactLocal = currBucket.TotalImpactLocal.Add(d.DifferenceAmount.Abs())
		out.ByOriginalCurrency[currency] = currBucket

		out.Discrepancies = append(out.Discrepancies, CurrencyReportItem{
			TransactionID:    d.TransactionID,
			Type:             string(d.Type),
			Processor:        processor,
			OriginalAmount:   d.DifferenceAmount,
			OriginalCurrency: currency,
			ImpactUSD:        impact.Round(2),
			Severity:         string(d.Severity),
		})
	}

	out.TotalImpact = out.TotalImpact.Round(2)
	for k, v := range out.ByProcessor {
		v.TotalImpactUSD = v.TotalImpactUSD.Round(2)
		out.ByProcessor[k] = v
	}
	for k, v := range out.ByType {
		v.TotalImpactUSD = v.TotalImpactUSD.Round(2)
		out.ByType[k] = v
	}
	for k, v := range out.ByOriginalCurrency {
		v.TotalImpactUSD = v.TotalImpactUSD.Round(2)
		v.TotalImpactLocal = v.TotalImpactLocal.Round(2)
		out.ByOriginalCurrency[k] = v
	}

	return out, nil
}
