// Package fees contains the statistical fee-anomaly analysis use cases.
package fees

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/valueobject"
)

// DefaultStdDevThreshold is the default number of standard deviations a fee
// percentage must deviate before it is considered unusual.
const DefaultStdDevThreshold = 2.0

// FeeSample is one settlement entry's contribution to the fee statistics.
type FeeSample struct {
	TransactionID string
	Processor     string
	Currency      string
	FeePct        float64
}

// FeePatterns maps processor -> currency -> fee statistics.
type FeePatterns map[string]map[string]valueobject.FeeStats

// FeeReport bundles patterns and anomalies for the combined endpoint.
type FeeReport struct {
	FeePatterns      FeePatterns              `json:"fee_patterns"`
	UnusualFees      []valueobject.UnusualFee `json:"unusual_fees"`
	ThresholdStdDevs float64                  `json:"threshold_std_devs"`
}

// AnalyzeFeesUseCase computes fee-percentage statistics over historical
// settlement entries and flags entries that deviate from their group norm.
type AnalyzeFeesUseCase struct {
	settlementRepo adapter.SettlementRepository
}

// NewAnalyzeFeesUseCase creates a new AnalyzeFeesUseCase instance.
func NewAnalyzeFeesUseCase(settlementRepo adapter.SettlementRepository) *AnalyzeFeesUseCase {
	return &AnalyzeFeesUseCase{settlementRepo: settlementRepo}
}

// AnalyzeFeePatterns loads eligible settlement entries and computes per
// (processor, currency) statistics.
func (uc *AnalyzeFeesUseCase) AnalyzeFeePatterns(ctx context.Context) (FeePatterns, error) {
	samples, err := uc.loadSamples(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeFeePatterns(samples), nil
}

// DetectUnusualFees flags entries whose fee percentage deviates more than
// stdDevThreshold standard deviations from the group mean. A non-positive
// threshold falls back to the default.
func (uc *AnalyzeFeesUseCase) DetectUnusualFees(ctx context.Context, stdDevThreshold float64) ([]valueobject.UnusualFee, error) {
	if stdDevThreshold <= 0 {
		stdDevThreshold = DefaultStdDevThreshold
	}

	samples, err := uc.loadSamples(ctx)
	if err != nil {
		return nil, err
	}
	unusual := FindUnusualFees(samples, ComputeFeePatterns(samples), stdDevThreshold)

	slog.Info("Unusual fee detection complete",
		"anomalies", len(unusual),
		"entries", len(samples),
		"threshold_std_devs", stdDevThreshold,
	)
	return unusual, nil
}

// GetFeeReport returns the combined fee analysis: patterns plus anomalies.
// Entries are scanned once and reused for both passes.
func (uc *AnalyzeFeesUseCase) GetFeeReport(ctx context.Context) (*FeeReport, error) {
	samples, err := uc.loadSamples(ctx)
	if err != nil {
		return nil, err
	}

	patterns := ComputeFeePatterns(samples)
	return &FeeReport{
		FeePatterns:      patterns,
		UnusualFees:      FindUnusualFees(samples, patterns, DefaultStdDevThreshold),
		ThresholdStdDevs: DefaultStdDevThreshold,
	}, nil
}

// loadSamples projects eligible settlement entries onto fee samples.
func (uc *AnalyzeFeesUseCase) loadSamples(ctx context.Context) ([]FeeSample, error) {
	entries, err := uc.settlementRepo.FindFeeEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee-eligible settlements: %w", err)
	}
	return SamplesFromEntries(entries), nil
}

// SamplesFromEntries converts settlement entries to fee samples, dropping
// any entry that cannot contribute (zero gross, missing fee, processor or
// currency). The repository already filters these, but the projection stays
// safe against partially-loaded data.
func SamplesFromEntries(entries []*entity.SettlementEntry) []FeeSample {
	samples := make([]FeeSample, 0, len(entries))
	for _, e := range entries {
		gross := e.GrossAmountOrZero()
		if gross.Sign() <= 0 || e.FeeAmount == nil || e.ProcessorName == "" || e.OriginalCurrency == "" {
			continue
		}
		samples = append(samples, FeeSample{
			TransactionID: e.TransactionID,
			Processor:     e.ProcessorName,
			Currency:      e.OriginalCurrency,
			FeePct:        e.FeeAmount.Div(gross).InexactFloat64() * 100,
		})
	}
	return samples
}

// ComputeFeePatterns groups samples by (processor, currency) and computes
// the mean and sample standard deviation (n-1 denominator) of each group's
// fee percentages. Groups with a single member get a standard deviation of
// zero. All outputs are rounded to four decimal places.
func ComputeFeePatterns(samples []FeeSample) FeePatterns {
	grouped := make(map[string]map[string][]float64)
	for _, s := range samples {
		if grouped[s.Processor] == nil {
			grouped[s.Processor] = make(map[string][]float64)
		}
		grouped[s.Processor][s.Currency] = append(grouped[s.Processor][s.Currency], s.FeePct)
	}

	patterns := make(FeePatterns, len(grouped))
	for processor, byCurrency := range grouped {
		patterns[processor] = make(map[string]valueobject.FeeStats, len(byCurrency))
		for currency, feePcts := range byCurrency {
			n := len(feePcts)
			avg := stat.Mean(feePcts, nil)

			stdDev := 0.0
			if n >= 2 {
				stdDev = stat.StdDev(feePcts, nil)
			}

			patterns[processor][currency] = valueobject.FeeStats{
				AvgFeePct:   round4(avg),
				StdDev:      round4(stdDev),
				SampleCount: n,
			}
		}
	}
	return patterns
}

// FindUnusualFees scores every sample against its group statistics. Samples
// in groups with zero standard deviation are never flagged: a lone outlier
// that defines the only sample in its group cannot be detected against
// itself.
func FindUnusualFees(samples []FeeSample, patterns FeePatterns, stdDevThreshold float64) []valueobject.UnusualFee {
	var unusual []valueobject.UnusualFee

	for _, s := range samples {
		stats, ok := patterns[s.Processor][s.Currency]
		if !ok || stats.StdDev == 0 {
			continue
		}

		deviationScore := math.Abs(s.FeePct-stats.AvgFeePct) / stats.StdDev
		if deviationScore <= stdDevThreshold {
			continue
		}

		unusual = append(unusual, valueobject.UnusualFee{
			TransactionID:  s.TransactionID,
			Processor:      s.Processor,
			Currency:       s.Currency,
			ActualFeePct:   round4(s.FeePct),
			AvgFeePct:      stats.AvgFeePct,
			StdDev:         stats.StdDev,
			DeviationScore: round4(deviationScore),
		})
	}
	return unusual
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
