package reconciliation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/valueobject"
)

// Draft is a discrepancy produced by a detection rule, before severity is
// assigned and the record is persisted. Rules return nil when nothing is
// wrong: there is no "skipped" state.
type Draft struct {
	Type               entity.DiscrepancyType
	TransactionID      string
	SettlementEntryID  *uuid.UUID
	ExpectedValue      *decimal.Decimal
	ActualValue        *decimal.Decimal
	DifferenceAmount   decimal.Decimal
	DifferenceCurrency string
	ImpactUSD          decimal.Decimal
	ProcessorName      string
	Description        string
}

// PairView carries the narrow slice of a matched pair that the pair rules
// need. Optional settlement amounts are coalesced to zero so the rules stay
// free of nil handling.
type PairView struct {
	TransactionID      string
	ProcessorName      string
	Currency           string
	ExpectedNetAmount  decimal.Decimal
	ExpectedFeePercent decimal.Decimal
	SettlementEntryID  uuid.UUID
	NetAmount          decimal.Decimal
	GrossAmount        decimal.Decimal
	FeeAmount          decimal.Decimal
	FxRate             *decimal.Decimal
}

// NewPairView projects a matched pair onto the fields the pair rules inspect.
func NewPairView(pair MatchedPair) PairView {
	txn, stl := pair.Transaction, pair.Settlement

	view := PairView{
		TransactionID:     txn.TransactionID,
		ProcessorName:     txn.ProcessorName,
		Currency:          txn.Currency,
		SettlementEntryID: stl.ID,
		NetAmount:         stl.NetAmountOrZero(),
		GrossAmount:       stl.GrossAmountOrZero(),
		FeeAmount:         stl.FeeAmountOrZero(),
		FxRate:            stl.FxRate,
	}
	if txn.ExpectedNetAmount != nil {
		view.ExpectedNetAmount = *txn.ExpectedNetAmount
	}
	if txn.ExpectedFeePercent != nil {
		view.ExpectedFeePercent = *txn.ExpectedFeePercent
	}
	return view
}

// MissingView carries the fields the missing-settlement rule needs from an
// unmatched transaction.
type MissingView struct {
	TransactionID   string
	ProcessorName   string
	Currency        string
	TransactionDate time.Time
	ExpectedNet     decimal.Decimal
}

// NewMissingView projects an unmatched transaction for the missing rule.
func NewMissingView(txn *entity.ExpectedTransaction) MissingView {
	return MissingView{
		TransactionID:   txn.TransactionID,
		ProcessorName:   txn.ProcessorName,
		Currency:        txn.Currency,
		TransactionDate: txn.TransactionDate,
		ExpectedNet:     txn.NetOrGrossAmount(),
	}
}

// DuplicateView carries the fields the duplicate rule needs from a duplicate
// group.
type DuplicateView struct {
	TransactionID string
	ProcessorName string
	Currency      string
	EntryCount    int
	TotalNet      decimal.Decimal
}

// NewDuplicateView projects a duplicate group for the duplicate rule. The
// currency and processor come from the group's primary (first-loaded) entry.
func NewDuplicateView(group DuplicateGroup) DuplicateView {
	total := decimal.Zero
	for _, s := range group.Settlements {
		total = total.Add(s.NetAmountOrZero())
	}

	first := group.Settlements[0]
	return DuplicateView{
		TransactionID: group.TransactionID,
		ProcessorName: first.ProcessorName,
		Currency:      first.Currency(),
		EntryCount:    len(group.Settlements),
		TotalNet:      total,
	}
}

// DetectAmountMismatch compares the expected net amount against the settled
// net amount. Skips when the expected value is exactly zero (the percent
// difference would be undefined). Flags when the percent difference exceeds
// tolerancePct.
func DetectAmountMismatch(v PairView, tolerancePct float64) *Draft {
	if v.ExpectedNetAmount.IsZero() {
		return nil
	}

	diff := v.ExpectedNetAmount.Sub(v.NetAmount).Abs()
	pctDiff := diff.Div(v.ExpectedNetAmount.Abs()).InexactFloat64() * 100

	if pctDiff <= tolerancePct {
		return nil
	}

	expected := v.ExpectedNetAmount
	actual := v.NetAmount
	entryID := v.SettlementEntryID

	return &Draft{
		Type:               entity.DiscrepancyTypeAmountMismatch,
		TransactionID:      v.TransactionID,
		SettlementEntryID:  &entryID,
		ExpectedValue:      &expected,
		ActualValue:        &actual,
		DifferenceAmount:   diff.Round(2),
		DifferenceCurrency: v.Currency,
		ImpactUSD:          valueobject.ToUSD(diff, v.Currency),
		ProcessorName:      v.ProcessorName,
		Description: fmt.Sprintf(
			"Net amount mismatch: expected %s vs actual %s (%s), diff=%s (%.4f%%)",
			expected, actual, v.Currency, diff.Round(2), pctDiff,
		),
	}
}

// DetectExcessiveFee checks whether the processor charged more than the
// expected fee percentage. Skips when the gross amount is zero. Flags when
// actual fee percent exceeds expected by more than feeTolerancePct points.
func DetectExcessiveFee(v PairView, feeTolerancePct float64) *Draft {
	if v.GrossAmount.IsZero() {
		return nil
	}

	actualFeePct := v.FeeAmount.Div(v.GrossAmount).InexactFloat64() * 100
	expectedFeePct := v.ExpectedFeePercent.InexactFloat64()
	excess := actualFeePct - expectedFeePct

	if excess <= feeTolerancePct {
		return nil
	}

	expectedFeeAmount := v.GrossAmount.Mul(v.ExpectedFeePercent).Div(decimal.NewFromInt(100))
	feeDiff := v.FeeAmount.Sub(expectedFeeAmount)

	expectedVal := decimal.NewFromFloat(expectedFeePct).Round(4)
	actualVal := decimal.NewFromFloat(actualFeePct).Round(4)
	entryID := v.SettlementEntryID

	return &Draft{
		Type:               entity.DiscrepancyTypeExcessiveFee,
		TransactionID:      v.TransactionID,
		SettlementEntryID:  &entryID,
		ExpectedValue:      &expectedVal,
		ActualValue:        &actualVal,
		DifferenceAmount:   feeDiff.Round(2),
		DifferenceCurrency: v.Currency,
		ImpactUSD:          valueobject.ToUSD(feeDiff, v.Currency),
		ProcessorName:      v.ProcessorName,
		Description: fmt.Sprintf(
			"Excessive fee: expected %.2f%% vs actual %.2f%% (excess %.2fpp, fee_diff=%s %s)",
			expectedFeePct, actualFeePct, excess, feeDiff.Round(2), v.Currency,
		),
	}
}

// DetectCurrencyMismatch flags a settlement whose FX rate deviates from the
// reference rate for the transaction's currency. Applies only to
// cross-currency settlements (FX rate present); skips when no reference rate
// is known or the reference is zero.
func DetectCurrencyMismatch(v PairView, fxTolerancePct float64) *Draft {
	if v.FxRate == nil {
		return nil
	}

	expectedRate, ok := valueobject.ReferenceRate(v.Currency)
	if !ok || expectedRate.IsZero() {
		return nil
	}

	actualRate := *v.FxRate
	rateDiff := actualRate.Sub(expectedRate).Abs()
	deviationPct := rateDiff.Div(expectedRate).InexactFloat64() * 100

	if deviationPct <= fxTolerancePct {
		return nil
	}

	// Impact: how much extra or less USD was received due to the deviation.
	// FX targets USD, so no further conversion is needed.
	expectedUSD := v.NetAmount.Mul(expectedRate)
	actualUSD := v.NetAmount.Mul(actualRate)
	impact := actualUSD.Sub(expectedUSD).Abs().Round(2)

	expectedVal := expectedRate
	actualVal := actualRate
	entryID := v.SettlementEntryID

	return &Draft{
		Type:               entity.DiscrepancyTypeCurrencyMismatch,
		TransactionID:      v.TransactionID,
		SettlementEntryID:  &entryID,
		ExpectedValue:      &expectedVal,
		ActualValue:        &actualVal,
		DifferenceAmount:   rateDiff.Round(6),
		DifferenceCurrency: "USD",
		ImpactUSD:          impact,
		ProcessorName:      v.ProcessorName,
		Description: fmt.Sprintf(
			"FX rate deviation for %s->USD: expected %s vs actual %s (deviation %.2f%%)",
			v.Currency, expectedRate, actualRate, deviationPct,
		),
	}
}

// DetectMissingSettlement flags an unmatched transaction once its settlement
// grace period has passed. referenceDate is the run's date_to; elapsed days
// are counted on calendar dates, ignoring the time of day.
func DetectMissingSettlement(v MissingView, thresholdDays int, referenceDate time.Time) *Draft {
	daysElapsed := daysBetween(v.TransactionDate, referenceDate)

	if daysElapsed <= thresholdDays {
		return nil
	}

	expected := v.ExpectedNet

	return &Draft{
		Type:               entity.DiscrepancyTypeMissingSettlement,
		TransactionID:      v.TransactionID,
		ExpectedValue:      &expected,
		ActualValue:        nil,
		DifferenceAmount:   expected,
		DifferenceCurrency: v.Currency,
		ImpactUSD:          valueobject.ToUSD(expected, v.Currency),
		ProcessorName:      v.ProcessorName,
		Description: fmt.Sprintf(
			"No settlement found after %d days (threshold=%dd). Expected net: %s %s",
			daysElapsed, thresholdDays, expected, v.Currency,
		),
	}
}

// DetectDuplicateSettlement flags a duplicate group unconditionally. The
// actual value is the summed net over all entries in the group, the
// double-payout exposure, not a difference.
func DetectDuplicateSettlement(v DuplicateView) *Draft {
	if v.EntryCount < 2 {
		return nil
	}

	total := v.TotalNet

	return &Draft{
		Type:               entity.DiscrepancyTypeDuplicateSettlement,
		TransactionID:      v.TransactionID,
		ExpectedValue:      nil,
		ActualValue:        &total,
		DifferenceAmount:   total,
		DifferenceCurrency: v.Currency,
		ImpactUSD:          valueobject.ToUSD(total, v.Currency),
		ProcessorName:      v.ProcessorName,
		Description: fmt.Sprintf(
			"Duplicate settlement: %d entries for %s, total net=%s %s",
			v.EntryCount, v.TransactionID, total, v.Currency,
		),
	}
}

// daysBetween returns whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}
