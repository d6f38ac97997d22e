package reconciliation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

func pairView(expectedNet, actualNet float64) PairView {
	return PairView{
		TransactionID:     "TXN-001",
		ProcessorName:     "payflow",
		Currency:          "BRL",
		ExpectedNetAmount: decimal.NewFromFloat(expectedNet),
		SettlementEntryID: uuid.New(),
		NetAmount:         decimal.NewFromFloat(actualNet),
	}
}

func TestDetectAmountMismatch(t *testing.T) {
	t.Run("should flag a difference beyond tolerance", func(t *testing.T) {
		draft := DetectAmountMismatch(pairView(1000, 980), 0.01)

		if draft == nil {
			t.Fatal("expected a discrepancy, got nil")
		}
		if draft.Type != entity.DiscrepancyTypeAmountMismatch {
			t.Errorf("expected amount_mismatch, got %s", draft.Type)
		}
		if !draft.DifferenceAmount.Equal(decimal.NewFromInt(20)) {
			t.Errorf("expected difference 20, got %s", draft.DifferenceAmount)
		}
		// 20 BRL * 0.20 = 4.00 USD
		if !draft.ImpactUSD.Equal(decimal.NewFromInt(4)) {
			t.Errorf("expected impact 4.00 USD, got %s", draft.ImpactUSD)
		}
	})

	t.Run("should not flag a difference within tolerance", func(t *testing.T) {
		// 0.05 on 1000 is 0.005%, below the 0.01% tolerance.
		if draft := DetectAmountMismatch(pairView(1000, 999.95), 0.01); draft != nil {
			t.Errorf("expected nil, got %+v", draft)
		}
	})

	t.Run("should not flag equal amounts", func(t *testing.T) {
		if draft := DetectAmountMismatch(pairView(1000, 1000), 0.01); draft != nil {
			t.Errorf("expected nil, got %+v", draft)
		}
	})

	t.Run("should skip when the expected amount is zero", func(t *testing.T) {
		if draft := DetectAmountMismatch(pairView(0, 50), 0.01); draft != nil {
			t.Errorf("expected nil for zero expected amount, got %+v", draft)
		}
	})

	t.Run("should be deterministic for the same input", func(t *testing.T) {
		v := pairView(1000, 980)
		first := DetectAmountMismatch(v, 0.01)
		second := DetectAmountMismatch(v, 0.01)

		if first == nil || second == nil {
			t.Fatal("expected discrepancies from both evaluations")
		}
		if !first.DifferenceAmount.Equal(second.DifferenceAmount) ||
			!first.ImpactUSD.Equal(second.ImpactUSD) ||
			first.Description != second.Description {
			t.Error("repeated evaluation produced different drafts")
		}
	})
}

func TestDetectExcessiveFee(t *testing.T) {
	feeView := func(gross, fee, expectedPct float64) PairView {
		return PairView{
			TransactionID:      "TXN-002",
			ProcessorName:      "payflow",
			Currency:           "BRL",
			ExpectedFeePercent: decimal.NewFromFloat(expectedPct),
			SettlementEntryID:  uuid.New(),
			GrossAmount:        decimal.NewFromFloat(gross),
			FeeAmount:          decimal.NewFromFloat(fee),
		}
	}

	t.Run("should flag a fee beyond the tolerance points", func(t *testing.T) {
		// 50 on 1000 is 5.0% against an expected 2.5%: 2.5pp excess.
		draft := DetectExcessiveFee(feeView(1000, 50, 2.5), 0.5)

		if draft == nil {
			t.Fatal("expected a discrepancy, got nil")
		}
		if draft.Type != entity.DiscrepancyTypeExcessiveFee {
			t.Errorf("expected excessive_fee, got %s", draft.Type)
		}
		// Expected fee 25, actual 50: overcharge of 25 BRL.
		if !draft.DifferenceAmount.Equal(decimal.NewFromInt(25)) {
			t.Errorf("expected fee difference 25, got %s", draft.DifferenceAmount)
		}
	})

	t.Run("should not flag a fee within tolerance", func(t *testing.T) {
		// 2.9% against expected 2.5% is 0.4pp, inside the 0.5pp tolerance.
		if draft := DetectExcessiveFee(feeView(1000, 29, 2.5), 0.5); draft != nil {
			t.Errorf("expected nil, got %+v", draft)
		}
	})

	t.Run("should not flag an undercharged fee", func(t *testing.T) {
		if draft := DetectExcessiveFee(feeView(1000, 10, 2.5), 0.5); draft != nil {
			t.Errorf("expected nil for fee below expected, got %+v", draft)
		}
	})

	t.Run("should skip when the gross amount is zero", func(t *testing.T) {
		if draft := DetectExcessiveFee(feeView(0, 50, 2.5), 0.5); draft != nil {
			t.Errorf("expected nil for zero gross amount, got %+v", draft)
		}
	})
}

func TestDetectCurrencyMismatch(t *testing.T) {
	fxView := func(currency string, net, rate float64) PairView {
		fx := decimal.NewFromFloat(rate)
		return PairView{
			TransactionID:     "TXN-003",
			ProcessorName:     "globalpay",
			Currency:          currency,
			SettlementEntryID: uuid.New(),
			NetAmount:         decimal.NewFromFloat(net),
			FxRate:            &fx,
		}
	}

	t.Run("should flag a rate deviating beyond tolerance", func(t *testing.T) {
		// COP reference is 0.00025; 0.000266 deviates by 6.4%.
		draft := DetectCurrencyMismatch(fxView("COP", 1000000, 0.000266), 2.0)

		if draft == nil {
			t.Fatal("expected a discrepancy, got nil")
		}
		if draft.Type != entity.DiscrepancyTypeCurrencyMismatch {
			t.Errorf("expected currency_mismatch, got %s", draft.Type)
		}
		if draft.DifferenceCurrency != "USD" {
			t.Errorf("expected impact currency USD, got %s", draft.DifferenceCurrency)
		}
		// |1000000*0.000266 - 1000000*0.00025| = 16.00 USD
		if !draft.ImpactUSD.Equal(decimal.NewFromInt(16)) {
			t.Errorf("expected impact 16.00 USD, got %s", draft.ImpactUSD)
		}
	})

	t.Run("should not flag a rate within tolerance", func(t *testing.T) {
		// BRL reference is 0.20; 0.201 deviates by 0.5%.
		if draft := DetectCurrencyMismatch(fxView("BRL", 1000, 0.201), 2.0); draft != nil {
			t.Errorf("expected nil, got %+v", draft)
		}
	})

	t.Run("should skip same-currency settlements", func(t *testing.T) {
		v := pairView(1000, 1000)
		v.FxRate = nil
		if draft := DetectCurrencyMismatch(v, 2.0); draft != nil {
			t.Errorf("expected nil when no FX rate is present, got %+v", draft)
		}
	})

	t.Run("should skip currencies without a reference rate", func(t *testing.T) {
		if draft := DetectCurrencyMismatch(fxView("XXX", 1000, 0.5), 2.0); draft != nil {
			t.Errorf("expected nil for unknown currency, got %+v", draft)
		}
	})
}

func TestDetectMissingSettlement(t *testing.T) {
	missingView := func(txnDate time.Time) MissingView {
		return MissingView{
			TransactionID:   "TXN-004",
			ProcessorName:   "transactmax",
			Currency:        "MXN",
			TransactionDate: txnDate,
			ExpectedNet:     decimal.NewFromInt(5000),
		}
	}

	t.Run("should flag a transaction past the grace period", func(t *testing.T) {
		txnDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		refDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

		draft := DetectMissingSettlement(missingView(txnDate), 5, refDate)

		if draft == nil {
			t.Fatal("expected a discrepancy, got nil")
		}
		if draft.Type != entity.DiscrepancyTypeMissingSettlement {
			t.Errorf("expected missing_settlement, got %s", draft.Type)
		}
		if !strings.Contains(draft.Description, "9 days") {
			t.Errorf("expected description mentioning 9 elapsed days, got %q", draft.Description)
		}
		// 5000 MXN * 0.059 = 295.00 USD
		if !draft.ImpactUSD.Equal(decimal.NewFromInt(295)) {
			t.Errorf("expected impact 295.00 USD, got %s", draft.ImpactUSD)
		}
	})

	t.Run("should not flag a transaction within the grace period", func(t *testing.T) {
		txnDate := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
		refDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

		if draft := DetectMissingSettlement(missingView(txnDate), 5, refDate); draft != nil {
			t.Errorf("expected nil within the grace period, got %+v", draft)
		}
	})

	t.Run("should not flag exactly at the threshold", func(t *testing.T) {
		txnDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		refDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

		if draft := DetectMissingSettlement(missingView(txnDate), 5, refDate); draft != nil {
			t.Errorf("expected nil at exactly threshold days, got %+v", draft)
		}
	})

	t.Run("should count calendar days ignoring time of day", func(t *testing.T) {
		txnDate := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
		refDate := time.Date(2024, 1, 7, 0, 0, 1, 0, time.UTC)

		draft := DetectMissingSettlement(missingView(txnDate), 5, refDate)
		if draft == nil {
			t.Fatal("expected a discrepancy: 6 calendar days elapsed")
		}
		if !strings.Contains(draft.Description, "6 days") {
			t.Errorf("expected 6 elapsed days in description, got %q", draft.Description)
		}
	})
}

func TestDetectDuplicateSettlement(t *testing.T) {
	t.Run("should flag a group with two entries", func(t *testing.T) {
		first := newTestSettlement("TXN-005", 500)
		second := newTestSettlement("TXN-005", 500)

		view := NewDuplicateView(DuplicateGroup{
			TransactionID: "TXN-005",
			Settlements:   []*entity.SettlementEntry{first, second},
		})
		draft := DetectDuplicateSettlement(view)

		if draft == nil {
			t.Fatal("expected a discrepancy, got nil")
		}
		if draft.Type != entity.DiscrepancyTypeDuplicateSettlement {
			t.Errorf("expected duplicate_settlement, got %s", draft.Type)
		}
		if !draft.DifferenceAmount.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected total net 1000, got %s", draft.DifferenceAmount)
		}
		// 1000 BRL * 0.20 = 200.00 USD
		if !draft.ImpactUSD.Equal(decimal.NewFromInt(200)) {
			t.Errorf("expected impact 200.00 USD, got %s", draft.ImpactUSD)
		}
	})

	t.Run("should not flag a single entry", func(t *testing.T) {
		view := DuplicateView{TransactionID: "TXN-006", EntryCount: 1}
		if draft := DetectDuplicateSettlement(view); draft != nil {
			t.Errorf("expected nil for a single entry, got %+v", draft)
		}
	})
}
