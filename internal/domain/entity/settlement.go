package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus represents the canonical settlement outcome across processors.
type SettlementStatus string

const (
	SettlementStatusCompleted SettlementStatus = "completed"
	SettlementStatusFailed    SettlementStatus = "failed"
	SettlementStatusHeld      SettlementStatus = "held"
	SettlementStatusReversed  SettlementStatus = "reversed"
)

// SettlementEntry represents a single line from a processor's settlement
// report. TransactionID is deliberately not unique: the same transaction
// appearing in two or more entries is a duplicate-settlement signal, not a
// data error. Entries are created by ingestion and never mutated.
type SettlementEntry struct {
	ID                 uuid.UUID
	TransactionID      string
	GrossAmount        *decimal.Decimal
	OriginalCurrency   string
	NetAmount          *decimal.Decimal
	SettlementCurrency string
	FeeAmount          *decimal.Decimal
	FeeBreakdown       map[string]any
	FxRate             *decimal.Decimal // Present only for cross-currency settlements
	SettlementDate     *time.Time
	ProcessorName      string
	Status             SettlementStatus
	SourceFile         string
	RawData            map[string]any
	CreatedAt          time.Time
}

// NewSettlementEntry creates a new SettlementEntry with a generated ID.
func NewSettlementEntry(transactionID, processorName, sourceFile string) *SettlementEntry {
	return &SettlementEntry{
		ID:            uuid.New(),
		TransactionID: transactionID,
		ProcessorName: processorName,
		SourceFile:    sourceFile,
		CreatedAt:     time.Now().UTC(),
	}
}

// NetAmountOrZero returns the net amount, or zero when absent.
func (s *SettlementEntry) NetAmountOrZero() decimal.Decimal {
	if s.NetAmount != nil {
		return *s.NetAmount
	}
	return decimal.Zero
}

// GrossAmountOrZero returns the gross amount, or zero when absent.
func (s *SettlementEntry) GrossAmountOrZero() decimal.Decimal {
	if s.GrossAmount != nil {
		return *s.GrossAmount
	}
	return decimal.Zero
}

// FeeAmountOrZero returns the fee amount, or zero when absent.
func (s *SettlementEntry) FeeAmountOrZero() decimal.Decimal {
	if s.FeeAmount != nil {
		return *s.FeeAmount
	}
	return decimal.Zero
}

// Currency returns the original currency, falling back to the settlement
// currency and finally to USD. Matches how duplicate-settlement impact and
// report totals pick a currency.
func (s *SettlementEntry) Currency() string {
	if s.OriginalCurrency != "" {
		return s.OriginalCurrency
	}
	if s.SettlementCurrency != "" {
		return s.SettlementCurrency
	}
	return "USD"
}
