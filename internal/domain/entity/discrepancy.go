package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscrepancyType classifies a detected mismatch.
type DiscrepancyType string

const (
	DiscrepancyTypeMissingSettlement   DiscrepancyType = "missing_settlement"
	DiscrepancyTypeAmountMismatch      DiscrepancyType = "amount_mismatch"
	DiscrepancyTypeExcessiveFee        DiscrepancyType = "excessive_fee"
	DiscrepancyTypeCurrencyMismatch    DiscrepancyType = "currency_mismatch"
	DiscrepancyTypeDuplicateSettlement DiscrepancyType = "duplicate_settlement"
)

// Severity is the ordinal classification derived from USD impact.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Discrepancy records one detected mismatch between expected and settled
// data. Created only by the reconciliation engine during a run; immutable
// afterward.
type Discrepancy struct {
	ID                 uuid.UUID
	TransactionID      string
	SettlementEntryID  *uuid.UUID
	Type               DiscrepancyType
	Severity           Severity
	ExpectedValue      *decimal.Decimal
	ActualValue        *decimal.Decimal
	DifferenceAmount   decimal.Decimal
	DifferenceCurrency string
	ImpactUSD          decimal.Decimal // Always non-negative
	ProcessorName      string
	Description        string
	ReportID           *uuid.UUID
	CreatedAt          time.Time
}
