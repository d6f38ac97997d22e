package valueobject

import "github.com/shopspring/decimal"

// Severity labels, ordered from most to least urgent.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// SeverityThresholds holds the USD impact boundaries between severity bands.
// Each boundary is inclusive on the lower bound of its band.
type SeverityThresholds struct {
	Critical decimal.Decimal
	High     decimal.Decimal
	Medium   decimal.Decimal
}

// DefaultSeverityThresholds returns the default severity boundaries.
func DefaultSeverityThresholds() SeverityThresholds {
	return SeverityThresholds{
		Critical: decimal.NewFromInt(1000),
		High:     decimal.NewFromInt(100),
		Medium:   decimal.NewFromInt(10),
	}
}

// CalculateSeverity maps a USD impact to a severity label, evaluating the
// thresholds high-to-low.
func CalculateSeverity(impactUSD decimal.Decimal, thresholds SeverityThresholds) string {
	if impactUSD.GreaterThanOrEqual(thresholds.Critical) {
		return SeverityCritical
	}
	if impactUSD.GreaterThanOrEqual(thresholds.High) {
		return SeverityHigh
	}
	if impactUSD.GreaterThanOrEqual(thresholds.Medium) {
		return SeverityMedium
	}
	return SeverityLow
}
