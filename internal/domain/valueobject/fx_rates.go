// Package valueobject contains domain value objects for the settlement reconciler.
package valueobject

import "github.com/shopspring/decimal"

// FXRatesToUSD maps a local currency to its approximate mid-market USD rate.
// These rates are used only to estimate USD impact for prioritization; they
// are NOT authoritative for accounting.
var FXRatesToUSD = map[string]decimal.Decimal{
	"BRL": decimal.NewFromFloat(0.20),
	"MXN": decimal.NewFromFloat(0.059),
	"COP": decimal.NewFromFloat(0.00025),
	"CLP": decimal.NewFromFloat(0.0011),
	"USD": decimal.NewFromInt(1),
}

// ToUSD converts a local-currency amount to approximate USD, rounded to two
// decimal places. Unknown currencies are treated as already-USD (rate 1.0).
func ToUSD(amount decimal.Decimal, currency string) decimal.Decimal {
	rate, ok := FXRatesToUSD[currency]
	if !ok {
		rate = decimal.NewFromInt(1)
	}
	return amount.Mul(rate).Round(2)
}

// ReferenceRate returns the reference USD rate for a currency and whether
// one is known. The currency-mismatch rule skips entirely when no reference
// rate exists.
func ReferenceRate(currency string) (decimal.Decimal, bool) {
	rate, ok := FXRatesToUSD[currency]
	return rate, ok
}
