// Package normalize is the single place that absorbs the inconsistent
// currencies, date formats and status labels found in multi-processor
// settlement data.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
)

// currencyAliases maps common currency symbols and aliases to ISO 4217 codes.
var currencyAliases = map[string]string{
	"R$":  "BRL",
	"BRL": "BRL",
	"$":   "USD",
	"USD": "USD",
	"MXN": "MXN",
	"MX$": "MXN",
	"COP": "COP",
	"CLP": "CLP",
	"ARS": "ARS",
	"EUR": "EUR",
	"GBP": "GBP",
}

// statusMaps maps processor-specific status labels to canonical statuses.
var statusMaps = map[string]map[string]string{
	"payflow": {
		"SETTLED":  "completed",
		"FAILED":   "failed",
		"HELD":     "held",
		"REVERSED": "reversed",
	},
	"transactmax": {
		"completed": "completed",
		"failed":    "failed",
		"held":      "held",
		"reversed":  "reversed",
		"on_hold":   "held",
	},
	"globalpay": {
		"COMPLETED": "completed",
		"FAILED":    "failed",
		"ON_HOLD":   "held",
		"REVERSED":  "reversed",
	},
}

// dateLayouts are the accepted date formats, most specific first. Ambiguous
// day/month strings resolve to the earlier (day-first) layout.
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
}

// NormalizeCurrency resolves a raw currency string ("brl", "R$", " USD ") to
// a three-letter uppercase ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	stripped := strings.TrimSpace(code)
	upper := strings.ToUpper(stripped)

	if iso, ok := currencyAliases[upper]; ok {
		return iso, nil
	}
	if iso, ok := currencyAliases[stripped]; ok {
		return iso, nil
	}
	if len(stripped) == 3 && isAlpha(stripped) {
		return upper, nil
	}
	return "", fmt.Errorf("%w: %q", domainerror.ErrUnknownCurrency, code)
}

// NormalizeDate tries every accepted layout and returns the parsed time.
// Returns false when no layout matches.
func NormalizeDate(dateStr string) (time.Time, bool) {
	stripped := strings.TrimSpace(dateStr)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, stripped); err == nil {
			return t, true
		}
	}
	slog.Warn("Could not parse date", "value", dateStr)
	return time.Time{}, false
}

// NormalizeStatus maps a processor-specific status label to the canonical
// completed/failed/held/reversed vocabulary. Unknown labels fall through as
// their lowercased form so raw data is never lost.
func NormalizeStatus(status, processor string) string {
	procKey := strings.ToLower(strings.TrimSpace(processor))
	stripped := strings.TrimSpace(status)

	procMap := statusMaps[procKey]
	if canonical, ok := procMap[stripped]; ok {
		return canonical
	}
	for label, canonical := range procMap {
		if strings.EqualFold(label, stripped) {
			return canonical
		}
	}

	slog.Warn("Unknown settlement status, keeping lowercase original",
		"status", status,
		"processor", processor,
	)
	return strings.ToLower(stripped)
}

// NormalizeTransactionID strips whitespace and uppercases the identifier.
func NormalizeTransactionID(txnID string) string {
	return strings.ToUpper(strings.TrimSpace(txnID))
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
