package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToUSD(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		expected string
	}{
		{"should convert BRL", 1000, "BRL", "200"},
		{"should convert MXN", 5000, "MXN", "295"},
		{"should convert COP", 1000000, "COP", "250"},
		{"should convert CLP", 100000, "CLP", "110"},
		{"should pass USD through", 123.45, "USD", "123.45"},
		{"should treat unknown currencies as USD", 500, "XYZ", "500"},
		{"should round to two decimal places", 33.333, "BRL", "6.67"},
		{"should preserve sign", -1000, "BRL", "-200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToUSD(decimal.NewFromFloat(tt.amount), tt.currency)
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestReferenceRate(t *testing.T) {
	t.Run("should return the rate for a known currency", func(t *testing.T) {
		rate, ok := ReferenceRate("BRL")
		if !ok {
			t.Fatal("expected a reference rate for BRL")
		}
		if !rate.Equal(decimal.NewFromFloat(0.20)) {
			t.Errorf("expected 0.20, got %s", rate)
		}
	})

	t.Run("should report unknown currencies", func(t *testing.T) {
		if _, ok := ReferenceRate("XYZ"); ok {
			t.Error("expected no reference rate for an unknown currency")
		}
	})
}

func TestCalculateSeverity(t *testing.T) {
	thresholds := DefaultSeverityThresholds()

	tests := []struct {
		name     string
		impact   float64
		expected string
	}{
		{"should classify above critical threshold", 5000, SeverityCritical},
		{"should classify exactly at critical threshold", 1000, SeverityCritical},
		{"should classify just below critical threshold", 999.99, SeverityHigh},
		{"should classify exactly at high threshold", 100, SeverityHigh},
		{"should classify between high and medium", 50, SeverityMedium},
		{"should classify exactly at medium threshold", 10, SeverityMedium},
		{"should classify below medium threshold", 9.99, SeverityLow},
		{"should classify zero impact", 0, SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSeverity(decimal.NewFromFloat(tt.impact), thresholds)
			if got != tt.expected {
				t.Errorf("expected %s for impact %.2f, got %s", tt.expected, tt.impact, got)
			}
		})
	}
}
