package ingestion

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/normalize"
)

// JSONParser parses TransactMax JSON settlement reports.
//
// Expected structure:
//
//	{
//	  "report_date": "2024-01-18",
//	  "processor": "TransactMax",
//	  "settlements": [
//	    {
//	      "id": "TM-STL-00001",
//	      "original_transaction_id": "TXN-CO-2024-000098",
//	      "settlement_date": "2024-01-09",
//	      "gross_amount": 670450.0,
//	      "currency": "COP",
//	      "total_fees": 21454.0,
//	      "net_amount": 648946.0,
//	      "settlement_status": "completed"
//	    }
//	  ]
//	}
type JSONParser struct{}

// NewJSONParser creates a new JSONParser instance.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// ProcessorName returns the processor display name.
func (p *JSONParser) ProcessorName() string {
	return "TransactMax"
}

type transactMaxFile struct {
	ReportDate  string           `json:"report_date"`
	Processor   string           `json:"processor"`
	Settlements []map[string]any `json:"settlements"`
}

// Parse converts TransactMax JSON bytes into settlement entries.
func (p *JSONParser) Parse(content []byte, filename string) ([]*entity.SettlementEntry, error) {
	var file transactMaxFile
	if err := json.Unmarshal(stripBOM(content), &file); err != nil {
		return nil, fmt.Errorf("failed to decode JSON file %s: %w", filename, err)
	}

	var entries []*entity.SettlementEntry
	for idx, item := range file.Settlements {
		entry := p.parseItem(item, filename, idx)
		if entry != nil {
			entries = append(entries, entry)
		}
	}

	slog.Info("JSON parse complete", "file", filename, "entries", len(entries))
	return entries, nil
}

func (p *JSONParser) parseItem(item map[string]any, filename string, idx int) *entity.SettlementEntry {
	txnID := stringField(item, "original_transaction_id")
	if txnID == "" {
		slog.Warn("Skipping JSON item without original_transaction_id", "item", idx, "file", filename)
		return nil
	}

	grossAmount := jsonDecimal(item["gross_amount"], "gross_amount", idx)
	netAmount := jsonDecimal(item["net_amount"], "net_amount", idx)
	feeAmount := jsonDecimal(item["total_fees"], "total_fees", idx)

	currency := normalizeOrKeep(stringField(item, "currency"), idx)

	entry := entity.NewSettlementEntry(
		normalize.NormalizeTransactionID(txnID),
		p.ProcessorName(),
		filename,
	)
	entry.GrossAmount = grossAmount
	entry.OriginalCurrency = currency
	entry.NetAmount = netAmount
	entry.SettlementCurrency = currency // TransactMax settles in the original currency
	entry.FeeAmount = feeAmount
	entry.RawData = item

	if rawDate := stringField(item, "settlement_date"); rawDate != "" {
		if settleDate, ok := normalize.NormalizeDate(rawDate); ok {
			entry.SettlementDate = &settleDate
		}
	}
	if rawStatus := stringField(item, "settlement_status"); rawStatus != "" {
		entry.Status = entity.SettlementStatus(normalize.NormalizeStatus(rawStatus, "transactmax"))
	}

	return entry
}

func stringField(item map[string]any, key string) string {
	value, ok := item[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", value))
}

// jsonDecimal converts a decoded JSON value to a decimal, going through the
// string form so float noise does not leak into stored amounts.
func jsonDecimal(value any, fieldName string, idx int) *decimal.Decimal {
	if value == nil {
		return nil
	}
	var d decimal.Decimal
	var err error
	switch v := value.(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(v))
	default:
		d, err = decimal.NewFromString(fmt.Sprintf("%v", v))
	}
	if err != nil {
		slog.Warn("Non-numeric field", "item", idx, "field", fieldName, "value", value)
		return nil
	}
	return &d
}
