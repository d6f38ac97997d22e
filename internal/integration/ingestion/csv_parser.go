package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/normalize"
)

// CSVParser parses PayFlow CSV settlement reports.
//
// Expected columns: settlement_id, transaction_ref, txn_date, settle_date,
// original_amount, currency, processing_fee, interchange_fee, net_amount,
// status. PayFlow settles in the original currency and provides no FX rate,
// but does break the fee into processing and interchange components.
type CSVParser struct{}

// NewCSVParser creates a new CSVParser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// ProcessorName returns the processor display name.
func (p *CSVParser) ProcessorName() string {
	return "PayFlow"
}

// Parse converts PayFlow CSV bytes into settlement entries. Malformed rows
// are skipped with a warning; one bad row never fails the whole upload.
func (p *CSVParser) Parse(content []byte, filename string) ([]*entity.SettlementEntry, error) {
	reader := csv.NewReader(bytes.NewReader(stripBOM(content)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var entries []*entity.SettlementEntry
	rowNum := 1 // header is row 1
	for {
		rowNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Skipping malformed CSV row", "row", rowNum, "file", filename, "error", err)
			continue
		}

		entry := p.parseRow(record, columns, filename, rowNum)
		if entry != nil {
			entries = append(entries, entry)
		}
	}

	slog.Info("CSV parse complete", "file", filename, "entries", len(entries))
	return entries, nil
}

func (p *CSVParser) parseRow(record []string, columns map[string]int, filename string, rowNum int) *entity.SettlementEntry {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	transactionRef := field("transaction_ref")
	if transactionRef == "" {
		slog.Warn("Skipping CSV row without transaction_ref", "row", rowNum, "file", filename)
		return nil
	}

	grossAmount := parseDecimal(field("original_amount"), "original_amount", rowNum)
	processingFee := parseDecimal(field("processing_fee"), "processing_fee", rowNum)
	interchangeFee := parseDecimal(field("interchange_fee"), "interchange_fee", rowNum)
	netAmount := parseDecimal(field("net_amount"), "net_amount", rowNum)

	var feeAmount *decimal.Decimal
	switch {
	case processingFee != nil && interchangeFee != nil:
		total := processingFee.Add(*interchangeFee)
		feeAmount = &total
	case processingFee != nil:
		feeAmount = processingFee
	case interchangeFee != nil:
		feeAmount = interchangeFee
	}

	var feeBreakdown map[string]any
	if processingFee != nil || interchangeFee != nil {
		feeBreakdown = map[string]any{
			"processing":  decimalOrNil(processingFee),
			"interchange": decimalOrNil(interchangeFee),
		}
	}

	currency := normalizeOrKeep(field("currency"), rowNum)

	entry := entity.NewSettlementEntry(
		normalize.NormalizeTransactionID(transactionRef),
		p.ProcessorName(),
		filename,
	)
	entry.GrossAmount = grossAmount
	entry.OriginalCurrency = currency
	entry.NetAmount = netAmount
	entry.SettlementCurrency = currency // PayFlow settles in the original currency
	entry.FeeAmount = feeAmount
	entry.FeeBreakdown = feeBreakdown

	if rawDate := field("settle_date"); rawDate != "" {
		if settleDate, ok := normalize.NormalizeDate(rawDate); ok {
			entry.SettlementDate = &settleDate
		}
	}
	if rawStatus := field("status"); rawStatus != "" {
		entry.Status = entity.SettlementStatus(normalize.NormalizeStatus(rawStatus, "payflow"))
	}

	rawData := make(map[string]any, len(columns))
	for name, idx := range columns {
		if idx < len(record) {
			rawData[name] = record[idx]
		}
	}
	entry.RawData = rawData

	return entry
}

// parseDecimal converts a string field to a decimal, returning nil on empty
// or non-numeric input.
func parseDecimal(value, fieldName string, rowNum int) *decimal.Decimal {
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		slog.Warn("Non-numeric field", "row", rowNum, "field", fieldName, "value", value)
		return nil
	}
	return &d
}

// normalizeOrKeep resolves a currency string, keeping the uppercased raw
// value when it cannot be resolved so the row is still usable.
func normalizeOrKeep(raw string, rowNum int) string {
	if raw == "" {
		return ""
	}
	currency, err := normalize.NormalizeCurrency(raw)
	if err != nil {
		slog.Warn("Unknown currency", "row", rowNum, "value", raw)
		return strings.ToUpper(raw)
	}
	return currency
}

func decimalOrNil(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	v, _ := d.Float64()
	return v
}
