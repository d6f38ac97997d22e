package ingestion

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/normalize"
)

// XMLParser parses GlobalPay XML settlement reports.
//
// Expected structure:
//
//	<SettlementReport processor="GlobalPay" date="2024-01-18">
//	  <Settlement>
//	    <SettlementId>GP-2024-0001</SettlementId>
//	    <TransactionRef>TXN-CO-2024-000185</TransactionRef>
//	    <OriginalAmount currency="COP">1546100.00</OriginalAmount>
//	    <FeeAmount>43291.00</FeeAmount>
//	    <NetAmount currency="COP">1502759.00</NetAmount>
//	    <FxRate toCurrency="USD">0.000250</FxRate>
//	    <SettlementDate>2024-01-07</SettlementDate>
//	    <Status>COMPLETED</Status>
//	  </Settlement>
//	</SettlementReport>
//
// GlobalPay is the only processor that reports a cross-currency FX rate.
type XMLParser struct{}

// NewXMLParser creates a new XMLParser instance.
func NewXMLParser() *XMLParser {
	return &XMLParser{}
}

// ProcessorName returns the processor display name.
func (p *XMLParser) ProcessorName() string {
	return "GlobalPay"
}

type globalPayReport struct {
	XMLName     xml.Name              `xml:"SettlementReport"`
	Settlements []globalPaySettlement `xml:"Settlement"`
}

type globalPaySettlement struct {
	SettlementID   string          `xml:"SettlementId"`
	TransactionRef string          `xml:"TransactionRef"`
	OriginalAmount globalPayAmount `xml:"OriginalAmount"`
	FeeAmount      string          `xml:"FeeAmount"`
	NetAmount      globalPayAmount `xml:"NetAmount"`
	FxRate         globalPayRate   `xml:"FxRate"`
	SettlementDate string          `xml:"SettlementDate"`
	Status         string          `xml:"Status"`
}

type globalPayAmount struct {
	Currency string `xml:"currency,attr"`
	Value    string `xml:",chardata"`
}

type globalPayRate struct {
	ToCurrency string `xml:"toCurrency,attr"`
	Value      string `xml:",chardata"`
}

// Parse converts GlobalPay XML bytes into settlement entries.
func (p *XMLParser) Parse(content []byte, filename string) ([]*entity.SettlementEntry, error) {
	var report globalPayReport
	if err := xml.Unmarshal(stripBOM(content), &report); err != nil {
		return nil, fmt.Errorf("failed to parse XML file %s: %w", filename, err)
	}

	var entries []*entity.SettlementEntry
	for idx, settlement := range report.Settlements {
		entry := p.parseSettlement(settlement, filename, idx)
		if entry != nil {
			entries = append(entries, entry)
		}
	}

	slog.Info("XML parse complete", "file", filename, "entries", len(entries))
	return entries, nil
}

func (p *XMLParser) parseSettlement(s globalPaySettlement, filename string, idx int) *entity.SettlementEntry {
	txnRef := strings.TrimSpace(s.TransactionRef)
	if txnRef == "" {
		slog.Warn("Skipping XML element without TransactionRef", "element", idx, "file", filename)
		return nil
	}

	entry := entity.NewSettlementEntry(
		normalize.NormalizeTransactionID(txnRef),
		p.ProcessorName(),
		filename,
	)
	entry.GrossAmount = xmlDecimal(s.OriginalAmount.Value, "OriginalAmount", idx)
	entry.FeeAmount = xmlDecimal(s.FeeAmount, "FeeAmount", idx)
	entry.NetAmount = xmlDecimal(s.NetAmount.Value, "NetAmount", idx)
	entry.FxRate = xmlDecimal(s.FxRate.Value, "FxRate", idx)
	entry.OriginalCurrency = normalizeOrKeep(strings.TrimSpace(s.OriginalAmount.Currency), idx)
	entry.SettlementCurrency = normalizeOrKeep(strings.TrimSpace(s.NetAmount.Currency), idx)

	if rawDate := strings.TrimSpace(s.SettlementDate); rawDate != "" {
		if settleDate, ok := normalize.NormalizeDate(rawDate); ok {
			entry.SettlementDate = &settleDate
		}
	}
	if rawStatus := strings.TrimSpace(s.Status); rawStatus != "" {
		entry.Status = entity.SettlementStatus(normalize.NormalizeStatus(rawStatus, "globalpay"))
	}

	entry.RawData = map[string]any{
		"SettlementId":   strings.TrimSpace(s.SettlementID),
		"TransactionRef": txnRef,
		"OriginalAmount": map[string]any{"value": strings.TrimSpace(s.OriginalAmount.Value), "currency": s.OriginalAmount.Currency},
		"FeeAmount":      strings.TrimSpace(s.FeeAmount),
		"NetAmount":      map[string]any{"value": strings.TrimSpace(s.NetAmount.Value), "currency": s.NetAmount.Currency},
		"FxRate":         map[string]any{"value": strings.TrimSpace(s.FxRate.Value), "toCurrency": s.FxRate.ToCurrency},
		"SettlementDate": strings.TrimSpace(s.SettlementDate),
		"Status":         strings.TrimSpace(s.Status),
	}

	return entry
}

func xmlDecimal(value, fieldName string, idx int) *decimal.Decimal {
	stripped := strings.TrimSpace(value)
	if stripped == "" {
		return nil
	}
	d, err := decimal.NewFromString(stripped)
	if err != nil {
		slog.Warn("Non-numeric field", "element", idx, "field", fieldName, "value", value)
		return nil
	}
	return &d
}
