package dto

import (
	"time"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// DiscrepancyDTO represents a discrepancy in API responses.
type DiscrepancyDTO struct {
	ID                 string  `json:"id"`
	TransactionID      string  `json:"transaction_id"`
	SettlementEntryID  *string `json:"settlement_entry_id,omitempty"`
	Type               string  `json:"type"`
	Severity           string  `json:"severity"`
	ExpectedValue      *string `json:"expected_value"`
	ActualValue        *string `json:"actual_value"`
	DifferenceAmount   string  `json:"difference_amount"`
	DifferenceCurrency string  `json:"difference_currency"`
	ImpactUSD          string  `json:"impact_usd"`
	ProcessorName      string  `json:"processor_name,omitempty"`
	Description        string  `json:"description"`
	ReportID           *string `json:"report_id,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

// DiscrepancyListResponse represents one page of discrepancies.
type DiscrepancyListResponse struct {
	Discrepancies []DiscrepancyDTO `json:"discrepancies"`
	Total         int64            `json:"total"`
	Page          int              `json:"page"`
	Limit         int              `json:"limit"`
}

// DiscrepancySummaryResponse contains aggregate discrepancy statistics.
type DiscrepancySummaryResponse struct {
	TotalCount     int64          `json:"total_count"`
	ByType         map[string]int `json:"by_type"`
	ByProcessor    map[string]int `json:"by_processor"`
	BySeverity     map[string]int `json:"by_severity"`
	TotalImpactUSD string         `json:"total_impact_usd"`
}

// TransactionStatusResponse describes one transaction's settlement picture.
type TransactionStatusResponse struct {
	TransactionID    string               `json:"transaction_id"`
	Transaction      TransactionDTO       `json:"transaction"`
	Settlements      []SettlementEntryDTO `json:"settlements"`
	Discrepancies    []DiscrepancyDTO     `json:"discrepancies"`
	SettlementCount  int                  `json:"settlement_count"`
	DiscrepancyCount int                  `json:"discrepancy_count"`
}

// TransactionDTO represents an expected transaction in API responses.
type TransactionDTO struct {
	Amount          string         `json:"amount"`
	Currency        string         `json:"currency"`
	ProcessorName   string         `json:"processor_name"`
	Country         string         `json:"country,omitempty"`
	Status          string         `json:"status"`
	TransactionDate string         `json:"transaction_date"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// ToDiscrepancyDTO converts a domain Discrepancy to its DTO.
func ToDiscrepancyDTO(d *entity.Discrepancy) DiscrepancyDTO {
	var settlementEntryID *string
	if d.SettlementEntryID != nil {
		s := d.SettlementEntryID.String()
		settlementEntryID = &s
	}
	var reportID *string
	if d.ReportID != nil {
		s := d.ReportID.String()
		reportID = &s
	}

	return DiscrepancyDTO{
		ID:                 d.ID.String(),
		TransactionID:      d.TransactionID,
		SettlementEntryID:  settlementEntryID,
		Type:               string(d.Type),
		Severity:           string(d.Severity),
		ExpectedValue:      decimalPtrToString(d.ExpectedValue),
		ActualValue:        decimalPtrToString(d.ActualValue),
		DifferenceAmount:   d.DifferenceAmount.String(),
		DifferenceCurrency: d.DifferenceCurrency,
		ImpactUSD:          d.ImpactUSD.String(),
		ProcessorName:      d.ProcessorName,
		Description:        d.Description,
		ReportID:           reportID,
		CreatedAt:          d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToDiscrepancyDTOs converts a slice of discrepancies.
func ToDiscrepancyDTOs(discrepancies []*entity.Discrepancy) []DiscrepancyDTO {
	dtos := make([]DiscrepancyDTO, len(discrepancies))
	for i, d := range discrepancies {
		dtos[i] = ToDiscrepancyDTO(d)
	}
	return dtos
}

// ToTransactionDTO converts a domain ExpectedTransaction to its DTO.
func ToTransactionDTO(txn *entity.ExpectedTransaction) TransactionDTO {
	return TransactionDTO{
		Amount:          txn.Amount.String(),
		Currency:        txn.Currency,
		ProcessorName:   txn.ProcessorName,
		Country:         txn.Country,
		Status:          string(txn.Status),
		TransactionDate: txn.TransactionDate.UTC().Format("2006-01-02"),
		Metadata:        txn.Metadata,
	}
}
