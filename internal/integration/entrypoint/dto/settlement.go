package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// SettlementEntryDTO represents one settlement entry in API responses.
type SettlementEntryDTO struct {
	ID                 string         `json:"id"`
	TransactionID      string         `json:"transaction_id"`
	GrossAmount        *string        `json:"gross_amount"`
	OriginalCurrency   string         `json:"original_currency"`
	NetAmount          *string        `json:"net_amount"`
	SettlementCurrency string         `json:"settlement_currency"`
	FeeAmount          *string        `json:"fee_amount"`
	FeeBreakdown       map[string]any `json:"fee_breakdown,omitempty"`
	FxRate             *string        `json:"fx_rate,omitempty"`
	SettlementDate     *string        `json:"settlement_date"`
	ProcessorName      string         `json:"processor_name"`
	Status             string         `json:"status"`
	SourceFile         string         `json:"source_file"`
	CreatedAt          string         `json:"created_at"`
}

// SettlementListResponse represents one page of settlement entries.
type SettlementListResponse struct {
	Entries []SettlementEntryDTO `json:"entries"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	Limit   int                  `json:"limit"`
}

// UploadResponse reports the per-row outcome of a settlement file upload.
type UploadResponse struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	EntriesProcessed int      `json:"entries_processed"`
	EntriesSaved     int      `json:"entries_saved"`
	EntriesSkipped   int      `json:"entries_skipped"`
	Errors           []string `json:"errors"`
}

// LoadTransactionsResponse reports the per-item outcome of a bulk
// transaction load.
type LoadTransactionsResponse struct {
	Status  string   `json:"status"`
	Saved   int      `json:"saved"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ToSettlementEntryDTO converts a domain SettlementEntry to its DTO.
func ToSettlementEntryDTO(entry *entity.SettlementEntry) SettlementEntryDTO {
	return SettlementEntryDTO{
		ID:                 entry.ID.String(),
		TransactionID:      entry.TransactionID,
		GrossAmount:        decimalPtrToString(entry.GrossAmount),
		OriginalCurrency:   entry.OriginalCurrency,
		NetAmount:          decimalPtrToString(entry.NetAmount),
		SettlementCurrency: entry.SettlementCurrency,
		FeeAmount:          decimalPtrToString(entry.FeeAmount),
		FeeBreakdown:       entry.FeeBreakdown,
		FxRate:             decimalPtrToString(entry.FxRate),
		SettlementDate:     timePtrToDate(entry.SettlementDate),
		ProcessorName:      entry.ProcessorName,
		Status:             string(entry.Status),
		SourceFile:         entry.SourceFile,
		CreatedAt:          entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func decimalPtrToString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func timePtrToDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}
