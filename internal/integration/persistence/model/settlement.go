package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// SettlementEntryModel represents the settlement_entries table. The
// transaction_id column is indexed but NOT unique: duplicate rows for one
// transaction are a reconciliation signal.
type SettlementEntryModel struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	TransactionID      string           `gorm:"type:varchar(64);not null;index"`
	GrossAmount        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	OriginalCurrency   string           `gorm:"type:varchar(3)"`
	NetAmount          *decimal.Decimal `gorm:"type:decimal(18,4)"`
	SettlementCurrency string           `gorm:"type:varchar(3)"`
	FeeAmount          *decimal.Decimal `gorm:"type:decimal(18,4)"`
	FeeBreakdown       []byte           `gorm:"type:jsonb"`
	FxRate             *decimal.Decimal `gorm:"type:decimal(18,8)"`
	SettlementDate     *time.Time       `gorm:"index"`
	ProcessorName      string           `gorm:"type:varchar(64);not null;index"`
	Status             string           `gorm:"type:varchar(16)"`
	SourceFile         string           `gorm:"type:varchar(255)"`
	RawData            []byte           `gorm:"type:jsonb"`
	CreatedAt          time.Time        `gorm:"not null"`
}

// TableName returns the table name for the SettlementEntryModel.
func (SettlementEntryModel) TableName() string {
	return "settlement_entries"
}

// ToEntity converts a SettlementEntryModel to a domain entity.
func (m *SettlementEntryModel) ToEntity() *entity.SettlementEntry {
	var feeBreakdown, rawData map[string]any
	if len(m.FeeBreakdown) > 0 {
		_ = json.Unmarshal(m.FeeBreakdown, &feeBreakdown)
	}
	if len(m.RawData) > 0 {
		_ = json.Unmarshal(m.RawData, &rawData)
	}

	return &entity.SettlementEntry{
		ID:                 m.ID,
		TransactionID:      m.TransactionID,
		GrossAmount:        m.GrossAmount,
		OriginalCurrency:   m.OriginalCurrency,
		NetAmount:          m.NetAmount,
		SettlementCurrency: m.SettlementCurrency,
		FeeAmount:          m.FeeAmount,
		FeeBreakdown:       feeBreakdown,
		FxRate:             m.FxRate,
		SettlementDate:     m.SettlementDate,
		ProcessorName:      m.ProcessorName,
		Status:             entity.SettlementStatus(m.Status),
		SourceFile:         m.SourceFile,
		RawData:            rawData,
		CreatedAt:          m.CreatedAt,
	}
}

// SettlementEntryFromEntity creates a SettlementEntryModel from a domain entity.
func SettlementEntryFromEntity(entry *entity.SettlementEntry) *SettlementEntryModel {
	var feeBreakdown, rawData []byte
	if entry.FeeBreakdown != nil {
		feeBreakdown, _ = json.Marshal(entry.FeeBreakdown)
	}
	if entry.RawData != nil {
		rawData, _ = json.Marshal(entry.RawData)
	}

	return &SettlementEntryModel{
		ID:                 entry.ID,
		TransactionID:      entry.TransactionID,
		GrossAmount:        entry.GrossAmount,
		OriginalCurrency:   entry.OriginalCurrency,
		NetAmount:          entry.NetAmount,
		SettlementCurrency: entry.SettlementCurrency,
		FeeAmount:          entry.FeeAmount,
		FeeBreakdown:       feeBreakdown,
		FxRate:             entry.FxRate,
		SettlementDate:     entry.SettlementDate,
		ProcessorName:      entry.ProcessorName,
		Status:             string(entry.Status),
		SourceFile:         entry.SourceFile,
		RawData:            rawData,
		CreatedAt:          entry.CreatedAt,
	}
}
