package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// DiscrepancyModel represents the discrepancies table.
type DiscrepancyModel struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	TransactionID      string           `gorm:"type:varchar(64);not null;index"`
	SettlementEntryID  *uuid.UUID       `gorm:"type:uuid;index"`
	Type               string           `gorm:"type:varchar(32);not null;index"`
	Severity           string           `gorm:"type:varchar(16);not null;index"`
	ExpectedValue      *decimal.Decimal `gorm:"type:decimal(18,8)"`
	ActualValue        *decimal.Decimal `gorm:"type:decimal(18,8)"`
	DifferenceAmount   decimal.Decimal  `gorm:"type:decimal(18,8);not null"`
	DifferenceCurrency string           `gorm:"type:varchar(3)"`
	ImpactUSD          decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	ProcessorName      string           `gorm:"type:varchar(64);index"`
	Description        string           `gorm:"type:text"`
	ReportID           *uuid.UUID       `gorm:"type:uuid;index"`
	CreatedAt          time.Time        `gorm:"not null;index"`
}

// TableName returns the table name for the DiscrepancyModel.
func (DiscrepancyModel) TableName() string {
	return "discrepancies"
}

// ToEntity converts a DiscrepancyModel to a domain entity.
func (m *DiscrepancyModel) ToEntity() *entity.Discrepancy {
	return &entity.Discrepancy{
		ID:                 m.ID,
		TransactionID:      m.TransactionID,
		SettlementEntryID:  m.SettlementEntryID,
		Type:               entity.DiscrepancyType(m.Type),
		Severity:           entity.Severity(m.Severity),
		ExpectedValue:      m.ExpectedValue,
		ActualValue:        m.ActualValue,
		DifferenceAmount:   m.DifferenceAmount,
		DifferenceCurrency: m.DifferenceCurrency,
		ImpactUSD:          m.ImpactUSD,
		ProcessorName:      m.ProcessorName,
		Description:        m.Description,
		ReportID:           m.ReportID,
		CreatedAt:          m.CreatedAt,
	}
}

// DiscrepancyFromEntity creates a DiscrepancyModel from a domain entity.
func DiscrepancyFromEntity(d *entity.Discrepancy) *DiscrepancyModel {
	return &DiscrepancyModel{
		ID:                 d.ID,
		TransactionID:      d.TransactionID,
		SettlementEntryID:  d.SettlementEntryID,
		Type:               string(d.Type),
		Severity:           string(d.Severity),
		ExpectedValue:      d.ExpectedValue,
		ActualValue:        d.ActualValue,
		DifferenceAmount:   d.DifferenceAmount,
		DifferenceCurrency: d.DifferenceCurrency,
		ImpactUSD:          d.ImpactUSD,
		ProcessorName:      d.ProcessorName,
		Description:        d.Description,
		ReportID:           d.ReportID,
		CreatedAt:          d.CreatedAt,
	}
}
