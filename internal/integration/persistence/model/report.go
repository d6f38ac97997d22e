package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/valueobject"
)

// ReconciliationReportModel represents the reconciliation_reports table.
type ReconciliationReportModel struct {
	ID                        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StartedAt                 time.Time `gorm:"not null"`
	CompletedAt               *time.Time
	DateRangeStart            time.Time       `gorm:"not null"`
	DateRangeEnd              time.Time       `gorm:"not null"`
	TotalTransactions         int             `gorm:"not null;default:0"`
	MatchedCount              int             `gorm:"not null;default:0"`
	DiscrepancyCount          int             `gorm:"not null;default:0"`
	MissingCount              int             `gorm:"not null;default:0"`
	TotalExpectedAmountUSD    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalSettledAmountUSD     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalDiscrepancyAmountUSD decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status                    string          `gorm:"type:varchar(16);not null;index"`
	Summary                   []byte          `gorm:"type:jsonb"`
	CreatedAt                 time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for the ReconciliationReportModel.
func (ReconciliationReportModel) TableName() string {
	return "reconciliation_reports"
}

// ToEntity converts a ReconciliationReportModel to a domain entity.
func (m *ReconciliationReportModel) ToEntity() *entity.ReconciliationReport {
	var summary *valueobject.ReportSummary
	if len(m.Summary) > 0 {
		summary = &valueobject.ReportSummary{}
		if err := json.Unmarshal(m.Summary, summary); err != nil {
			summary = nil
		}
	}

	return &entity.ReconciliationReport{
		ID:                        m.ID,
		StartedAt:                 m.StartedAt,
		CompletedAt:               m.CompletedAt,
		DateRangeStart:            m.DateRangeStart,
		DateRangeEnd:              m.DateRangeEnd,
		TotalTransactions:         m.TotalTransactions,
		MatchedCount:              m.MatchedCount,
		DiscrepancyCount:          m.DiscrepancyCount,
		MissingCount:              m.MissingCount,
		TotalExpectedAmountUSD:    m.TotalExpectedAmountUSD,
		TotalSettledAmountUSD:     m.TotalSettledAmountUSD,
		TotalDiscrepancyAmountUSD: m.TotalDiscrepancyAmountUSD,
		Status:                    entity.ReportStatus(m.Status),
		Summary:                   summary,
		CreatedAt:                 m.CreatedAt,
	}
}

// ReportFromEntity creates a ReconciliationReportModel from a domain entity.
func ReportFromEntity(report *entity.ReconciliationReport) *ReconciliationReportModel {
	var summary []byte
	if report.Summary != nil {
		summary, _ = json.Marshal(report.Summary)
	}

	return &ReconciliationReportModel{
		ID:                        report.ID,
		StartedAt:                 report.StartedAt,
		CompletedAt:               report.CompletedAt,
		DateRangeStart:            report.DateRangeStart,
		DateRangeEnd:              report.DateRangeEnd,
		TotalTransactions:         report.TotalTransactions,
		MatchedCount:              report.MatchedCount,
		DiscrepancyCount:          report.DiscrepancyCount,
		MissingCount:              report.MissingCount,
		TotalExpectedAmountUSD:    report.TotalExpectedAmountUSD,
		TotalSettledAmountUSD:     report.TotalSettledAmountUSD,
		TotalDiscrepancyAmountUSD: report.TotalDiscrepancyAmountUSD,
		Status:                    string(report.Status),
		Summary:                   summary,
		CreatedAt:                 report.CreatedAt,
	}
}
