// Package model defines database models for persistence layer.
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// ExpectedTransactionModel represents the expected_transactions table.
type ExpectedTransactionModel struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	TransactionID      string           `gorm:"type:varchar(64);not null;uniqueIndex"`
	Amount             decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Currency           string           `gorm:"type:varchar(3);not null"`
	ExpectedFeePercent *decimal.Decimal `gorm:"type:decimal(8,4)"`
	ExpectedFeeAmount  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ExpectedNetAmount  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ProcessorName      string           `gorm:"type:varchar(64);not null;index"`
	Country            string           `gorm:"type:varchar(2)"`
	TransactionDate    time.Time        `gorm:"not null;index"`
	Status             string           `gorm:"type:varchar(16);not null;index"`
	Metadata           []byte           `gorm:"type:jsonb"`
	CreatedAt          time.Time        `gorm:"not null"`
	UpdatedAt          *time.Time
}

// TableName returns the table name for the ExpectedTransactionModel.
func (ExpectedTransactionModel) TableName() string {
	return "expected_transactions"
}

// ToEntity converts an ExpectedTransactionModel to a domain entity.
func (m *ExpectedTransactionModel) ToEntity() *entity.ExpectedTransaction {
	var metadata map[string]any
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata)
	}

	return &entity.ExpectedTransaction{
		ID:                 m.ID,
		TransactionID:      m.TransactionID,
		Amount:             m.Amount,
		Currency:           m.Currency,
		ExpectedFeePercent: m.ExpectedFeePercent,
		ExpectedFeeAmount:  m.ExpectedFeeAmount,
		ExpectedNetAmount:  m.ExpectedNetAmount,
		ProcessorName:      m.ProcessorName,
		Country:            m.Country,
		TransactionDate:    m.TransactionDate,
		Status:             entity.TransactionStatus(m.Status),
		Metadata:           metadata,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ExpectedTransactionFromEntity creates an ExpectedTransactionModel from a domain entity.
func ExpectedTransactionFromEntity(txn *entity.ExpectedTransaction) *ExpectedTransactionModel {
	var metadata []byte
	if txn.Metadata != nil {
		metadata, _ = json.Marshal(txn.Metadata)
	}

	return &ExpectedTransactionModel{
		ID:                 txn.ID,
		TransactionID:      txn.TransactionID,
		Amount:             txn.Amount,
		Currency:           txn.Currency,
		ExpectedFeePercent: txn.ExpectedFeePercent,
		ExpectedFeeAmount:  txn.ExpectedFeeAmount,
		ExpectedNetAmount:  txn.ExpectedNetAmount,
		ProcessorName:      txn.ProcessorName,
		Country:            txn.Country,
		TransactionDate:    txn.TransactionDate,
		Status:             string(txn.Status),
		Metadata:           metadata,
		CreatedAt:          txn.CreatedAt,
		UpdatedAt:          txn.UpdatedAt,
	}
}
