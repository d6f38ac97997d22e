// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle status of an expected transaction.
type TransactionStatus string

const (
	TransactionStatusAuthorized TransactionStatus = "authorized"
	TransactionStatusCaptured   TransactionStatus = "captured"
	TransactionStatusSettled    TransactionStatus = "settled"
	TransactionStatusRefunded   TransactionStatus = "refunded"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// ExpectedTransaction represents a transaction as recorded by the platform.
// It is the source of truth that settlement entries are reconciled against.
// Only transactions with status "captured" are eligible for reconciliation.
type ExpectedTransaction struct {
	ID                 uuid.UUID
	TransactionID      string // Unique external identifier, e.g. "TXN-BR-2024-000042"
	Amount             decimal.Decimal
	Currency           string // ISO 4217 code: BRL, MXN, COP, CLP, ...
	ExpectedFeePercent *decimal.Decimal
	ExpectedFeeAmount  *decimal.Decimal
	ExpectedNetAmount  *decimal.Decimal
	ProcessorName      string
	Country            string // ISO 3166-1 alpha-2 country code
	TransactionDate    time.Time
	Status             TransactionStatus
	Metadata           map[string]any
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// NewExpectedTransaction creates a new ExpectedTransaction entity.
func NewExpectedTransaction(
	transactionID string,
	amount decimal.Decimal,
	currency string,
	processorName string,
	country string,
	transactionDate time.Time,
	status TransactionStatus,
) *ExpectedTransaction {
	return &ExpectedTransaction{
		ID:              uuid.New(),
		TransactionID:   transactionID,
		Amount:          amount,
		Currency:        currency,
		ProcessorName:   processorName,
		Country:         country,
		TransactionDate: transactionDate,
		Status:          status,
		CreatedAt:       time.Now().UTC(),
	}
}

// NetOrGrossAmount returns the expected net amount when present, falling
// back to the gross amount. Used for USD impact estimation of missing
// settlements and for report totals.
func (t *ExpectedTransaction) NetOrGrossAmount() decimal.Decimal {
	if t.ExpectedNetAmount != nil {
		return *t.ExpectedNetAmount
	}
	return t.Amount
}
