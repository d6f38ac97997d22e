// Package error defines domain-specific errors for the settlement reconciler.
package error

import "errors"

// Reconciliation domain errors.
var (
	// ErrInvalidDateRange is returned when date_from is after date_to.
	ErrInvalidDateRange = errors.New("invalid date range: date_from must not be after date_to")

	// ErrReportNotFound is returned when a reconciliation report is not found.
	ErrReportNotFound = errors.New("reconciliation report not found")

	// ErrJobNotFound is returned when an async reconciliation job is not found.
	ErrJobNotFound = errors.New("reconciliation job not found")

	// ErrTransactionNotFound is returned when an expected transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ReconciliationErrorCode defines error codes for reconciliation errors.
// Format: RCN-XXYYYY where XX is category and YYYY is specific error.
type ReconciliationErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidDateRange    ReconciliationErrorCode = "RCN-010001"
	ErrCodeReportNotFound      ReconciliationErrorCode = "RCN-010002"
	ErrCodeJobNotFound         ReconciliationErrorCode = "RCN-010003"
	ErrCodeTransactionNotFound ReconciliationErrorCode = "RCN-010004"
	ErrCodeRateLimited         ReconciliationErrorCode = "RCN-010005"

	// Run errors (02XXXX)
	ErrCodeRunFailed ReconciliationErrorCode = "RCN-020001"
)

// ReconciliationError represents a reconciliation error with code and message.
type ReconciliationError struct {
	Code    ReconciliationErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ReconciliationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// NewReconciliationError creates a new ReconciliationError with the given code and message.
func NewReconciliationError(code ReconciliationErrorCode, message string, err error) *ReconciliationError {
	return &ReconciliationError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
