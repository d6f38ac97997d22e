package error

import "errors"

// Settlement ingestion domain errors.
var (
	// ErrUnknownProcessor is returned when an upload names a processor without a registered parser.
	ErrUnknownProcessor = errors.New("unknown processor")

	// ErrEmptyFile is returned when an uploaded settlement file has no content.
	ErrEmptyFile = errors.New("uploaded file is empty")

	// ErrUnknownCurrency is returned when a currency string cannot be resolved to an ISO 4217 code.
	ErrUnknownCurrency = errors.New("unknown currency code")
)
