package adapter

import "github.com/juandarn/fleximarket-reconciler/internal/domain/entity"

// SettlementParser converts one processor's settlement file format into
// settlement entries. Implementations skip malformed rows with a warning;
// only a file that cannot be decoded at all is an error.
type SettlementParser interface {
	// ProcessorName returns the display name the parser stamps on entries.
	ProcessorName() string

	// Parse converts raw file bytes into settlement entries.
	Parse(content []byte, filename string) ([]*entity.SettlementEntry, error)
}

// ParserRegistry resolves settlement parsers by processor name.
type ParserRegistry interface {
	// ForProcessor returns the parser for a processor name, case-insensitively.
	ForProcessor(processor string) (SettlementParser, error)

	// Supported lists the registered processor keys.
	Supported() []string
}
