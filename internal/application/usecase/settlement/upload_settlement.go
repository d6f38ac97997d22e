// Package settlement contains the settlement ingestion use cases: processor
// file uploads, expected transaction loads and settlement queries.
package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
)

// UploadSettlementFileInput represents one uploaded settlement file.
type UploadSettlementFileInput struct {
	Processor string
	Filename  string
	Content   []byte
}

// UploadSettlementFileOutput reports the per-row outcome of one upload.
type UploadSettlementFileOutput struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	EntriesProcessed int      `json:"entries_processed"`
	EntriesSaved     int      `json:"entries_saved"`
	EntriesSkipped   int      `json:"entries_skipped"`
	Errors           []string `json:"errors"`
}

// UploadSettlementFileUseCase parses a processor settlement file and
// persists every valid entry. Rows that fail to save are skipped and
// reported; one bad row never fails the whole upload.
type UploadSettlementFileUseCase struct {
	parsers        adapter.ParserRegistry
	settlementRepo adapter.SettlementRepository
}

// NewUploadSettlementFileUseCase creates a new UploadSettlementFileUseCase instance.
func NewUploadSettlementFileUseCase(
	parsers adapter.ParserRegistry,
	settlementRepo adapter.SettlementRepository,
) *UploadSettlementFileUseCase {
	return &UploadSettlementFileUseCase{
		parsers:        parsers,
		settlementRepo: settlementRepo,
	}
}

// Execute parses and persists one settlement file.
func (uc *UploadSettlementFileUseCase) Execute(
	ctx context.Context,
	input UploadSettlementFileInput,
) (*UploadSettlementFileOutput, error) {
	if len(input.Content) == 0 {
		return nil, domainerror.ErrEmptyFile
	}

	parser, err := uc.parsers.ForProcessor(input.Processor)
	if err != nil {
		return nil, err
	}

	slog.Info("Settlement upload received",
		"processor", input.Processor,
		"file", input.Filename,
		"size", len(input.Content),
	)

	entries, err := parser.Parse(input.Content, input.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settlement file: %w", err)
	}

	saved := 0
	skipped := 0
	var errs []string

	for _, entry := range entries {
		if saveErr := uc.settlementRepo.Create(ctx, entry); saveErr != nil {
			skipped++
			msg := fmt.Sprintf("txn=%s: %v", entry.TransactionID, saveErr)
			errs = append(errs, msg)
			slog.Warn("Failed to save settlement entry", "error", msg)
			continue
		}
		saved++
	}

	slog.Info("Settlement upload complete",
		"file", input.Filename,
		"processed", len(entries),
		"saved", saved,
		"skipped", skipped,
	)

	status := "success"
	switch {
	case saved == 0 && len(entries) > 0:
		status = "failed"
	case skipped > 0:
		status = "partial"
	}

	return &UploadSettlementFileOutput{
		Status:           status,
		Message:          fmt.Sprintf("Processed %d entries from %s", len(entries), input.Filename),
		EntriesProcessed: len(entries),
		EntriesSaved:     saved,
		EntriesSkipped:   skipped,
		Errors:           errs,
	}, nil
}
