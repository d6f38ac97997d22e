// Package reconciliation contains the settlement reconciliation engine:
// transaction/settlement matching, discrepancy detection rules, and the
// run orchestration use cases.
package reconciliation

import (
	"log/slog"

	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
)

// MatchedPair is one expected transaction paired with one settlement entry
// by shared transaction identifier.
type MatchedPair struct {
	Transaction *entity.ExpectedTransaction
	Settlement  *entity.SettlementEntry
}

// DuplicateGroup holds every settlement entry sharing one transaction
// identifier, in settlement load order. The first entry is the group's
// primary and also participates in a matched pair.
type DuplicateGroup struct {
	TransactionID string
	Settlements   []*entity.SettlementEntry
}

// MatchResult partitions the inputs of one matching pass.
type MatchResult struct {
	Matched               []MatchedPair
	UnmatchedTransactions []*entity.ExpectedTransaction
	UnmatchedSettlements  []*entity.SettlementEntry
	Duplicates            []DuplicateGroup
}

// Matcher groups expected transactions and settlement entries by transaction
// identifier. Pure in-memory grouping over already-validated inputs; no
// failure modes.
type Matcher struct{}

// NewMatcher creates a new Matcher instance.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match pairs transactions with settlements by transaction identifier.
//
// For each expected transaction the settlement group is inspected:
// zero entries makes the transaction unmatched; exactly one entry makes a
// matched pair; two or more entries record a duplicate group AND still
// produce a matched pair against the first-loaded entry, so the pair rules
// run against the primary while duplication is reported as its own signal.
// Settlement ids never claimed by any transaction end up in
// UnmatchedSettlements.
func (m *Matcher) Match(
	transactions []*entity.ExpectedTransaction,
	settlements []*entity.SettlementEntry,
) *MatchResult {
	result := &MatchResult{}

	// Index settlements by transaction id, preserving load order both within
	// each group and across groups.
	settlementMap := make(map[string][]*entity.SettlementEntry)
	var idOrder []string
	for _, s := range settlements {
		if _, seen := settlementMap[s.TransactionID]; !seen {
			idOrder = append(idOrder, s.TransactionID)
		}
		settlementMap[s.TransactionID] = append(settlementMap[s.TransactionID], s)
	}

	claimed := make(map[string]bool)

	for _, txn := range transactions {
		entries := settlementMap[txn.TransactionID]

		switch {
		case len(entries) == 0:
			result.UnmatchedTransactions = append(result.UnmatchedTransactions, txn)

		case len(entries) == 1:
			result.Matched = append(result.Matched, MatchedPair{Transaction: txn, Settlement: entries[0]})
			claimed[txn.TransactionID] = true

		default:
			result.Duplicates = append(result.Duplicates, DuplicateGroup{
				TransactionID: txn.TransactionID,
				Settlements:   entries,
			})
			// The first-loaded entry still forms a matched pair so the pair
			// rules can check amounts and fees on the primary settlement.
			result.Matched = append(result.Matched, MatchedPair{Transaction: txn, Settlement: entries[0]})
			claimed[txn.TransactionID] = true
		}
	}

	for _, id := range idOrder {
		if !claimed[id] {
			result.UnmatchedSettlements = append(result.UnmatchedSettlements, settlementMap[id]...)
		}
	}

	slog.Info("Matching complete",
		"matched", len(result.Matched),
		"unmatched_transactions", len(result.UnmatchedTransactions),
		"unmatched_settlements", len(result.UnmatchedSettlements),
		"duplicates", len(result.Duplicates),
	)

	return result
}
