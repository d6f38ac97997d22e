package settlement

import (
	"context"
	"fmt"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
)

// ListSettlementsUseCase lists stored settlement entries with filters and
// pagination.
type ListSettlementsUseCase struct {
	settlementRepo adapter.SettlementRepository
}

// NewListSettlementsUseCase creates a new ListSettlementsUseCase instance.
func NewListSettlementsUseCase(settlementRepo adapter.SettlementRepository) *ListSettlementsUseCase {
	return &ListSettlementsUseCase{settlementRepo: settlementRepo}
}

// Execute retrieves settlement entries matching the filter, newest first.
func (uc *ListSettlementsUseCase) Execute(
	ctx context.Context,
	filter adapter.SettlementFilter,
	pagination adapter.SettlementPagination,
) (*adapter.SettlementListResult, error) {
	result, err := uc.settlementRepo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement entries: %w", err)
	}
	return result, nil
}
