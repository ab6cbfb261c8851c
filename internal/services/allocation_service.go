package services

import (
	"context"

	"stockyard/internal/common"
	"stockyard/internal/models"
	"stockyard/internal/repositories"

	"github.com/google/uuid"
)

// AllocationService plans which stock units satisfy an outbound request. It
// never mutates anything; the transaction orchestrator applies the plan.
type AllocationService interface {
	// Allocate plans a dispatch without locking, for previews and dry runs.
	Allocate(ctx context.Context, warehouseID, productID uuid.UUID, quantity int) (*models.Allocation, error)
	// AllocateLocked plans against rows locked inside the caller's database
	// transaction, so the plan cannot be invalidated by a concurrent dispatch.
	AllocateLocked(ctx context.Context, units repositories.StockUnitRepository, warehouseID, productID uuid.UUID, quantity int) (*models.Allocation, error)
}

type allocationService struct {
	stockRepo repositories.StockUnitRepository
}

func NewAllocationService(stockRepo repositories.StockUnitRepository) AllocationService {
	return &allocationService{stockRepo: stockRepo}
}

// BuildAllocation consumes the candidate units front to back until the request
// is filled. Candidates must already be in FEFO order: released before held,
// then batch key ascending, then creation time ascending. A held unit consumed
// while any released unit existed in the candidate set is flagged as a FEFO
// violation for the audit trail; it does not block the allocation.
func BuildAllocation(warehouseID, productID uuid.UUID, candidates []*models.StockUnit, requested int) (*models.Allocation, error) {
	available := 0
	hasRelease := false
	for _, u := range candidates {
		available += u.Cartons
		if u.Gate == models.GateRelease {
			hasRelease = true
		}
	}
	if available < requested {
		return nil, &common.InsufficientStockError{Requested: requested, Available: available}
	}

	alloc := &models.Allocation{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Requested:   requested,
	}
	remaining := requested
	for _, u := range candidates {
		if remaining == 0 {
			break
		}
		take := u.Cartons
		if take > remaining {
			take = remaining
		}
		alloc.Lines = append(alloc.Lines, models.AllocationLine{
			Unit:         u,
			Quantity:     take,
			Remaining:    u.Cartons - take,
			ViolatesFefo: u.Gate == models.GateHold && hasRelease,
		})
		remaining -= take
	}
	return alloc, nil
}

func (s *allocationService) Allocate(ctx context.Context, warehouseID, productID uuid.UUID, quantity int) (*models.Allocation, error) {
	return s.plan(ctx, s.stockRepo, warehouseID, productID, quantity, false)
}

func (s *allocationService) AllocateLocked(ctx context.Context, units repositories.StockUnitRepository, warehouseID, productID uuid.UUID, quantity int) (*models.Allocation, error) {
	return s.plan(ctx, units, warehouseID, productID, quantity, true)
}

func (s *allocationService) plan(ctx context.Context, units repositories.StockUnitRepository, warehouseID, productID uuid.UUID, quantity int, lock bool) (*models.Allocation, error) {
	if quantity <= 0 {
		return nil, common.NewValidationError("quantity", "must be a positive number of cartons")
	}

	candidates, err := units.ListForAllocation(ctx, warehouseID, productID, lock)
	if err != nil {
		return nil, common.NewPersistenceError("list allocation candidates", err)
	}
	return BuildAllocation(warehouseID, productID, candidates, quantity)
}
