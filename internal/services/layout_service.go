package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"stockyard/internal/caching"
	"stockyard/internal/common"
	"stockyard/internal/models"
	"stockyard/internal/repositories"

	"github.com/google/uuid"
)

const layoutCacheTTL = 10 * time.Minute

// LayoutService answers the physical-layout questions: how many pallets fit a
// cell, which lanes are transit buffers, and whether a product may be placed at
// a location. Rule violations come back as LocationError with the specific rule
// broken; they are never fatal.
type LayoutService interface {
	CapacityOf(ctx context.Context, warehouseID uuid.UUID, cluster string, lane, row int) (int, error)
	RowCountOf(ctx context.Context, warehouseID uuid.UUID, cluster string, lane, row int) (int, error)
	IsTransit(ctx context.Context, warehouseID uuid.UUID, cluster string, lane int) (bool, error)
	// ValidatePlacement checks home rules and cell occupancy. Occupancy counts
	// run through the supplied stock repository so the orchestrator can pass a
	// tx-scoped one and keep the whole operation atomic.
	ValidatePlacement(ctx context.Context, units repositories.StockUnitRepository, warehouseID, productID uuid.UUID, loc models.Location) error
}

type layoutService struct {
	clusterRepo repositories.ClusterConfigRepository
	homeRepo    repositories.ProductHomeRepository
	cacheSvc    caching.CacheService
}

func NewLayoutService(clusterRepo repositories.ClusterConfigRepository, homeRepo repositories.ProductHomeRepository, cacheSvc caching.CacheService) LayoutService {
	return &layoutService{
		clusterRepo: clusterRepo,
		homeRepo:    homeRepo,
		cacheSvc:    cacheSvc,
	}
}

// resolveCapacity applies the cascade: cell-specific override > lane-range
// override > cluster default. An override only wins the attribute it sets.
func resolveCapacity(cfg *models.ClusterConfig, overrides []*models.CapacityOverride, lane, row int) int {
	if v := pickOverride(overrides, lane, row, func(o *models.CapacityOverride) *int { return o.Capacity }); v != nil {
		return *v
	}
	return cfg.DefaultCapacity
}

func resolveRowCount(cfg *models.ClusterConfig, overrides []*models.CapacityOverride, lane, row int) int {
	if v := pickOverride(overrides, lane, row, func(o *models.CapacityOverride) *int { return o.RowCount }); v != nil {
		return *v
	}
	return cfg.DefaultRowCount
}

// pickOverride returns the attribute from the most specific matching override:
// cell-specific beats lane-range, and among equals the narrower lane span wins.
func pickOverride(overrides []*models.CapacityOverride, lane, row int, attr func(*models.CapacityOverride) *int) *int {
	var best *models.CapacityOverride
	for _, ov := range overrides {
		if attr(ov) == nil || !ov.Matches(lane, row) {
			continue
		}
		if best == nil || moreSpecific(ov, best) {
			best = ov
		}
	}
	if best == nil {
		return nil
	}
	return attr(best)
}

func moreSpecific(a, b *models.CapacityOverride) bool {
	if a.CellSpecific() != b.CellSpecific() {
		return a.CellSpecific()
	}
	return a.LaneEnd-a.LaneStart < b.LaneEnd-b.LaneStart
}

func (s *layoutService) clusterConfig(ctx context.Context, warehouseID uuid.UUID, cluster string) (*models.ClusterConfig, error) {
	if cached, err := s.cacheSvc.GetClusterConfig(ctx, warehouseID, cluster); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for cluster %s: %v", cluster, err)
	}

	cfg, err := s.clusterRepo.GetByCluster(ctx, warehouseID, cluster)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheSvc.SetClusterConfig(ctx, cfg, layoutCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache cluster %s: %v", cluster, cacheErr)
	}
	return cfg, nil
}

func (s *layoutService) productHome(ctx context.Context, warehouseID, productID uuid.UUID) (*models.ProductHome, error) {
	if cached, err := s.cacheSvc.GetProductHome(ctx, warehouseID, productID); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for product home %s: %v", productID.String(), err)
	}

	home, err := s.homeRepo.GetByProduct(ctx, warehouseID, productID)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheSvc.SetProductHome(ctx, home, layoutCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache product home %s: %v", productID.String(), cacheErr)
	}
	return home, nil
}

func (s *layoutService) CapacityOf(ctx context.Context, warehouseID uuid.UUID, cluster string, lane, row int) (int, error) {
	cfg, err := s.clusterConfig(ctx, warehouseID, cluster)
	if err != nil {
		return 0, err
	}
	overrides, err := s.clusterRepo.ListOverrides(ctx, warehouseID, cluster)
	if err != nil {
		return 0, common.NewPersistenceError("list capacity overrides", err)
	}
	return resolveCapacity(cfg, overrides, lane, row), nil
}

func (s *layoutService) RowCountOf(ctx context.Context, warehouseID uuid.UUID, cluster string, lane, row int) (int, error) {
	cfg, err := s.clusterConfig(ctx, warehouseID, cluster)
	if err != nil {
		return 0, err
	}
	overrides, err := s.clusterRepo.ListOverrides(ctx, warehouseID, cluster)
	if err != nil {
		return 0, common.NewPersistenceError("list capacity overrides", err)
	}
	return resolveRowCount(cfg, overrides, lane, row), nil
}

func (s *layoutService) IsTransit(ctx context.Context, warehouseID uuid.UUID, cluster string, lane int) (bool, error) {
	cfg, err := s.clusterConfig(ctx, warehouseID, cluster)
	if err != nil {
		return false, err
	}
	return cfg.IsTransitLane(lane), nil
}

func (s *layoutService) ValidatePlacement(ctx context.Context, units repositories.StockUnitRepository, warehouseID, productID uuid.UUID, loc models.Location) error {
	cfg, err := s.clusterConfig(ctx, warehouseID, loc.Cluster)
	if errors.Is(err, repositories.ErrClusterNotFound) {
		return common.NewLocationError(loc.String(), fmt.Sprintf("cluster %s is not configured in this warehouse", loc.Cluster))
	}
	if err != nil {
		return common.NewPersistenceError("load cluster configuration", err)
	}

	overrides, err := s.clusterRepo.ListOverrides(ctx, warehouseID, loc.Cluster)
	if err != nil {
		return common.NewPersistenceError("list capacity overrides", err)
	}

	rowCount := resolveRowCount(cfg, overrides, loc.Lane, loc.Row)
	if loc.Row < 1 || loc.Row > rowCount {
		return common.NewLocationError(loc.String(),
			fmt.Sprintf("row %d does not exist in cluster %s lane %d (rows 1-%d)", loc.Row, loc.Cluster, loc.Lane, rowCount))
	}

	// Transit lanes buffer anything; home rules only bind regular cells.
	if !cfg.IsTransitLane(loc.Lane) {
		home, err := s.productHome(ctx, warehouseID, productID)
		if errors.Is(err, repositories.ErrProductHomeNotFound) {
			return common.NewLocationError(loc.String(), "product has no home location in this warehouse")
		}
		if err != nil {
			return common.NewPersistenceError("load product home", err)
		}
		if home.Cluster != loc.Cluster {
			return common.NewLocationError(loc.String(),
				fmt.Sprintf("product's home cluster is %s, not %s", home.Cluster, loc.Cluster))
		}
		if !home.Contains(loc.Lane, loc.Row) {
			return common.NewLocationError(loc.String(),
				fmt.Sprintf("lane %d row %d is outside the product's home range (lanes %d-%d, rows %d-%d)",
					loc.Lane, loc.Row, home.LaneStart, home.LaneEnd, home.RowStart, home.RowEnd))
		}

		productPallets, err := units.CountProductPalletsAtCell(ctx, warehouseID, productID, loc.Cluster, loc.Lane, loc.Row)
		if err != nil {
			return common.NewPersistenceError("count product pallets", err)
		}
		if productPallets >= home.MaxPallets {
			return common.NewLocationError(loc.String(),
				fmt.Sprintf("location already holds %d of the product's maximum %d pallets", productPallets, home.MaxPallets))
		}
	}

	capacity := resolveCapacity(cfg, overrides, loc.Lane, loc.Row)
	occupied, err := units.CountPalletsAtCell(ctx, warehouseID, loc.Cluster, loc.Lane, loc.Row)
	if err != nil {
		return common.NewPersistenceError("count pallets at cell", err)
	}
	if occupied >= capacity {
		return common.NewLocationError(loc.String(),
			fmt.Sprintf("cell is at capacity: %d of %d pallets occupied", occupied, capacity))
	}

	return nil
}
