package handlers

import (
	"log"
	"net/http"

	"stockyard/internal/caching"
	"stockyard/internal/common"
	"stockyard/internal/models"
	"stockyard/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LayoutHandlers administers the layout master data: cluster configurations,
// capacity overrides and product homes. Writes invalidate the layout cache so
// placement checks see fresh rules.
type LayoutHandlers struct {
	clusterRepo repositories.ClusterConfigRepository
	homeRepo    repositories.ProductHomeRepository
	cacheSvc    caching.CacheService
}

func NewLayoutHandlers(clusterRepo repositories.ClusterConfigRepository, homeRepo repositories.ProductHomeRepository, cacheSvc caching.CacheService) *LayoutHandlers {
	return &LayoutHandlers{
		clusterRepo: clusterRepo,
		homeRepo:    homeRepo,
		cacheSvc:    cacheSvc,
	}
}

// CreateCluster registers a cluster with its defaults and transit lanes.
func (h *LayoutHandlers) CreateCluster(c echo.Context) error {
	var cfg models.ClusterConfig
	if err := c.Bind(&cfg); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if cfg.Cluster == "" {
		return common.SendValidationError(c, "cluster", "Cluster name is required")
	}
	if cfg.DefaultCapacity <= 0 || cfg.DefaultRowCount <= 0 {
		return common.SendValidationError(c, "defaults", "Capacity and row count must be positive")
	}
	cfg.ID = uuid.New()

	if err := h.clusterRepo.Create(c.Request().Context(), &cfg); err != nil {
		return common.SendServerError(c, "Failed to create cluster configuration")
	}
	if err := h.cacheSvc.DeleteClusterConfig(c.Request().Context(), cfg.WarehouseID, cfg.Cluster); err != nil {
		log.Printf("Failed to invalidate cluster cache for %s: %v", cfg.Cluster, err)
	}
	return c.JSON(http.StatusCreated, cfg)
}

// ListClusters returns a warehouse's cluster configurations.
func (h *LayoutHandlers) ListClusters(c echo.Context) error {
	warehouseID, err := uuid.Parse(c.QueryParam("warehouse_id"))
	if err != nil {
		return common.SendValidationError(c, "warehouse_id", "Invalid warehouse ID format")
	}

	configs, err := h.clusterRepo.List(c.Request().Context(), warehouseID)
	if err != nil {
		return common.SendServerError(c, "Failed to list cluster configurations")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"clusters": configs})
}

// CreateOverride narrows a cluster's capacity or row count for a lane range,
// optionally down to a row range.
func (h *LayoutHandlers) CreateOverride(c echo.Context) error {
	var ov models.CapacityOverride
	if err := c.Bind(&ov); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if ov.Cluster == "" {
		return common.SendValidationError(c, "cluster", "Cluster name is required")
	}
	if ov.LaneStart < 1 || ov.LaneEnd < ov.LaneStart {
		return common.SendValidationError(c, "lanes", "Lane range is invalid")
	}
	if ov.Capacity == nil && ov.RowCount == nil {
		return common.SendValidationError(c, "override", "At least one of capacity or row_count must be set")
	}
	ov.ID = uuid.New()

	if err := h.clusterRepo.CreateOverride(c.Request().Context(), &ov); err != nil {
		return common.SendServerError(c, "Failed to create capacity override")
	}
	if err := h.cacheSvc.DeleteClusterConfig(c.Request().Context(), ov.WarehouseID, ov.Cluster); err != nil {
		log.Printf("Failed to invalidate cluster cache for %s: %v", ov.Cluster, err)
	}
	return c.JSON(http.StatusCreated, ov)
}

// SetProductHome creates or replaces a product's home location rules.
func (h *LayoutHandlers) SetProductHome(c echo.Context) error {
	var home models.ProductHome
	if err := c.Bind(&home); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}
	if home.Cluster == "" {
		return common.SendValidationError(c, "cluster", "Cluster name is required")
	}
	if home.MaxPallets <= 0 {
		return common.SendValidationError(c, "max_pallets", "Maximum pallets must be positive")
	}
	home.ID = uuid.New()

	if err := h.homeRepo.Create(c.Request().Context(), &home); err != nil {
		return common.SendServerError(c, "Failed to save product home")
	}
	if err := h.cacheSvc.DeleteProductHome(c.Request().Context(), home.WarehouseID, home.ProductID); err != nil {
		log.Printf("Failed to invalidate product home cache for %s: %v", home.ProductID.String(), err)
	}
	return c.JSON(http.StatusCreated, home)
}

// FlushCache drops every cached layout entry for a warehouse. Useful after
// bulk master-data imports done outside the API.
func (h *LayoutHandlers) FlushCache(c echo.Context) error {
	warehouseID, err := uuid.Parse(c.QueryParam("warehouse_id"))
	if err != nil {
		return common.SendValidationError(c, "warehouse_id", "Invalid warehouse ID format")
	}

	if err := h.cacheSvc.InvalidateWarehouse(c.Request().Context(), warehouseID); err != nil {
		return common.SendServerError(c, "Failed to invalidate warehouse cache")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Cache invalidated"})
}

// ListProductHomes pages through a warehouse's product home rules.
func (h *LayoutHandlers) ListProductHomes(c echo.Context) error {
	warehouseID, err := uuid.Parse(c.QueryParam("warehouse_id"))
	if err != nil {
		return common.SendValidationError(c, "warehouse_id", "Invalid warehouse ID format")
	}

	homes, err := h.homeRepo.List(c.Request().Context(), warehouseID, 100, 0)
	if err != nil {
		return common.SendServerError(c, "Failed to list product homes")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"product_homes": homes})
}
