package handlers

import (
	"net/http"

	"stockyard/internal/common"
	"stockyard/internal/models"
	"stockyard/internal/repositories"
	"stockyard/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StockHandlers serves the read side: stock unit listings, the movement ledger
// and placement dry runs.
type StockHandlers struct {
	stockRepo    repositories.StockUnitRepository
	movementRepo repositories.MovementRepository
	layout       services.LayoutService
	alloc        services.AllocationService
}

func NewStockHandlers(stockRepo repositories.StockUnitRepository, movementRepo repositories.MovementRepository, layout services.LayoutService, alloc services.AllocationService) *StockHandlers {
	return &StockHandlers{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		layout:       layout,
		alloc:        alloc,
	}
}

// ListStockUnitsRequest represents query parameters for listing stock units.
type ListStockUnitsRequest struct {
	WarehouseID string `query:"warehouse_id"`
	ProductID   string `query:"product_id"`
	Limit       int    `query:"limit"`
	Offset      int    `query:"offset"`
}

// ListStockUnits pages through a warehouse's stock, optionally filtered by product.
func (h *StockHandlers) ListStockUnits(c echo.Context) error {
	var req ListStockUnitsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "query", "Invalid query parameters")
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return common.SendValidationError(c, "warehouse_id", "Invalid warehouse ID format")
	}

	var productID *uuid.UUID
	if req.ProductID != "" {
		id, err := uuid.Parse(req.ProductID)
		if err != nil {
			return common.SendValidationError(c, "product_id", "Invalid product ID format")
		}
		productID = &id
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 200 {
		req.Limit = 200
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	units, err := h.stockRepo.List(c.Request().Context(), warehouseID, productID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list stock units")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"stock_units": units,
		"limit":       req.Limit,
		"offset":      req.Offset,
	})
}

// ListMovements returns the immutable ledger entries for a transaction code or
// a stock unit.
func (h *StockHandlers) ListMovements(c echo.Context) error {
	ctx := c.Request().Context()

	if code := c.QueryParam("transaction_code"); code != "" {
		movements, err := h.movementRepo.ListByTransaction(ctx, code)
		if err != nil {
			return common.SendServerError(c, "Failed to list movements")
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"movements": movements})
	}

	unitIDStr := c.QueryParam("stock_unit_id")
	if unitIDStr == "" {
		return common.SendValidationError(c, "query", "transaction_code or stock_unit_id is required")
	}
	unitID, err := uuid.Parse(unitIDStr)
	if err != nil {
		return common.SendValidationError(c, "stock_unit_id", "Invalid stock unit ID format")
	}

	movements, err := h.movementRepo.ListByStockUnit(ctx, unitID)
	if err != nil {
		return common.SendServerError(c, "Failed to list movements")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"movements": movements})
}

// ValidatePlacementRequest represents a placement dry-run payload.
type ValidatePlacementRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Location    models.Location `json:"location"`
}

// ValidatePlacement dry-runs the placement rules without writing anything, so
// the UI can reject a location before the receipt is submitted.
func (h *StockHandlers) ValidatePlacement(c echo.Context) error {
	var req ValidatePlacementRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	err := h.layout.ValidatePlacement(c.Request().Context(), h.stockRepo, req.WarehouseID, req.ProductID, req.Location)
	if err != nil {
		return common.SendEngineError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"valid":    true,
		"location": req.Location.String(),
	})
}

// PreviewAllocationRequest represents an allocation dry-run payload.
type PreviewAllocationRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
}

// PreviewAllocation plans an outbound without locking or consuming anything.
func (h *StockHandlers) PreviewAllocation(c echo.Context) error {
	var req PreviewAllocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	alloc, err := h.alloc.Allocate(c.Request().Context(), req.WarehouseID, req.ProductID, req.Quantity)
	if err != nil {
		return common.SendEngineError(c, err)
	}
	return c.JSON(http.StatusOK, alloc)
}
