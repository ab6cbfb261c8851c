package handlers

import (
	"net/http"

	"stockyard/internal/common"
	"stockyard/internal/models"
	"stockyard/internal/services"

	"github.com/labstack/echo/v4"
)

// TransactionHandlers exposes the four warehouse transaction types plus
// outbound cancellation over HTTP.
type TransactionHandlers struct {
	txService services.TransactionService
}

func NewTransactionHandlers(txService services.TransactionService) *TransactionHandlers {
	return &TransactionHandlers{txService: txService}
}

// CreateInbound handles a supplier receipt.
func (h *TransactionHandlers) CreateInbound(c echo.Context) error {
	var req models.ReceiptRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	result, err := h.txService.Inbound(c.Request().Context(), &req)
	if err != nil {
		return common.SendEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// CreateNPLReturn handles a field return of sellable or broken pallets.
func (h *TransactionHandlers) CreateNPLReturn(c echo.Context) error {
	var req models.ReceiptRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	result, err := h.txService.NPLReturn(c.Request().Context(), &req)
	if err != nil {
		return common.SendEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// CreateOutbound handles a dispatch request; allocation is fully automatic.
func (h *TransactionHandlers) CreateOutbound(c echo.Context) error {
	var req models.OutboundRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	result, err := h.txService.Outbound(c.Request().Context(), &req)
	if err != nil {
		return common.SendEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// CancelOutbound reverses a committed dispatch by transaction code.
func (h *TransactionHandlers) CancelOutbound(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return common.SendValidationError(c, "code", "Transaction code is required")
	}

	result, err := h.txService.CancelOutbound(c.Request().Context(), code)
	if err != nil {
		return common.SendEngineError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreatePermutation relocates one stock unit inside the warehouse.
func (h *TransactionHandlers) CreatePermutation(c echo.Context) error {
	var req models.PermutationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	result, err := h.txService.Permutation(c.Request().Context(), &req)
	if err != nil {
		return common.SendEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}
