package models

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptLine is one placement line of an inbound or field-return (NPL) receipt.
// Receh marks broken pallets coming back from the field; those units are created
// with the receh condition no matter what the base gate says.
type ReceiptLine struct {
	Location Location  `json:"location"`
	Quantity int       `json:"quantity"`
	Batch    string    `json:"batch"`
	Expiry   time.Time `json:"expiry"`
	Receh    bool      `json:"receh"`
}

// ReceiptRequest covers inbound receipts and NPL returns. BaseGate is the FEFO
// gate every created unit starts with.
type ReceiptRequest struct {
	WarehouseID uuid.UUID     `json:"warehouse_id"`
	ProductID   uuid.UUID     `json:"product_id"`
	BaseGate    string        `json:"base_gate"`
	Lines       []ReceiptLine `json:"lines"`
}

// ReceiptResult reports the committed receipt.
type ReceiptResult struct {
	Code  string            `json:"code"`
	Lines []TransactionLine `json:"lines"`
}

// OutboundRequest asks for a quantity of a product to be dispatched.
type OutboundRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
}

// OutboundResult reports the committed dispatch with its allocation detail.
type OutboundResult struct {
	Code  string            `json:"code"`
	Lines []TransactionLine `json:"lines"`
}

// PermutationRequest relocates one stock unit to a new location.
type PermutationRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	StockUnitID uuid.UUID `json:"stock_unit_id"`
	To          Location  `json:"to"`
}

// PermutationResult reports the committed relocation.
type PermutationResult struct {
	Code string   `json:"code"`
	From Location `json:"from"`
	To   Location `json:"to"`
}

// CancelResult reports an outbound cancellation: how many lines were merged back
// into surviving units versus re-created from the header snapshot.
type CancelResult struct {
	Code      string `json:"code"`
	Restored  int    `json:"restored"`
	Recreated int    `json:"recreated"`
}
