package models

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. One row is appended for every quantity or location change;
// rows are never edited or deleted.
const (
	MovementInbound        = "inbound"
	MovementOutbound       = "outbound"
	MovementNPL            = "npl"
	MovementPermutation    = "permutation"
	MovementCancelOutbound = "cancel_outbound"
)

// Movement is one immutable ledger entry. The invariant over a stock unit's
// lifetime: sum of deltas equals current quantity minus creation quantity.
type Movement struct {
	ID              uuid.UUID `json:"id"`
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	StockUnitID     uuid.UUID `json:"stock_unit_id"`
	Type            string    `json:"type"`
	QuantityBefore  int       `json:"quantity_before"`
	QuantityDelta   int       `json:"quantity_delta"`
	QuantityAfter   int       `json:"quantity_after"`
	FromLocation    *string   `json:"from_location,omitempty"`
	ToLocation      *string   `json:"to_location,omitempty"`
	TransactionCode string    `json:"transaction_code"`
	Actor           uuid.UUID `json:"actor"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
