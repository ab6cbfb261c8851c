package models

import "github.com/google/uuid"

// AllocationLine is one consumed slice of a stock unit. Unit is the unit's state
// as queried, before consumption; Remaining is what stays on the unit afterwards.
type AllocationLine struct {
	Unit         *StockUnit `json:"unit"`
	Quantity     int        `json:"quantity"`
	Remaining    int        `json:"remaining"`
	ViolatesFefo bool       `json:"violates_fefo"`
}

// Allocation is the result of a successful FEFO allocation. The sum of line
// quantities always equals Requested.
type Allocation struct {
	WarehouseID uuid.UUID        `json:"warehouse_id"`
	ProductID   uuid.UUID        `json:"product_id"`
	Requested   int              `json:"requested"`
	Lines       []AllocationLine `json:"lines"`
}
