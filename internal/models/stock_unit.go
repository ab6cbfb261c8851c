package models

import (
	"time"

	"github.com/google/uuid"
)

// Physical-condition statuses of a stock unit.
const (
	ConditionNormal       = "normal"
	ConditionReceh        = "receh" // broken/partial pallet after a non-exhausting withdrawal
	ConditionWrongCluster = "wrong-cluster"
	ConditionExpired      = "expired"
	ConditionDamaged      = "damaged"
)

// FEFO gate statuses. Released units are eligible before held ones regardless of
// batch order.
const (
	GateHold    = "hold"
	GateRelease = "release"
)

// SpecialCondition reports whether the condition survives a partial outbound
// withdrawal. Anything else flips to receh once the pallet is broken.
func SpecialCondition(condition string) bool {
	switch condition {
	case ConditionWrongCluster, ConditionExpired, ConditionDamaged:
		return true
	}
	return false
}

// ValidGate reports whether g is a known FEFO gate value.
func ValidGate(g string) bool {
	return g == GateHold || g == GateRelease
}

// StockUnit is one pallet of one product and batch at one physical location.
// Batch is the date-coded lot key ("BB"); its lexicographic order is its
// chronological order, which makes the FEFO sort a plain string comparison.
type StockUnit struct {
	ID          uuid.UUID `json:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Batch       string    `json:"batch"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Cluster     string    `json:"cluster"`
	Lane        int       `json:"lane"`
	Row         int       `json:"row"`
	Level       int       `json:"level"`
	Cartons     int       `json:"cartons"`
	Condition   string    `json:"condition"`
	Gate        string    `json:"gate"`
	CreatedAt   time.Time `json:"created_at"`
}

// Location assembles the unit's physical address.
func (u *StockUnit) Location() Location {
	return Location{Cluster: u.Cluster, Lane: u.Lane, Row: u.Row, Level: u.Level}
}
