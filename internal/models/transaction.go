package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types and their code prefixes.
const (
	TransactionInbound     = "inbound"
	TransactionOutbound    = "outbound"
	TransactionNPL         = "npl"
	TransactionPermutation = "permutation"
)

// CodePrefix returns the transaction-code prefix for a transaction type.
func CodePrefix(txType string) string {
	switch txType {
	case TransactionInbound:
		return "INB"
	case TransactionOutbound:
		return "OUT"
	case TransactionNPL:
		return "NPL"
	case TransactionPermutation:
		return "PMT"
	}
	return ""
}

// Transaction statuses. Transitions are linear: draft -> validated -> committed.
// Cancellation hard-deletes a committed header and leaves compensating movements
// plus an audit entry behind.
const (
	StatusDraft     = "draft"
	StatusValidated = "validated"
	StatusCommitted = "committed"
)

// TransactionLine is one location allocation inside a transaction header. For
// outbound lines it snapshots the consumed unit's state at allocation time
// (condition, gate, creation timestamp, batch, expiry) so cancellation can
// restore the unit without disturbing FEFO ordering.
type TransactionLine struct {
	StockUnitID   uuid.UUID `json:"stock_unit_id"`
	Cluster       string    `json:"cluster"`
	Lane          int       `json:"lane"`
	Row           int       `json:"row"`
	Level         int       `json:"level"`
	Quantity      int       `json:"quantity"`
	Batch         string    `json:"batch"`
	Expiry        time.Time `json:"expiry"`
	Condition     string    `json:"condition"`
	Gate          string    `json:"gate"`
	UnitCreatedAt time.Time `json:"unit_created_at"`
	ViolatesFefo  bool      `json:"violates_fefo"`
}

// Location assembles the line's physical address.
func (l *TransactionLine) Location() Location {
	return Location{Cluster: l.Cluster, Lane: l.Lane, Row: l.Row, Level: l.Level}
}

// TransactionRecord is the header of one logical warehouse transaction, with its
// generated human-readable code and the location allocations it produced.
type TransactionRecord struct {
	ID          uuid.UUID         `json:"id"`
	Code        string            `json:"code"`
	Type        string            `json:"type"`
	Status      string            `json:"status"`
	WarehouseID uuid.UUID         `json:"warehouse_id"`
	ProductID   uuid.UUID         `json:"product_id"`
	Lines       []TransactionLine `json:"lines"`
	CreatedBy   uuid.UUID         `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
}
