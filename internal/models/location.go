package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Location addresses a single pallet slot: cluster -> lane -> row -> level.
// Capacity and product-home rules are keyed on the cell (cluster, lane, row);
// levels are the pallet positions inside a cell.
type Location struct {
	Cluster string `json:"cluster"`
	Lane    int    `json:"lane"`
	Row     int    `json:"row"`
	Level   int    `json:"level"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s-%02d-%02d-%d", l.Cluster, l.Lane, l.Row, l.Level)
}

// Cell drops the level, identifying the capacity-bearing cell.
func (l Location) Cell() string {
	return fmt.Sprintf("%s-%02d-%02d", l.Cluster, l.Lane, l.Row)
}

// ClusterConfig holds the per-cluster defaults. TransitLanes lists lanes that act
// as buffer cells accepting any product regardless of home rules.
type ClusterConfig struct {
	ID              uuid.UUID `json:"id"`
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	Cluster         string    `json:"cluster"`
	DefaultCapacity int       `json:"default_capacity"`
	DefaultRowCount int       `json:"default_row_count"`
	TransitLanes    []int32   `json:"transit_lanes"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsTransitLane reports whether the lane is a transit buffer in this cluster.
func (c *ClusterConfig) IsTransitLane(lane int) bool {
	for _, l := range c.TransitLanes {
		if int(l) == lane {
			return true
		}
	}
	return false
}

// CapacityOverride narrows the cluster defaults for a lane range, optionally down
// to a row range. A nil RowStart/RowEnd means the override applies to the whole
// lane range; setting them makes it cell-specific and therefore more specific.
// Capacity and RowCount are resolved independently: an override only wins the
// attributes it actually sets.
type CapacityOverride struct {
	ID          uuid.UUID `json:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Cluster     string    `json:"cluster"`
	LaneStart   int       `json:"lane_start"`
	LaneEnd     int       `json:"lane_end"`
	RowStart    *int      `json:"row_start,omitempty"`
	RowEnd      *int      `json:"row_end,omitempty"`
	Capacity    *int      `json:"capacity,omitempty"`
	RowCount    *int      `json:"row_count,omitempty"`
}

// Matches reports whether the override covers the given lane and row.
func (o *CapacityOverride) Matches(lane, row int) bool {
	if lane < o.LaneStart || lane > o.LaneEnd {
		return false
	}
	if o.RowStart != nil && o.RowEnd != nil {
		return row >= *o.RowStart && row <= *o.RowEnd
	}
	return true
}

// CellSpecific reports whether the override carries a row range.
func (o *CapacityOverride) CellSpecific() bool {
	return o.RowStart != nil && o.RowEnd != nil
}

// ProductHome maps a product to its allowed cluster plus inclusive lane and row
// ranges, and caps how many pallets of the product may share one location.
type ProductHome struct {
	ID          uuid.UUID `json:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Cluster     string    `json:"cluster"`
	LaneStart   int       `json:"lane_start"`
	LaneEnd     int       `json:"lane_end"`
	RowStart    int       `json:"row_start"`
	RowEnd      int       `json:"row_end"`
	MaxPallets  int       `json:"max_pallets"`
}

// Contains reports whether the lane and row fall inside the home ranges.
func (h *ProductHome) Contains(lane, row int) bool {
	return lane >= h.LaneStart && lane <= h.LaneEnd &&
		row >= h.RowStart && row <= h.RowEnd
}
