package services

import (
	"context"
	"testing"
	"time"

	"stockyard/internal/caching"
	"stockyard/internal/common"
	"stockyard/internal/models"
	"stockyard/internal/repositories"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopCache always misses so layout tests exercise the repository path.
type noopCache struct{}

func (noopCache) GetClusterConfig(context.Context, uuid.UUID, string) (*models.ClusterConfig, error) {
	return nil, nil
}
func (noopCache) SetClusterConfig(context.Context, *models.ClusterConfig, time.Duration) error {
	return nil
}
func (noopCache) DeleteClusterConfig(context.Context, uuid.UUID, string) error { return nil }
func (noopCache) GetProductHome(context.Context, uuid.UUID, uuid.UUID) (*models.ProductHome, error) {
	return nil, nil
}
func (noopCache) SetProductHome(context.Context, *models.ProductHome, time.Duration) error {
	return nil
}
func (noopCache) DeleteProductHome(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (noopCache) InvalidateWarehouse(context.Context, uuid.UUID) error          { return nil }
func (noopCache) Ping(context.Context) error                                    { return nil }

var _ caching.CacheService = noopCache{}

func intPtr(v int) *int { return &v }

func TestResolveCapacity_Cascade(t *testing.T) {
	cfg := &models.ClusterConfig{DefaultCapacity: 4, DefaultRowCount: 10}

	laneOverride := &models.CapacityOverride{
		LaneStart: 1, LaneEnd: 5,
		Capacity: intPtr(6),
	}
	cellOverride := &models.CapacityOverride{
		LaneStart: 2, LaneEnd: 2,
		RowStart: intPtr(3), RowEnd: intPtr(3),
		Capacity: intPtr(2),
	}
	overrides := []*models.CapacityOverride{laneOverride, cellOverride}

	tests := []struct {
		name string
		lane int
		row  int
		want int
	}{
		{"cluster default outside lane range", 9, 1, 4},
		{"lane override applies", 3, 1, 6},
		{"cell override beats lane override", 2, 3, 2},
		{"cell override only for its row", 2, 4, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveCapacity(cfg, overrides, tt.lane, tt.row))
		})
	}
}

func TestResolveCapacity_NarrowerLaneSpanWins(t *testing.T) {
	cfg := &models.ClusterConfig{DefaultCapacity: 4}
	wide := &models.CapacityOverride{LaneStart: 1, LaneEnd: 10, Capacity: intPtr(8)}
	narrow := &models.CapacityOverride{LaneStart: 4, LaneEnd: 5, Capacity: intPtr(3)}

	got := resolveCapacity(cfg, []*models.CapacityOverride{wide, narrow}, 4, 1)
	assert.Equal(t, 3, got)
}

func TestResolveCapacity_OverrideWithoutCapacityIsSkipped(t *testing.T) {
	cfg := &models.ClusterConfig{DefaultCapacity: 4, DefaultRowCount: 10}
	rowCountOnly := &models.CapacityOverride{
		LaneStart: 1, LaneEnd: 3,
		RowCount: intPtr(20),
	}
	overrides := []*models.CapacityOverride{rowCountOnly}

	// The override sets row count only, so capacity falls back to the default
	// while row count resolution picks it up.
	assert.Equal(t, 4, resolveCapacity(cfg, overrides, 2, 1))
	assert.Equal(t, 20, resolveRowCount(cfg, overrides, 2, 1))
}

func TestResolveRowCount_Default(t *testing.T) {
	cfg := &models.ClusterConfig{DefaultRowCount: 12}
	assert.Equal(t, 12, resolveRowCount(cfg, nil, 1, 1))
}

func newLayoutFixture(t *testing.T) (pgxmock.PgxPoolIface, LayoutService, repositories.StockUnitRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	svc := NewLayoutService(
		repositories.NewClusterConfigRepo(mock),
		repositories.NewProductHomeRepo(mock),
		noopCache{},
	)
	return mock, svc, repositories.NewStockUnitRepo(mock)
}

func clusterConfigRows(warehouseID uuid.UUID, cluster string, capacity, rowCount int, transitLanes []int32) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "warehouse_id", "cluster", "default_capacity",
		"default_row_count", "transit_lanes", "created_at"}).
		AddRow(uuid.New(), warehouseID, cluster, capacity, rowCount, transitLanes, time.Now())
}

func emptyOverrideRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "warehouse_id", "cluster", "lane_start", "lane_end",
		"row_start", "row_end", "capacity", "row_count"})
}

func homeRows(warehouseID, productID uuid.UUID, cluster string, laneStart, laneEnd, rowStart, rowEnd, maxPallets int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "warehouse_id", "product_id", "cluster", "lane_start",
		"lane_end", "row_start", "row_end", "max_pallets"}).
		AddRow(uuid.New(), warehouseID, productID, cluster, laneStart, laneEnd, rowStart, rowEnd, maxPallets)
}

func TestValidatePlacement_UnknownCluster(t *testing.T) {
	mock, svc, units := newLayoutFixture(t)
	warehouseID := uuid.New()

	mock.ExpectQuery(`FROM cluster_configs`).
		WithArgs(warehouseID, "Z").
		WillReturnRows(pgxmock.NewRows([]string{"id", "warehouse_id", "cluster", "default_capacity",
			"default_row_count", "transit_lanes", "created_at"}))

	err := svc.ValidatePlacement(context.Background(), units, warehouseID, uuid.New(),
		models.Location{Cluster: "Z", Lane: 1, Row: 1, Level: 1})

	var locationErr *common.LocationError
	require.ErrorAs(t, err, &locationErr)
	assert.Contains(t, locationErr.Rule, "not configured")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePlacement_RowOutOfRange(t *testing.T) {
	mock, svc, units := newLayoutFixture(t)
	warehouseID := uuid.New()

	mock.ExpectQuery(`FROM cluster_configs`).
		WithArgs(warehouseID, "A").
		WillReturnRows(clusterConfigRows(warehouseID, "A", 4, 10, nil))
	mock.ExpectQuery(`FROM capacity_overrides`).
		WithArgs(warehouseID, "A").
		WillReturnRows(emptyOverrideRows())

	err := svc.ValidatePlacement(context.Background(), units, warehouseID, uuid.New(),
		models.Location{Cluster: "A", Lane: 1, Row: 11, Level: 1})

	var locationErr *common.LocationError
	require.ErrorAs(t, err, &locationErr)
	assert.Contains(t, locationErr.Rule, "row 11 does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePlacement_TransitLaneBypassesHomeRules(t *testing.T) {
	mock, svc, units := newLayoutFixture(t)
	warehouseID := uuid.New()

	// Lane 9 is transit: no product home lookup happens, only occupancy.
	mock.ExpectQuery(`FROM cluster_configs`).
		WithArgs(warehouseID, "A").
		WillReturnRows(clusterConfigRows(warehouseID, "A", 4, 10, []int32{9}))
	mock.ExpectQuery(`FROM capacity_overrides`).
		WithArgs(warehouseID, "A").
		WillReturnRows(emptyOverrideRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(warehouseID, "A", 9, 3).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	err := svc.ValidatePlacement(context.Background(), units, warehouseID, uuid.New(),
		models.Location{Cluster: "A", Lane: 9, Row: 3, Level: 1})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePlacement_WrongHomeCluster(t *testing.T) {
	mock, svc, units := newLayoutFixture(t)
	warehouseID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`FROM cluster_configs`).
		WithArgs(warehouseID, "B").
		WillReturnRows(clusterConfigRows(warehouseID, "B", 4, 10, nil))
	mock.ExpectQuery(`FROM capacity_overrides`).
		WithArgs(warehouseID, "B").
		WillReturnRows(emptyOverrideRows())
	mock.ExpectQuery(`FROM product_homes`).
		WithArgs(warehouseID, productID).
		WillReturnRows(homeRows(warehouseID, productID, "A", 1, 5, 1, 10, 3))

	err := svc.ValidatePlacement(context.Background(), units, warehouseID, productID,
		models.Location{Cluster: "B", Lane: 2, Row: 2, Level: 1})

	var locationErr *common.LocationError
	require.ErrorAs(t, err, &locationErr)
	assert.Contains(t, locationErr.Rule, "home cluster is A")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePlacement_OutsideHomeRange(t *testing.T) {
	mock, svc, units := newLayoutFixture(t)
	warehouseID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`FROM cluster_configs`).
		WithArgs(warehouseID, "A").
		WillReturnRows(clusterConfigRows(warehouseID, "A", 4, 10, nil))
	mock.ExpectQuery(`FROM capacity_overrides`).
		WithArgs(warehouseID, "A").
		WillReturnRows(emptyOverrideRows())
	mock.ExpectQuery(`FROM product_homes`).
		WithArgs(warehouseID, productID).
		WillReturnRows(homeRows(warehouseID, productID, "A", 1, 3, 1, 5, 3))

	err := svc.ValidatePlacement(context.Background(), units, warehouseID, productID,
		models.Location{Cluster: "A", Lane: 4, Row: 2, Level: 1})

	var locationErr *common.LocationError
	require.ErrorAs(t, err, &locationErr)
	assert.Contains(t, locationErr.Rule, "outside the product's home range")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePlacement_CellAtCapacity(t *testing.T) {
	mock, svc, units := newLayoutFixture(t)
	warehouseID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`FROM cluster_configs`).
		WithArgs(warehouseID, "A").
		WillReturnRows(clusterConfigRows(warehouseID, "A", 2, 10, nil))
	mock.ExpectQuery(`FROM capacity_overrides`).
		WithArgs(warehouseID, "A").
		WillReturnRows(emptyOverrideRows())
	mock.ExpectQuery(`FROM product_homes`).
		WithArgs(warehouseID, productID).
		WillReturnRows(homeRows(warehouseID, productID, "A", 1, 5, 1, 10, 5))
	// Product pallet count at the cell, then total occupancy.
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(warehouseID, productID, "A", 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(warehouseID, "A", 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	err := svc.ValidatePlacement(context.Background(), units, warehouseID, productID,
		models.Location{Cluster: "A", Lane: 2, Row: 2, Level: 1})

	var locationErr *common.LocationError
	require.ErrorAs(t, err, &locationErr)
	assert.Contains(t, locationErr.Rule, "at capacity")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePlacement_Accepts(t *testing.T) {
	mock, svc, units := newLayoutFixture(t)
	warehouseID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`FROM cluster_configs`).
		WithArgs(warehouseID, "A").
		WillReturnRows(clusterConfigRows(warehouseID, "A", 4, 10, nil))
	mock.ExpectQuery(`FROM capacity_overrides`).
		WithArgs(warehouseID, "A").
		WillReturnRows(emptyOverrideRows())
	mock.ExpectQuery(`FROM product_homes`).
		WithArgs(warehouseID, productID).
		WillReturnRows(homeRows(warehouseID, productID, "A", 1, 5, 1, 10, 3))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(warehouseID, productID, "A", 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(warehouseID, "A", 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	err := svc.ValidatePlacement(context.Background(), units, warehouseID, productID,
		models.Location{Cluster: "A", Lane: 2, Row: 2, Level: 1})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
