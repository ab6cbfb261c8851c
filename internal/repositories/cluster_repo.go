package repositories

import (
	"context"
	"errors"

	"stockyard/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrClusterNotFound is returned for placements into an unconfigured cluster.
var ErrClusterNotFound = errors.New("cluster configuration not found")

type ClusterConfigRepository interface {
	Create(ctx context.Context, cfg *models.ClusterConfig) error
	GetByCluster(ctx context.Context, warehouseID uuid.UUID, cluster string) (*models.ClusterConfig, error)
	List(ctx context.Context, warehouseID uuid.UUID) ([]*models.ClusterConfig, error)
	ListOverrides(ctx context.Context, warehouseID uuid.UUID, cluster string) ([]*models.CapacityOverride, error)
	CreateOverride(ctx context.Context, ov *models.CapacityOverride) error
}

type clusterConfigRepo struct {
	db Querier
}

func NewClusterConfigRepo(db Querier) ClusterConfigRepository {
	return &clusterConfigRepo{db: db}
}

func (r *clusterConfigRepo) Create(ctx context.Context, cfg *models.ClusterConfig) error {
	query := `
		INSERT INTO cluster_configs (id, warehouse_id, cluster, default_capacity, default_row_count, transit_lanes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, cfg.ID, cfg.WarehouseID, cfg.Cluster,
		cfg.DefaultCapacity, cfg.DefaultRowCount, cfg.TransitLanes)
	return err
}

func (r *clusterConfigRepo) GetByCluster(ctx context.Context, warehouseID uuid.UUID, cluster string) (*models.ClusterConfig, error) {
	query := `
		SELECT id, warehouse_id, cluster, default_capacity, default_row_count, transit_lanes, created_at
		FROM cluster_configs
		WHERE warehouse_id = $1 AND cluster = $2
	`
	cfg := &models.ClusterConfig{}
	err := r.db.QueryRow(ctx, query, warehouseID, cluster).Scan(&cfg.ID, &cfg.WarehouseID,
		&cfg.Cluster, &cfg.DefaultCapacity, &cfg.DefaultRowCount, &cfg.TransitLanes, &cfg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrClusterNotFound
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *clusterConfigRepo) List(ctx context.Context, warehouseID uuid.UUID) ([]*models.ClusterConfig, error) {
	query := `
		SELECT id, warehouse_id, cluster, default_capacity, default_row_count, transit_lanes, created_at
		FROM cluster_configs
		WHERE warehouse_id = $1
		ORDER BY cluster
	`
	rows, err := r.db.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.ClusterConfig
	for rows.Next() {
		cfg := &models.ClusterConfig{}
		if err := rows.Scan(&cfg.ID, &cfg.WarehouseID, &cfg.Cluster,
			&cfg.DefaultCapacity, &cfg.DefaultRowCount, &cfg.TransitLanes, &cfg.CreatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (r *clusterConfigRepo) ListOverrides(ctx context.Context, warehouseID uuid.UUID, cluster string) ([]*models.CapacityOverride, error) {
	query := `
		SELECT id, warehouse_id, cluster, lane_start, lane_end, row_start, row_end, capacity, row_count
		FROM capacity_overrides
		WHERE warehouse_id = $1 AND cluster = $2
	`
	rows, err := r.db.Query(ctx, query, warehouseID, cluster)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []*models.CapacityOverride
	for rows.Next() {
		ov := &models.CapacityOverride{}
		if err := rows.Scan(&ov.ID, &ov.WarehouseID, &ov.Cluster,
			&ov.LaneStart, &ov.LaneEnd, &ov.RowStart, &ov.RowEnd, &ov.Capacity, &ov.RowCount); err != nil {
			return nil, err
		}
		overrides = append(overrides, ov)
	}
	return overrides, rows.Err()
}

func (r *clusterConfigRepo) CreateOverride(ctx context.Context, ov *models.CapacityOverride) error {
	query := `
		INSERT INTO capacity_overrides (id, warehouse_id, cluster, lane_start, lane_end, row_start, row_end, capacity, row_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, ov.ID, ov.WarehouseID, ov.Cluster,
		ov.LaneStart, ov.LaneEnd, ov.RowStart, ov.RowEnd, ov.Capacity, ov.RowCount)
	return err
}
