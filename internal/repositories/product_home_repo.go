package repositories

import (
	"context"
	"errors"

	"stockyard/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrProductHomeNotFound is returned when a product has no home configured in a
// warehouse.
var ErrProductHomeNotFound = errors.New("product home not found")

type ProductHomeRepository interface {
	Create(ctx context.Context, home *models.ProductHome) error
	GetByProduct(ctx context.Context, warehouseID, productID uuid.UUID) (*models.ProductHome, error)
	List(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.ProductHome, error)
}

type productHomeRepo struct {
	db Querier
}

func NewProductHomeRepo(db Querier) ProductHomeRepository {
	return &productHomeRepo{db: db}
}

func (r *productHomeRepo) Create(ctx context.Context, home *models.ProductHome) error {
	query := `
		INSERT INTO product_homes (id, warehouse_id, product_id, cluster, lane_start, lane_end, row_start, row_end, max_pallets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (warehouse_id, product_id) DO UPDATE
		SET cluster = EXCLUDED.cluster, lane_start = EXCLUDED.lane_start, lane_end = EXCLUDED.lane_end,
		    row_start = EXCLUDED.row_start, row_end = EXCLUDED.row_end, max_pallets = EXCLUDED.max_pallets
	`
	_, err := r.db.Exec(ctx, query, home.ID, home.WarehouseID, home.ProductID, home.Cluster,
		home.LaneStart, home.LaneEnd, home.RowStart, home.RowEnd, home.MaxPallets)
	return err
}

func (r *productHomeRepo) GetByProduct(ctx context.Context, warehouseID, productID uuid.UUID) (*models.ProductHome, error) {
	query := `
		SELECT id, warehouse_id, product_id, cluster, lane_start, lane_end, row_start, row_end, max_pallets
		FROM product_homes
		WHERE warehouse_id = $1 AND product_id = $2
	`
	home := &models.ProductHome{}
	err := r.db.QueryRow(ctx, query, warehouseID, productID).Scan(&home.ID, &home.WarehouseID,
		&home.ProductID, &home.Cluster, &home.LaneStart, &home.LaneEnd,
		&home.RowStart, &home.RowEnd, &home.MaxPallets)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductHomeNotFound
	}
	if err != nil {
		return nil, err
	}
	return home, nil
}

func (r *productHomeRepo) List(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.ProductHome, error) {
	query := `
		SELECT id, warehouse_id, product_id, cluster, lane_start, lane_end, row_start, row_end, max_pallets
		FROM product_homes
		WHERE warehouse_id = $1
		ORDER BY cluster, lane_start
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var homes []*models.ProductHome
	for rows.Next() {
		home := &models.ProductHome{}
		if err := rows.Scan(&home.ID, &home.WarehouseID, &home.ProductID, &home.Cluster,
			&home.LaneStart, &home.LaneEnd, &home.RowStart, &home.RowEnd, &home.MaxPallets); err != nil {
			return nil, err
		}
		homes = append(homes, home)
	}
	return homes, rows.Err()
}
