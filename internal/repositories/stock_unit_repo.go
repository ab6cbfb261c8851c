package repositories

import (
	"context"
	"errors"
	"time"

	"stockyard/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUnitNotFound is returned when a referenced stock unit no longer exists.
var ErrUnitNotFound = errors.New("stock unit not found")

type StockUnitRepository interface {
	Create(ctx context.Context, unit *models.StockUnit) error
	GetByID(ctx context.Context, warehouseID, id uuid.UUID) (*models.StockUnit, error)
	// AdjustQuantity applies delta and returns the new carton quantity.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (int, error)
	SetCondition(ctx context.Context, id uuid.UUID, condition string) error
	SetLocation(ctx context.Context, id uuid.UUID, loc models.Location) error
	// Delete removes a unit; callers only do this once its quantity reaches zero.
	Delete(ctx context.Context, id uuid.UUID) error
	// List pages through a warehouse's stock, optionally filtered by product.
	List(ctx context.Context, warehouseID uuid.UUID, productID *uuid.UUID, limit, offset int) ([]*models.StockUnit, error)
	// ListForAllocation returns allocation candidates in FEFO order: released
	// before held, batch key ascending, creation time ascending. Expired and
	// damaged units are excluded but stay in the ledger. With lock the rows are
	// selected FOR UPDATE so concurrent outbounds cannot consume the same unit.
	ListForAllocation(ctx context.Context, warehouseID, productID uuid.UUID, lock bool) ([]*models.StockUnit, error)
	// CountPalletsAtCell counts units occupying the cell (cluster, lane, row)
	// across all levels.
	CountPalletsAtCell(ctx context.Context, warehouseID uuid.UUID, cluster string, lane, row int) (int, error)
	CountProductPalletsAtCell(ctx context.Context, warehouseID, productID uuid.UUID, cluster string, lane, row int) (int, error)
	// FindLatestAt returns the most recently created unit of the product at the
	// exact location, used to merge a cancelled outbound line back in.
	FindLatestAt(ctx context.Context, warehouseID, productID uuid.UUID, loc models.Location) (*models.StockUnit, error)
	// MarkExpired flips units past their expiry date to the expired condition and
	// returns how many were touched.
	MarkExpired(ctx context.Context, asOf time.Time) (int64, error)
}

type stockUnitRepo struct {
	db Querier
}

func NewStockUnitRepo(db Querier) StockUnitRepository {
	return &stockUnitRepo{db: db}
}

const stockUnitColumns = `id, warehouse_id, product_id, batch, expiry_date, cluster, lane, row_no, level, cartons, condition, gate, created_at`

func scanStockUnit(row pgx.Row) (*models.StockUnit, error) {
	u := &models.StockUnit{}
	err := row.Scan(&u.ID, &u.WarehouseID, &u.ProductID, &u.Batch, &u.ExpiryDate,
		&u.Cluster, &u.Lane, &u.Row, &u.Level, &u.Cartons, &u.Condition, &u.Gate, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts the unit with an explicit created_at. Cancellation re-creates
// units with their original timestamp, so the column is never defaulted.
func (r *stockUnitRepo) Create(ctx context.Context, unit *models.StockUnit) error {
	query := `
		INSERT INTO stock_units (id, warehouse_id, product_id, batch, expiry_date, cluster, lane, row_no, level, cartons, condition, gate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query, unit.ID, unit.WarehouseID, unit.ProductID, unit.Batch,
		unit.ExpiryDate, unit.Cluster, unit.Lane, unit.Row, unit.Level, unit.Cartons,
		unit.Condition, unit.Gate, unit.CreatedAt)
	return err
}

func (r *stockUnitRepo) GetByID(ctx context.Context, warehouseID, id uuid.UUID) (*models.StockUnit, error) {
	query := `
		SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE warehouse_id = $1 AND id = $2
	`
	unit, err := scanStockUnit(r.db.QueryRow(ctx, query, warehouseID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (r *stockUnitRepo) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE stock_units
		SET cartons = cartons + $1
		WHERE id = $2
		RETURNING cartons
	`
	var newQty int
	err := r.db.QueryRow(ctx, query, delta, id).Scan(&newQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUnitNotFound
	}
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

func (r *stockUnitRepo) SetCondition(ctx context.Context, id uuid.UUID, condition string) error {
	query := `UPDATE stock_units SET condition = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, condition, id)
	return err
}

func (r *stockUnitRepo) SetLocation(ctx context.Context, id uuid.UUID, loc models.Location) error {
	query := `
		UPDATE stock_units
		SET cluster = $1, lane = $2, row_no = $3, level = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, loc.Cluster, loc.Lane, loc.Row, loc.Level, id)
	return err
}

func (r *stockUnitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM stock_units WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *stockUnitRepo) List(ctx context.Context, warehouseID uuid.UUID, productID *uuid.UUID, limit, offset int) ([]*models.StockUnit, error) {
	query := `
		SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE warehouse_id = $1 AND ($2::uuid IS NULL OR product_id = $2)
		ORDER BY cluster, lane, row_no, level, created_at
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, warehouseID, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.StockUnit
	for rows.Next() {
		u := &models.StockUnit{}
		if err := rows.Scan(&u.ID, &u.WarehouseID, &u.ProductID, &u.Batch, &u.ExpiryDate,
			&u.Cluster, &u.Lane, &u.Row, &u.Level, &u.Cartons, &u.Condition, &u.Gate, &u.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *stockUnitRepo) ListForAllocation(ctx context.Context, warehouseID, productID uuid.UUID, lock bool) ([]*models.StockUnit, error) {
	query := `
		SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE warehouse_id = $1 AND product_id = $2
		  AND condition NOT IN ('expired', 'damaged')
		ORDER BY CASE WHEN gate = 'release' THEN 0 ELSE 1 END, batch ASC, created_at ASC
	`
	if lock {
		query += ` FOR UPDATE`
	}
	rows, err := r.db.Query(ctx, query, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.StockUnit
	for rows.Next() {
		u := &models.StockUnit{}
		if err := rows.Scan(&u.ID, &u.WarehouseID, &u.ProductID, &u.Batch, &u.ExpiryDate,
			&u.Cluster, &u.Lane, &u.Row, &u.Level, &u.Cartons, &u.Condition, &u.Gate, &u.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *stockUnitRepo) CountPalletsAtCell(ctx context.Context, warehouseID uuid.UUID, cluster string, lane, row int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM stock_units
		WHERE warehouse_id = $1 AND cluster = $2 AND lane = $3 AND row_no = $4
	`
	var count int
	if err := r.db.QueryRow(ctx, query, warehouseID, cluster, lane, row).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *stockUnitRepo) CountProductPalletsAtCell(ctx context.Context, warehouseID, productID uuid.UUID, cluster string, lane, row int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM stock_units
		WHERE warehouse_id = $1 AND product_id = $2 AND cluster = $3 AND lane = $4 AND row_no = $5
	`
	var count int
	if err := r.db.QueryRow(ctx, query, warehouseID, productID, cluster, lane, row).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *stockUnitRepo) FindLatestAt(ctx context.Context, warehouseID, productID uuid.UUID, loc models.Location) (*models.StockUnit, error) {
	query := `
		SELECT ` + stockUnitColumns + `
		FROM stock_units
		WHERE warehouse_id = $1 AND product_id = $2
		  AND cluster = $3 AND lane = $4 AND row_no = $5 AND level = $6
		ORDER BY created_at DESC
		LIMIT 1
	`
	unit, err := scanStockUnit(r.db.QueryRow(ctx, query, warehouseID, productID,
		loc.Cluster, loc.Lane, loc.Row, loc.Level))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (r *stockUnitRepo) MarkExpired(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE stock_units
		SET condition = 'expired'
		WHERE expiry_date < $1 AND condition NOT IN ('expired', 'damaged')
	`
	tag, err := r.db.Exec(ctx, query, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
