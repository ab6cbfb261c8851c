package repositories

import (
	"context"

	"stockyard/internal/models"

	"github.com/google/uuid"
)

// MovementRepository is append-only: movements are never edited or deleted, so
// the interface deliberately has no update or delete methods.
type MovementRepository interface {
	Append(ctx context.Context, movement *models.Movement) error
	ListByTransaction(ctx context.Context, code string) ([]*models.Movement, error)
	ListByStockUnit(ctx context.Context, stockUnitID uuid.UUID) ([]*models.Movement, error)
	// MaxSequenceForDay scans movement codes for the day's highest numeric
	// suffix. Cancelled outbound headers are hard-deleted but their movements
	// survive, so the day's high-water mark is never reused.
	MaxSequenceForDay(ctx context.Context, prefix, day string) (int, error)
}

type movementRepo struct {
	db Querier
}

func NewMovementRepo(db Querier) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) Append(ctx context.Context, m *models.Movement) error {
	query := `
		INSERT INTO movements (id, warehouse_id, stock_unit_id, type, quantity_before, quantity_delta, quantity_after, from_location, to_location, transaction_code, actor, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.WarehouseID, m.StockUnitID, m.Type,
		m.QuantityBefore, m.QuantityDelta, m.QuantityAfter, m.FromLocation, m.ToLocation,
		m.TransactionCode, m.Actor, m.Notes)
	return err
}

const movementColumns = `id, warehouse_id, stock_unit_id, type, quantity_before, quantity_delta, quantity_after, from_location, to_location, transaction_code, actor, notes, created_at`

func (r *movementRepo) ListByTransaction(ctx context.Context, code string) ([]*models.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE transaction_code = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, code)
}

func (r *movementRepo) ListByStockUnit(ctx context.Context, stockUnitID uuid.UUID) ([]*models.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE stock_unit_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, stockUnitID)
}

func (r *movementRepo) list(ctx context.Context, query string, arg any) ([]*models.Movement, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.Movement
	for rows.Next() {
		m := &models.Movement{}
		if err := rows.Scan(&m.ID, &m.WarehouseID, &m.StockUnitID, &m.Type,
			&m.QuantityBefore, &m.QuantityDelta, &m.QuantityAfter,
			&m.FromLocation, &m.ToLocation, &m.TransactionCode, &m.Actor, &m.Notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *movementRepo) MaxSequenceForDay(ctx context.Context, prefix, day string) (int, error) {
	// The sequence is everything after the second hyphen, so codes past 9999
	// keep counting instead of wrapping.
	query := `
		SELECT COALESCE(MAX(CAST(SPLIT_PART(transaction_code, '-', 3) AS INTEGER)), 0)
		FROM movements
		WHERE transaction_code LIKE $1
	`
	var max int
	if err := r.db.QueryRow(ctx, query, prefix+"-"+day+"-%").Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}
