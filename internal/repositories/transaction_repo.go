package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"stockyard/internal/models"

	"github.com/jackc/pgx/v5"
)

// ErrTransactionNotFound is returned when a transaction header does not exist,
// e.g. on a second cancellation attempt.
var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository interface {
	Create(ctx context.Context, rec *models.TransactionRecord) error
	GetByCode(ctx context.Context, code string) (*models.TransactionRecord, error)
	// DeleteByCode hard-deletes the header. The compensating movements and the
	// audit entry written alongside are the durable record of the cancellation.
	DeleteByCode(ctx context.Context, code string) error
	// CountForDay counts headers whose code starts with prefix-day; inbound and
	// NPL codes are numbered count+1.
	CountForDay(ctx context.Context, prefix, day string) (int, error)
}

type transactionRepo struct {
	db Querier
}

func NewTransactionRepo(db Querier) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, rec *models.TransactionRecord) error {
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO transactions (id, code, type, status, warehouse_id, product_id, lines, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err = r.db.Exec(ctx, query, rec.ID, rec.Code, rec.Type, rec.Status,
		rec.WarehouseID, rec.ProductID, lines, rec.CreatedBy)
	return err
}

func (r *transactionRepo) GetByCode(ctx context.Context, code string) (*models.TransactionRecord, error) {
	query := `
		SELECT id, code, type, status, warehouse_id, product_id, lines, created_by, created_at
		FROM transactions
		WHERE code = $1
	`
	rec := &models.TransactionRecord{}
	var lines []byte
	err := r.db.QueryRow(ctx, query, code).Scan(&rec.ID, &rec.Code, &rec.Type, &rec.Status,
		&rec.WarehouseID, &rec.ProductID, &lines, &rec.CreatedBy, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lines, &rec.Lines); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *transactionRepo) DeleteByCode(ctx context.Context, code string) error {
	query := `DELETE FROM transactions WHERE code = $1`
	tag, err := r.db.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepo) CountForDay(ctx context.Context, prefix, day string) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE code LIKE $1`
	var count int
	if err := r.db.QueryRow(ctx, query, prefix+"-"+day+"-%").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
