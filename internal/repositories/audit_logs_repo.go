package repositories

import (
	"context"
	"encoding/json"

	"stockyard/internal/models"

	"github.com/google/uuid"
)

// AuditLogsRepository stores transaction-level audit entries. Entries are
// permanent: cancellation audit rows outlive the headers they describe.
type AuditLogsRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db Querier
}

func NewAuditLogsRepo(db Querier) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO audit_logs (id, warehouse_id, action, code, actor, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err = r.db.Exec(ctx, query, entry.ID, entry.WarehouseID, entry.Action,
		entry.Code, entry.Actor, details)
	return err
}

func (r *auditLogsRepo) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, warehouse_id, action, code, actor, details, created_at
		FROM audit_logs
		WHERE warehouse_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.WarehouseID, &entry.Action,
			&entry.Code, &entry.Actor, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
