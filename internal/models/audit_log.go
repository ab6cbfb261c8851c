package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the engine.
const (
	AuditActionCommit = "commit"
	AuditActionCancel = "cancel"
)

// AuditLog is a permanent record of a transaction-level event. Cancellation
// entries outlive the deleted transaction header they describe.
type AuditLog struct {
	ID          uuid.UUID              `json:"id"`
	WarehouseID uuid.UUID              `json:"warehouse_id"`
	Action      string                 `json:"action"`
	Code        string                 `json:"code"`
	Actor       uuid.UUID              `json:"actor"`
	Details     map[string]interface{} `json:"details,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
