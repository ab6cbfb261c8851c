package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockyard/internal/common"
	"stockyard/internal/models"
	"stockyard/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
)

// TransactionService orchestrates the four warehouse transaction types. Every
// operation runs inside a single database transaction: all stock, movement,
// header and audit writes commit together or not at all. The acting user is
// read from the request context.
type TransactionService interface {
	Inbound(ctx context.Context, req *models.ReceiptRequest) (*models.ReceiptResult, error)
	NPLReturn(ctx context.Context, req *models.ReceiptRequest) (*models.ReceiptResult, error)
	Outbound(ctx context.Context, req *models.OutboundRequest) (*models.OutboundResult, error)
	CancelOutbound(ctx context.Context, code string) (*models.CancelResult, error)
	Permutation(ctx context.Context, req *models.PermutationRequest) (*models.PermutationResult, error)
}

type transactionService struct {
	db     repositories.DB
	layout LayoutService
	alloc  AllocationService
}

func NewTransactionService(db repositories.DB, layout LayoutService, alloc AllocationService) TransactionService {
	return &transactionService{db: db, layout: layout, alloc: alloc}
}

func dayStamp(t time.Time) string {
	return t.Format("20060102")
}

// txRepos bundles the repositories bound to one database transaction.
type txRepos struct {
	units        repositories.StockUnitRepository
	movements    repositories.MovementRepository
	transactions repositories.TransactionRepository
	audits       repositories.AuditLogsRepository
}

func newTxRepos(q repositories.Querier) txRepos {
	return txRepos{
		units:        repositories.NewStockUnitRepo(q),
		movements:    repositories.NewMovementRepo(q),
		transactions: repositories.NewTransactionRepo(q),
		audits:       repositories.NewAuditLogsRepo(q),
	}
}

func (s *transactionService) Inbound(ctx context.Context, req *models.ReceiptRequest) (*models.ReceiptResult, error) {
	return s.receive(ctx, req, models.TransactionInbound)
}

func (s *transactionService) NPLReturn(ctx context.Context, req *models.ReceiptRequest) (*models.ReceiptResult, error) {
	return s.receive(ctx, req, models.TransactionNPL)
}

// receive handles inbound receipts and NPL field returns; the two differ only
// in transaction type, code prefix and movement type.
func (s *transactionService) receive(ctx context.Context, req *models.ReceiptRequest, txType string) (*models.ReceiptResult, error) {
	actor, ok := common.ActorIDFromContext(ctx)
	if !ok {
		return nil, common.NewValidationError("actor", "acting user missing from request context")
	}
	if len(req.Lines) == 0 {
		return nil, common.NewValidationError("lines", "at least one placement line is required")
	}
	if !models.ValidGate(req.BaseGate) {
		return nil, common.NewValidationError("base_gate", "must be hold or release")
	}
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, common.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "must be a positive number of cartons")
		}
		if line.Batch == "" {
			return nil, common.NewValidationError(fmt.Sprintf("lines[%d].batch", i), "batch key is required")
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback(ctx)
	repos := newTxRepos(tx)

	prefix := models.CodePrefix(txType)
	day := dayStamp(time.Now())
	count, err := repos.transactions.CountForDay(ctx, prefix, day)
	if err != nil {
		return nil, common.NewPersistenceError("count receipts for day", err)
	}
	code := fmt.Sprintf("%s-%s-%04d", prefix, day, count+1)

	rec := &models.TransactionRecord{
		ID:          uuid.New(),
		Code:        code,
		Type:        txType,
		Status:      models.StatusDraft,
		WarehouseID: req.WarehouseID,
		ProductID:   req.ProductID,
		CreatedBy:   actor,
	}

	movementType := models.MovementInbound
	if txType == models.TransactionNPL {
		movementType = models.MovementNPL
	}

	// Each line is validated and placed before the next line is looked at.
	// Occupancy counts run through the tx-scoped repository, so a later line
	// into the same cell sees the pallets this receipt has already placed
	// there; the deferred rollback still discards everything on a rejection.
	createdAt := time.Now()
	for _, line := range req.Lines {
		if err := s.layout.ValidatePlacement(ctx, repos.units, req.WarehouseID, req.ProductID, line.Location); err != nil {
			return nil, err
		}
		condition := models.ConditionNormal
		if line.Receh {
			condition = models.ConditionReceh
		}
		unit := &models.StockUnit{
			ID:          uuid.New(),
			WarehouseID: req.WarehouseID,
			ProductID:   req.ProductID,
			Batch:       line.Batch,
			ExpiryDate:  line.Expiry,
			Cluster:     line.Location.Cluster,
			Lane:        line.Location.Lane,
			Row:         line.Location.Row,
			Level:       line.Location.Level,
			Cartons:     line.Quantity,
			Condition:   condition,
			Gate:        req.BaseGate,
			CreatedAt:   createdAt,
		}
		if err := repos.units.Create(ctx, unit); err != nil {
			return nil, common.NewPersistenceError("create stock unit", err)
		}

		to := line.Location.String()
		if err := repos.movements.Append(ctx, &models.Movement{
			ID:              uuid.New(),
			WarehouseID:     req.WarehouseID,
			StockUnitID:     unit.ID,
			Type:            movementType,
			QuantityBefore:  0,
			QuantityDelta:   line.Quantity,
			QuantityAfter:   line.Quantity,
			ToLocation:      &to,
			TransactionCode: code,
			Actor:           actor,
		}); err != nil {
			return nil, common.NewPersistenceError("record movement", err)
		}

		rec.Lines = append(rec.Lines, models.TransactionLine{
			StockUnitID:   unit.ID,
			Cluster:       unit.Cluster,
			Lane:          unit.Lane,
			Row:           unit.Row,
			Level:         unit.Level,
			Quantity:      unit.Cartons,
			Batch:         unit.Batch,
			Expiry:        unit.ExpiryDate,
			Condition:     unit.Condition,
			Gate:          unit.Gate,
			UnitCreatedAt: unit.CreatedAt,
		})
	}
	rec.Status = models.StatusCommitted
	if err := repos.transactions.Create(ctx, rec); err != nil {
		return nil, common.NewPersistenceError("create transaction header", err)
	}

	if err := repos.audits.Create(ctx, &models.AuditLog{
		ID:          uuid.New(),
		WarehouseID: req.WarehouseID,
		Action:      models.AuditActionCommit,
		Code:        code,
		Actor:       actor,
		Details: map[string]interface{}{
			"type":  txType,
			"lines": len(rec.Lines),
		},
	}); err != nil {
		return nil, common.NewPersistenceError("write audit entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewPersistenceError("commit transaction", err)
	}
	return &models.ReceiptResult{Code: code, Lines: rec.Lines}, nil
}

func (s *transactionService) Outbound(ctx context.Context, req *models.OutboundRequest) (*models.OutboundResult, error) {
	actor, ok := common.ActorIDFromContext(ctx)
	if !ok {
		return nil, common.NewValidationError("actor", "acting user missing from request context")
	}
	if req.Quantity <= 0 {
		return nil, common.NewValidationError("quantity", "must be a positive number of cartons")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback(ctx)
	repos := newTxRepos(tx)

	alloc, err := s.alloc.AllocateLocked(ctx, repos.units, req.WarehouseID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}

	// Outbound codes continue from the movement ledger's high-water mark for
	// the day: cancelled headers disappear but their movements keep the
	// sequence from being reused.
	day := dayStamp(time.Now())
	maxSeq, err := repos.movements.MaxSequenceForDay(ctx, "OUT", day)
	if err != nil {
		return nil, common.NewPersistenceError("read outbound sequence", err)
	}
	code := fmt.Sprintf("OUT-%s-%04d", day, maxSeq+1)

	rec := &models.TransactionRecord{
		ID:          uuid.New(),
		Code:        code,
		Type:        models.TransactionOutbound,
		Status:      models.StatusValidated,
		WarehouseID: req.WarehouseID,
		ProductID:   req.ProductID,
		CreatedBy:   actor,
	}

	for _, line := range alloc.Lines {
		unit := line.Unit
		if line.Remaining == 0 {
			if err := repos.units.Delete(ctx, unit.ID); err != nil {
				return nil, common.NewPersistenceError("delete exhausted stock unit", err)
			}
		} else {
			if _, err := repos.units.AdjustQuantity(ctx, unit.ID, -line.Quantity); err != nil {
				return nil, common.NewPersistenceError("decrement stock unit", err)
			}
			// Breaking a pallet makes it receh unless the unit carries a
			// special condition that must survive partial withdrawal.
			if !models.SpecialCondition(unit.Condition) && unit.Condition != models.ConditionReceh {
				if err := repos.units.SetCondition(ctx, unit.ID, models.ConditionReceh); err != nil {
					return nil, common.NewPersistenceError("mark stock unit receh", err)
				}
			}
		}

		from := unit.Location().String()
		if err := repos.movements.Append(ctx, &models.Movement{
			ID:              uuid.New(),
			WarehouseID:     req.WarehouseID,
			StockUnitID:     unit.ID,
			Type:            models.MovementOutbound,
			QuantityBefore:  unit.Cartons,
			QuantityDelta:   -line.Quantity,
			QuantityAfter:   line.Remaining,
			FromLocation:    &from,
			TransactionCode: code,
			Actor:           actor,
		}); err != nil {
			return nil, common.NewPersistenceError("record movement", err)
		}

		rec.Lines = append(rec.Lines, models.TransactionLine{
			StockUnitID:   unit.ID,
			Cluster:       unit.Cluster,
			Lane:          unit.Lane,
			Row:           unit.Row,
			Level:         unit.Level,
			Quantity:      line.Quantity,
			Batch:         unit.Batch,
			Expiry:        unit.ExpiryDate,
			Condition:     unit.Condition,
			Gate:          unit.Gate,
			UnitCreatedAt: unit.CreatedAt,
			ViolatesFefo:  line.ViolatesFefo,
		})
	}

	rec.Status = models.StatusCommitted
	if err := repos.transactions.Create(ctx, rec); err != nil {
		return nil, common.NewPersistenceError("create transaction header", err)
	}

	if err := repos.audits.Create(ctx, &models.AuditLog{
		ID:          uuid.New(),
		WarehouseID: req.WarehouseID,
		Action:      models.AuditActionCommit,
		Code:        code,
		Actor:       actor,
		Details: map[string]interface{}{
			"type":     models.TransactionOutbound,
			"quantity": req.Quantity,
			"lines":    len(rec.Lines),
		},
	}); err != nil {
		return nil, common.NewPersistenceError("write audit entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewPersistenceError("commit transaction", err)
	}
	return &models.OutboundResult{Code: code, Lines: rec.Lines}, nil
}

// CancelOutbound reverses a committed dispatch line by line. Each consumed
// slice is merged back into the most recently created matching unit at the
// same location, or re-created from the header snapshot with its original
// creation timestamp so FEFO ordering is restored exactly. The header is then
// hard-deleted; the compensating movements and the audit entry remain.
func (s *transactionService) CancelOutbound(ctx context.Context, code string) (*models.CancelResult, error) {
	actor, ok := common.ActorIDFromContext(ctx)
	if !ok {
		return nil, common.NewValidationError("actor", "acting user missing from request context")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback(ctx)
	repos := newTxRepos(tx)

	rec, err := repos.transactions.GetByCode(ctx, code)
	if errors.Is(err, repositories.ErrTransactionNotFound) {
		return nil, common.NewNotFoundError("transaction", code)
	}
	if err != nil {
		return nil, common.NewPersistenceError("load transaction header", err)
	}
	if rec.Type != models.TransactionOutbound {
		return nil, common.NewValidationError("code", "only outbound transactions can be cancelled")
	}

	result := &models.CancelResult{Code: code}
	for _, line := range rec.Lines {
		loc := line.Location()
		to := loc.String()
		existing, err := repos.units.FindLatestAt(ctx, rec.WarehouseID, rec.ProductID, loc)
		switch {
		case errors.Is(err, repositories.ErrUnitNotFound):
			unit := &models.StockUnit{
				ID:          uuid.New(),
				WarehouseID: rec.WarehouseID,
				ProductID:   rec.ProductID,
				Batch:       line.Batch,
				ExpiryDate:  line.Expiry,
				Cluster:     line.Cluster,
				Lane:        line.Lane,
				Row:         line.Row,
				Level:       line.Level,
				Cartons:     line.Quantity,
				Condition:   line.Condition,
				Gate:        line.Gate,
				CreatedAt:   line.UnitCreatedAt,
			}
			if err := repos.units.Create(ctx, unit); err != nil {
				return nil, common.NewPersistenceError("re-create stock unit", err)
			}
			if err := repos.movements.Append(ctx, &models.Movement{
				ID:              uuid.New(),
				WarehouseID:     rec.WarehouseID,
				StockUnitID:     unit.ID,
				Type:            models.MovementCancelOutbound,
				QuantityBefore:  0,
				QuantityDelta:   line.Quantity,
				QuantityAfter:   line.Quantity,
				ToLocation:      &to,
				TransactionCode: code,
				Actor:           actor,
			}); err != nil {
				return nil, common.NewPersistenceError("record movement", err)
			}
			result.Recreated++
		case err != nil:
			return nil, common.NewPersistenceError("find stock unit at location", err)
		default:
			newQty, err := repos.units.AdjustQuantity(ctx, existing.ID, line.Quantity)
			if err != nil {
				return nil, common.NewPersistenceError("restore stock unit quantity", err)
			}
			if err := repos.movements.Append(ctx, &models.Movement{
				ID:              uuid.New(),
				WarehouseID:     rec.WarehouseID,
				StockUnitID:     existing.ID,
				Type:            models.MovementCancelOutbound,
				QuantityBefore:  newQty - line.Quantity,
				QuantityDelta:   line.Quantity,
				QuantityAfter:   newQty,
				ToLocation:      &to,
				TransactionCode: code,
				Actor:           actor,
			}); err != nil {
				return nil, common.NewPersistenceError("record movement", err)
			}
			result.Restored++
		}
	}

	if err := repos.transactions.DeleteByCode(ctx, code); err != nil {
		return nil, common.NewPersistenceError("delete transaction header", err)
	}

	if err := repos.audits.Create(ctx, &models.AuditLog{
		ID:          uuid.New(),
		WarehouseID: rec.WarehouseID,
		Action:      models.AuditActionCancel,
		Code:        code,
		Actor:       actor,
		Details: map[string]interface{}{
			"type":      models.TransactionOutbound,
			"restored":  result.Restored,
			"recreated": result.Recreated,
		},
	}); err != nil {
		return nil, common.NewPersistenceError("write audit entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewPersistenceError("commit transaction", err)
	}
	return result, nil
}

func (s *transactionService) Permutation(ctx context.Context, req *models.PermutationRequest) (*models.PermutationResult, error) {
	actor, ok := common.ActorIDFromContext(ctx)
	if !ok {
		return nil, common.NewValidationError("actor", "acting user missing from request context")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, common.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback(ctx)
	repos := newTxRepos(tx)

	unit, err := repos.units.GetByID(ctx, req.WarehouseID, req.StockUnitID)
	if errors.Is(err, repositories.ErrUnitNotFound) {
		return nil, common.NewNotFoundError("stock unit", req.StockUnitID.String())
	}
	if err != nil {
		return nil, common.NewPersistenceError("load stock unit", err)
	}

	if err := s.layout.ValidatePlacement(ctx, repos.units, req.WarehouseID, unit.ProductID, req.To); err != nil {
		return nil, err
	}

	from := unit.Location()
	if err := repos.units.SetLocation(ctx, unit.ID, req.To); err != nil {
		return nil, common.NewPersistenceError("relocate stock unit", err)
	}

	code := fmt.Sprintf("PMT-%s-%s", dayStamp(time.Now()), strings.ToUpper(random.String(4)))

	fromStr := from.String()
	toStr := req.To.String()
	if err := repos.movements.Append(ctx, &models.Movement{
		ID:              uuid.New(),
		WarehouseID:     req.WarehouseID,
		StockUnitID:     unit.ID,
		Type:            models.MovementPermutation,
		QuantityBefore:  unit.Cartons,
		QuantityDelta:   0,
		QuantityAfter:   unit.Cartons,
		FromLocation:    &fromStr,
		ToLocation:      &toStr,
		TransactionCode: code,
		Actor:           actor,
	}); err != nil {
		return nil, common.NewPersistenceError("record movement", err)
	}

	rec := &models.TransactionRecord{
		ID:          uuid.New(),
		Code:        code,
		Type:        models.TransactionPermutation,
		Status:      models.StatusCommitted,
		WarehouseID: req.WarehouseID,
		ProductID:   unit.ProductID,
		CreatedBy:   actor,
		Lines: []models.TransactionLine{{
			StockUnitID:   unit.ID,
			Cluster:       req.To.Cluster,
			Lane:          req.To.Lane,
			Row:           req.To.Row,
			Level:         req.To.Level,
			Quantity:      unit.Cartons,
			Batch:         unit.Batch,
			Expiry:        unit.ExpiryDate,
			Condition:     unit.Condition,
			Gate:          unit.Gate,
			UnitCreatedAt: unit.CreatedAt,
		}},
	}
	if err := repos.transactions.Create(ctx, rec); err != nil {
		return nil, common.NewPersistenceError("create transaction header", err)
	}

	if err := repos.audits.Create(ctx, &models.AuditLog{
		ID:          uuid.New(),
		WarehouseID: req.WarehouseID,
		Action:      models.AuditActionCommit,
		Code:        code,
		Actor:       actor,
		Details: map[string]interface{}{
			"type": models.TransactionPermutation,
			"from": fromStr,
			"to":   toStr,
		},
	}); err != nil {
		return nil, common.NewPersistenceError("write audit entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.NewPersistenceError("commit transaction", err)
	}
	return &models.PermutationResult{Code: code, From: from, To: req.To}, nil
}
