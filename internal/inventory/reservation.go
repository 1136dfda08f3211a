package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
)

// FailureReason classifies why a single variant could not be reserved.
type FailureReason string

const (
	FailureNotFound          FailureReason = "not_found"
	FailureDeleted           FailureReason = "deleted"
	FailureWrongStore        FailureReason = "wrong_store"
	FailureInsufficientStock FailureReason = "insufficient_stock"
)

// ReservationRequest asks for a conditional decrement of every listed variant
// on behalf of one store. Quantities must be positive.
type ReservationRequest struct {
	StoreID    uuid.UUID
	Quantities map[uuid.UUID]int
}

// ReservationFailure names one variant that was not decremented and why.
type ReservationFailure struct {
	VariantID uuid.UUID     `json:"variantId"`
	Reason    FailureReason `json:"reason"`
	Requested int           `json:"requested"`
	Available int           `json:"available"`
}

// ReservationResult reports the outcome per variant. Success is true iff every
// requested variant was decremented; on false the caller must roll back the
// enclosing transaction, since the reserved rows were only tentatively applied.
type ReservationResult struct {
	Success     bool
	ReservedIDs []uuid.UUID
	Failed      []ReservationFailure
}

// FailedIDs returns the ids of the failed variants.
func (r ReservationResult) FailedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Failed))
	for i, failure := range r.Failed {
		ids[i] = failure.VariantID
	}
	return ids
}

// TryReserve issues one set-based conditional update: each requested variant
// is decremented only if it has enough stock, is not soft-deleted and belongs
// to the requesting store. The statement is a single round trip; each row's
// success is independent, and the row predicate plus the database's row-level
// write serialization are the sole oversell protection. No application lock is
// taken.
//
// Business shortfalls are reported through the result, never as an error.
// Errors indicate infrastructure failure and oblige the caller to abort.
func TryReserve(ctx context.Context, tx *gorm.DB, req ReservationRequest) (ReservationResult, error) {
	if tx == nil {
		return ReservationResult{}, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for reservation")
	}
	if req.StoreID == uuid.Nil {
		return ReservationResult{}, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if len(req.Quantities) == 0 {
		return ReservationResult{Success: true}, nil
	}

	// Deterministic variant order keeps row-lock acquisition stable across
	// concurrent reservations, which avoids deadlocks between overlapping
	// requests.
	ids := make([]uuid.UUID, 0, len(req.Quantities))
	for id, qty := range req.Quantities {
		if qty <= 0 {
			return ReservationResult{}, pkgerrors.
				New(pkgerrors.CodeValidation, "reservation quantities must be positive").
				WithDetails(map[string]any{"variant_id": id.String(), "quantity": qty})
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	query, args := buildReserveStatement(ids, req)

	var reservedRows []struct {
		ID uuid.UUID `gorm:"column:id"`
	}
	if err := tx.WithContext(ctx).Raw(query, args...).Scan(&reservedRows).Error; err != nil {
		return ReservationResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
	}
	reservedIDs := make([]uuid.UUID, len(reservedRows))
	for i, row := range reservedRows {
		reservedIDs[i] = row.ID
	}

	result := ReservationResult{
		Success:     len(reservedIDs) == len(ids),
		ReservedIDs: reservedIDs,
	}
	if result.Success {
		return result, nil
	}

	failed, err := classifyFailures(ctx, tx, req, ids, reservedIDs)
	if err != nil {
		return ReservationResult{}, err
	}
	result.Failed = failed
	return result, nil
}

// buildReserveStatement joins the request tuples against the variants table in
// one bulk UPDATE. Written in the SQL subset shared by Postgres and SQLite so
// the engine runs unchanged under the in-memory test databases.
func buildReserveStatement(ids []uuid.UUID, req ReservationRequest) (string, []any) {
	var tuples strings.Builder
	args := make([]any, 0, len(ids)*2+1)
	for i, id := range ids {
		if i == 0 {
			tuples.WriteString("SELECT ? AS variant_id, ? AS qty")
		} else {
			tuples.WriteString(" UNION ALL SELECT ?, ?")
		}
		args = append(args, id, req.Quantities[id])
	}
	args = append(args, req.StoreID)

	query := `
		UPDATE variants
		SET stock = stock - r.qty,
			updated_at = CURRENT_TIMESTAMP
		FROM (` + tuples.String() + `) AS r
		WHERE variants.id = r.variant_id
		  AND variants.deleted_at IS NULL
		  AND variants.stock >= r.qty
		  AND variants.product_id IN (SELECT id FROM products WHERE store_id = ?)
		RETURNING variants.id`
	return query, args
}

type variantProbe struct {
	ID        uuid.UUID  `gorm:"column:id"`
	Stock     int        `gorm:"column:stock"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	StoreID   *uuid.UUID `gorm:"column:store_id"`
}

// classifyFailures re-queries the variants that were not decremented and
// assigns each a reason. Re-running the query immediately afterwards inside
// the same transaction reproduces the same classification.
func classifyFailures(ctx context.Context, tx *gorm.DB, req ReservationRequest, requested, reserved []uuid.UUID) ([]ReservationFailure, error) {
	reservedSet := make(map[uuid.UUID]struct{}, len(reserved))
	for _, id := range reserved {
		reservedSet[id] = struct{}{}
	}

	failedIDs := make([]uuid.UUID, 0, len(requested)-len(reserved))
	for _, id := range requested {
		if _, ok := reservedSet[id]; !ok {
			failedIDs = append(failedIDs, id)
		}
	}

	var probes []variantProbe
	err := tx.WithContext(ctx).Raw(`
		SELECT v.id, v.stock, v.deleted_at, p.store_id
		FROM variants v
		LEFT JOIN products p ON p.id = v.product_id
		WHERE v.id IN ?`, failedIDs).Scan(&probes).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "classify reservation failures")
	}

	probeByID := make(map[uuid.UUID]variantProbe, len(probes))
	for _, probe := range probes {
		probeByID[probe.ID] = probe
	}

	failures := make([]ReservationFailure, 0, len(failedIDs))
	for _, id := range failedIDs {
		failure := ReservationFailure{VariantID: id, Requested: req.Quantities[id]}
		probe, ok := probeByID[id]
		switch {
		case !ok:
			failure.Reason = FailureNotFound
		case probe.DeletedAt != nil:
			failure.Reason = FailureDeleted
		case probe.StoreID == nil || *probe.StoreID != req.StoreID:
			failure.Reason = FailureWrongStore
		default:
			failure.Reason = FailureInsufficientStock
			failure.Available = probe.Stock
		}
		failures = append(failures, failure)
	}
	return failures, nil
}
