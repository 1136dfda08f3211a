package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/CarlosPavajeau/cetus/pkg/enums"
)

// InventoryTransaction is the append-only audit trail of stock mutations.
// Compensating adjustments and manual corrections write here; the reservation
// engine's hot-path decrement does not.
type InventoryTransaction struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariantID   uuid.UUID             `gorm:"column:variant_id;type:uuid;not null;index"`
	Quantity    int                   `gorm:"column:quantity;not null"`
	StockAfter  int                   `gorm:"column:stock_after;not null"`
	Reason      enums.InventoryReason `gorm:"column:reason;type:text;not null"`
	ActorUserID *uuid.UUID            `gorm:"column:actor_user_id;type:uuid"`
	OrderID     *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
