package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is the purchasable stock-keeping unit of a product. Stock is never
// mutated through direct field assignment; the reservation engine and the
// inventory compensations own every change.
type Variant struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	SKU        string          `gorm:"column:sku;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock      int             `gorm:"column:stock;not null;default:0"`
	SalesCount int64           `gorm:"column:sales_count;not null;default:0"`
	DeletedAt  *time.Time      `gorm:"column:deleted_at;index"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
