package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/CarlosPavajeau/cetus/pkg/enums"
	"github.com/CarlosPavajeau/cetus/pkg/events"
)

// Order is the aggregate root of the order-processing core. Status mutations
// go through internal/orders' transition guard; business operations buffer
// domain events on the embedded events.Buffer, which the unit-of-work boundary
// drains after a successful commit.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   int64             `gorm:"column:order_number;not null"`
	StoreID       uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending_payment'"`
	CustomerName  string            `gorm:"column:customer_name;not null"`
	CustomerEmail string            `gorm:"column:customer_email;not null"`
	CustomerPhone *string           `gorm:"column:customer_phone"`
	Address       *string           `gorm:"column:address"`
	Subtotal      decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount      decimal.Decimal   `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	DeliveryFee   decimal.Decimal   `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	TransactionID *string           `gorm:"column:transaction_id"`
	DeliveredAt   *time.Time        `gorm:"column:delivered_at"`
	CanceledAt    *time.Time        `gorm:"column:canceled_at"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	events.Buffer `gorm:"-" json:"-"`
}
