package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is an immutable fact raised by an aggregate after a state change. It
// carries the denormalized fields handlers need so they never re-fetch the
// aggregate under race conditions.
type Event interface {
	EventName() string
}

// Canonical event names, used as registry keys.
const (
	NameOrderCreated   = "order.created"
	NameOrderPaid      = "order.paid"
	NameOrderCanceled  = "order.canceled"
	NameOrderDelivered = "order.delivered"
)

// ItemSnapshot captures a line item as it was at order time.
type ItemSnapshot struct {
	VariantID   uuid.UUID       `json:"variantId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// OrderCreated is raised once when a new order is committed.
type OrderCreated struct {
	OrderID       uuid.UUID       `json:"orderId"`
	OrderNumber   int64           `json:"orderNumber"`
	StoreID       uuid.UUID       `json:"storeId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Total         decimal.Decimal `json:"total"`
	Items         []ItemSnapshot  `json:"items"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func (OrderCreated) EventName() string { return NameOrderCreated }

// OrderPaid is raised when an order enters payment_confirmed.
type OrderPaid struct {
	OrderID       uuid.UUID       `json:"orderId"`
	OrderNumber   int64           `json:"orderNumber"`
	StoreID       uuid.UUID       `json:"storeId"`
	TransactionID string          `json:"transactionId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Total         decimal.Decimal `json:"total"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func (OrderPaid) EventName() string { return NameOrderPaid }

// OrderCanceled is raised when an order enters canceled. Items are included so
// the restock handler can undo the original reservation line by line.
type OrderCanceled struct {
	OrderID       uuid.UUID       `json:"orderId"`
	OrderNumber   int64           `json:"orderNumber"`
	StoreID       uuid.UUID       `json:"storeId"`
	TransactionID *string         `json:"transactionId,omitempty"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Total         decimal.Decimal `json:"total"`
	Items         []ItemSnapshot  `json:"items"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func (OrderCanceled) EventName() string { return NameOrderCanceled }

// OrderDelivered is raised when an order enters delivered.
type OrderDelivered struct {
	OrderID       uuid.UUID      `json:"orderId"`
	OrderNumber   int64          `json:"orderNumber"`
	StoreID       uuid.UUID      `json:"storeId"`
	CustomerName  string         `json:"customerName"`
	CustomerEmail string         `json:"customerEmail"`
	Items         []ItemSnapshot `json:"items"`
	OccurredAt    time.Time      `json:"occurredAt"`
}

func (OrderDelivered) EventName() string { return NameOrderDelivered }
