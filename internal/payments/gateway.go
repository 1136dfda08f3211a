package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus mirrors the gateway's view of a transaction.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDeclined PaymentStatus = "declined"
	PaymentStatusVoided   PaymentStatus = "voided"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment is the gateway-side record of a transaction.
type Payment struct {
	TransactionID string
	Status        PaymentStatus
	Amount        decimal.Decimal
}

// CreateLinkRequest carries what the gateway needs to mint a checkout link.
type CreateLinkRequest struct {
	OrderID     uuid.UUID
	OrderNumber int64
	Amount      decimal.Decimal
	Reference   string
}

// PaymentLink is a hosted checkout URL for one order.
type PaymentLink struct {
	URL string
}

// Gateway is the payment provider boundary. An approved payment is released
// with a refund, anything earlier with a void.
type Gateway interface {
	CreatePaymentLink(ctx context.Context, req CreateLinkRequest) (PaymentLink, error)
	FindPayment(ctx context.Context, transactionID string) (Payment, error)
	VoidPayment(ctx context.Context, transactionID string) error
	RefundPayment(ctx context.Context, transactionID string) error
}
