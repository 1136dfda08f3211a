package payments

import (
	"context"
	"fmt"

	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// SandboxGateway fakes the payment provider for dev environments. Links point
// at a fake checkout host and every payment reads back as approved, which lets
// the confirm-payment and release flows run end to end without credentials.
type SandboxGateway struct {
	logg *logger.Logger
}

func NewSandboxGateway(logg *logger.Logger) *SandboxGateway {
	return &SandboxGateway{logg: logg}
}

func (g *SandboxGateway) CreatePaymentLink(ctx context.Context, req CreateLinkRequest) (PaymentLink, error) {
	url := fmt.Sprintf("https://checkout.sandbox.invalid/%s?ref=%s", req.OrderID, req.Reference)
	ctx = g.logg.WithFields(ctx, map[string]any{"order_id": req.OrderID.String(), "amount": req.Amount.String()})
	g.logg.Info(ctx, "sandbox payment link created")
	return PaymentLink{URL: url}, nil
}

func (g *SandboxGateway) FindPayment(ctx context.Context, transactionID string) (Payment, error) {
	return Payment{TransactionID: transactionID, Status: PaymentStatusApproved}, nil
}

func (g *SandboxGateway) VoidPayment(ctx context.Context, transactionID string) error {
	g.logg.Info(g.logg.WithField(ctx, "transaction_id", transactionID), "sandbox payment voided")
	return nil
}

func (g *SandboxGateway) RefundPayment(ctx context.Context, transactionID string) error {
	g.logg.Info(g.logg.WithField(ctx, "transaction_id", transactionID), "sandbox payment refunded")
	return nil
}
