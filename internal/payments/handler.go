package payments

import (
	"context"
	"fmt"

	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// Handler ties the payment-link lifecycle to order events: mint on creation,
// invalidate on payment, release funds and link on cancellation.
type Handler struct {
	service Service
	logg    *logger.Logger
}

func NewHandler(service Service, logg *logger.Logger) (*Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("payments service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Handler{service: service, logg: logg}, nil
}

// Register subscribes the handler to the order lifecycle.
func (h *Handler) Register(reg *events.Registry) {
	events.On(reg, "payments.issue_link", h.handleOrderCreated)
	events.On(reg, "payments.invalidate_link", h.handleOrderPaid)
	events.On(reg, "payments.release", h.handleOrderCanceled)
}

func (h *Handler) handleOrderCreated(ctx context.Context, event events.OrderCreated) error {
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())

	_, err := h.service.IssueLink(ctx, IssueLinkInput{
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		Amount:      event.Total,
		Reference:   fmt.Sprintf("order-%d", event.OrderNumber),
	})
	if err != nil {
		return fmt.Errorf("issue payment link: %w", err)
	}
	h.logg.Info(ctx, "payment link issued")
	return nil
}

func (h *Handler) handleOrderPaid(ctx context.Context, event events.OrderPaid) error {
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())
	if err := h.service.InvalidateLink(ctx, event.OrderID); err != nil {
		return fmt.Errorf("invalidate payment link: %w", err)
	}
	return nil
}

func (h *Handler) handleOrderCanceled(ctx context.Context, event events.OrderCanceled) error {
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())
	if err := h.service.Release(ctx, event.OrderID, event.TransactionID); err != nil {
		return fmt.Errorf("release payment: %w", err)
	}
	return nil
}
