package notifications

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/enums"
	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// Handler turns order lifecycle events into customer emails, plus a seller
// copy when a new order lands.
type Handler struct {
	service Service
	repo    Repository
	logg    *logger.Logger
}

func NewHandler(service Service, repo Repository, logg *logger.Logger) (*Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Handler{service: service, repo: repo, logg: logg}, nil
}

// Register subscribes the handler to every order lifecycle event.
func (h *Handler) Register(reg *events.Registry) {
	events.On(reg, "notifications.order_created", h.handleOrderCreated)
	events.On(reg, "notifications.order_paid", h.handleOrderPaid)
	events.On(reg, "notifications.order_delivered", h.handleOrderDelivered)
	events.On(reg, "notifications.order_canceled", h.handleOrderCanceled)
}

func (h *Handler) handleOrderCreated(ctx context.Context, event events.OrderCreated) error {
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())

	_, err := h.service.Enqueue(ctx, EnqueueInput{
		StoreID:   event.StoreID,
		Recipient: event.CustomerEmail,
		Template:  enums.NotificationTemplateOrderCreated,
		Payload:   event,
	})
	if err != nil {
		return fmt.Errorf("order created notification: %w", err)
	}

	// The seller copy is best-effort: a store without a contact email simply
	// gets none.
	store, err := h.repo.FindStore(ctx, event.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.logg.Warn(ctx, "store not found for seller notification")
			return nil
		}
		return fmt.Errorf("load store for seller notification: %w", err)
	}
	if store.ContactEmail == "" {
		return nil
	}
	_, err = h.service.Enqueue(ctx, EnqueueInput{
		StoreID:   event.StoreID,
		Recipient: store.ContactEmail,
		Template:  enums.NotificationTemplateNewOrderSeller,
		Payload:   event,
	})
	if err != nil {
		return fmt.Errorf("seller notification: %w", err)
	}
	return nil
}

func (h *Handler) handleOrderPaid(ctx context.Context, event events.OrderPaid) error {
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())
	_, err := h.service.Enqueue(ctx, EnqueueInput{
		StoreID:   event.StoreID,
		Recipient: event.CustomerEmail,
		Template:  enums.NotificationTemplateOrderPaid,
		Payload:   event,
	})
	if err != nil {
		return fmt.Errorf("order paid notification: %w", err)
	}
	return nil
}

func (h *Handler) handleOrderDelivered(ctx context.Context, event events.OrderDelivered) error {
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())
	_, err := h.service.Enqueue(ctx, EnqueueInput{
		StoreID:   event.StoreID,
		Recipient: event.CustomerEmail,
		Template:  enums.NotificationTemplateOrderDelivered,
		Payload:   event,
	})
	if err != nil {
		return fmt.Errorf("order delivered notification: %w", err)
	}
	return nil
}

func (h *Handler) handleOrderCanceled(ctx context.Context, event events.OrderCanceled) error {
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())
	_, err := h.service.Enqueue(ctx, EnqueueInput{
		StoreID:   event.StoreID,
		Recipient: event.CustomerEmail,
		Template:  enums.NotificationTemplateOrderCanceled,
		Payload:   event,
	})
	if err != nil {
		return fmt.Errorf("order canceled notification: %w", err)
	}
	return nil
}
