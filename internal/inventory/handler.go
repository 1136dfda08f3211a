package inventory

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/enums"
	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// RestockHandler restores the stock a canceled order had reserved, line item
// by line item, inside one fresh transaction per event.
type RestockHandler struct {
	service Service
	tx      txRunner
	logg    *logger.Logger
}

func NewRestockHandler(service Service, tx txRunner, logg *logger.Logger) (*RestockHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RestockHandler{service: service, tx: tx, logg: logg}, nil
}

// Register subscribes the handler to order.canceled.
func (h *RestockHandler) Register(reg *events.Registry) {
	events.On(reg, "inventory.restock", h.handleOrderCanceled)
}

func (h *RestockHandler) handleOrderCanceled(ctx context.Context, event events.OrderCanceled) error {
	if len(event.Items) == 0 {
		return nil
	}
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())

	err := h.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, item := range event.Items {
			orderID := event.OrderID
			input := RestockInput{
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Reason:    enums.InventoryReasonOrderCanceled,
				OrderID:   &orderID,
			}
			if err := h.service.Restock(ctx, tx, input); err != nil {
				return fmt.Errorf("restock variant %s: %w", item.VariantID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.logg.Info(ctx, "restored stock for canceled order")
	return nil
}
