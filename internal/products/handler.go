package products

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SalesCounterHandler bumps per-variant sales counters once an order is
// actually delivered, not when it is merely placed or paid.
type SalesCounterHandler struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

func NewSalesCounterHandler(repo Repository, tx txRunner, logg *logger.Logger) (*SalesCounterHandler, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SalesCounterHandler{repo: repo, tx: tx, logg: logg}, nil
}

// Register subscribes the handler to order.delivered.
func (h *SalesCounterHandler) Register(reg *events.Registry) {
	events.On(reg, "products.sales_counter", h.handleOrderDelivered)
}

func (h *SalesCounterHandler) handleOrderDelivered(ctx context.Context, event events.OrderDelivered) error {
	if len(event.Items) == 0 {
		return nil
	}
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())

	return h.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := h.repo.WithTx(tx)
		for _, item := range event.Items {
			affected, err := repo.IncrementSalesCount(ctx, item.VariantID, item.Quantity)
			if err != nil {
				return fmt.Errorf("bump sales count for variant %s: %w", item.VariantID, err)
			}
			if affected == 0 {
				h.logg.Warn(h.logg.WithField(ctx, "variant_id", item.VariantID.String()),
					"delivered variant no longer exists, sales count not updated")
			}
		}
		return nil
	})
}
