package reviews

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/events"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Handler schedules one ask-for-review per delivered line item, delayed by
// the configured window so the customer has actually used the product.
type Handler struct {
	repo      Repository
	tx        txRunner
	sendDelay time.Duration
	logg      *logger.Logger
	now       func() time.Time
}

func NewHandler(repo Repository, tx txRunner, sendDelay time.Duration, logg *logger.Logger) (*Handler, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if sendDelay <= 0 {
		sendDelay = 7 * 24 * time.Hour
	}
	return &Handler{repo: repo, tx: tx, sendDelay: sendDelay, logg: logg, now: time.Now}, nil
}

// Register subscribes the handler to order.delivered.
func (h *Handler) Register(reg *events.Registry) {
	events.On(reg, "reviews.schedule", h.handleOrderDelivered)
}

func (h *Handler) handleOrderDelivered(ctx context.Context, event events.OrderDelivered) error {
	if len(event.Items) == 0 {
		return nil
	}
	ctx = h.logg.WithOrderID(ctx, event.OrderID.String())

	sendAt := h.now().Add(h.sendDelay)
	err := h.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := h.repo.WithTx(tx)
		for _, item := range event.Items {
			row := models.ReviewRequest{
				OrderID:       event.OrderID,
				VariantID:     item.VariantID,
				CustomerEmail: event.CustomerEmail,
				SendAt:        sendAt,
			}
			if err := repo.Create(ctx, &row); err != nil {
				return fmt.Errorf("schedule review for variant %s: %w", item.VariantID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.logg.Info(ctx, "review requests scheduled")
	return nil
}
