package orders

import (
	"time"

	"github.com/CarlosPavajeau/cetus/pkg/db/models"
	"github.com/CarlosPavajeau/cetus/pkg/enums"
	pkgerrors "github.com/CarlosPavajeau/cetus/pkg/errors"
	"github.com/CarlosPavajeau/cetus/pkg/events"
)

// allowedTransitions is the complete adjacency matrix of the order status
// machine. Canceled and returned are terminal: they have no outgoing arcs, so
// any mutation attempt on an order in those states is rejected.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingPayment: {
		enums.OrderStatusPaymentConfirmed,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusPaymentConfirmed: {
		enums.OrderStatusProcessing,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusReadyForPickup,
		enums.OrderStatusShipped,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusReadyForPickup: {
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusFailedDelivery,
	},
	enums.OrderStatusFailedDelivery: {
		enums.OrderStatusShipped,
		enums.OrderStatusReturned,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusReturned,
	},
	enums.OrderStatusCanceled: {},
	enums.OrderStatusReturned: {},
}

// CanTransition reports whether the machine permits moving from one status to
// another. It is a pure decision function: no aggregate state is touched.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Transition applies a guarded status change to the order and raises the
// domain events that entering the new status demands. A rejected transition
// leaves the order untouched and returns a typed STATE_CONFLICT naming both
// statuses.
func Transition(order *models.Order, to enums.OrderStatus, now time.Time) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if !CanTransition(order.Status, to) {
		return pkgerrors.
			New(pkgerrors.CodeStateConflict, "order status transition not allowed").
			WithDetails(map[string]any{
				"current_status":   order.Status.String(),
				"attempted_status": to.String(),
			})
	}

	order.Status = to

	switch to {
	case enums.OrderStatusPaymentConfirmed:
		transactionID := ""
		if order.TransactionID != nil {
			transactionID = *order.TransactionID
		}
		order.Raise(events.OrderPaid{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			StoreID:       order.StoreID,
			TransactionID: transactionID,
			CustomerName:  order.CustomerName,
			CustomerEmail: order.CustomerEmail,
			Total:         order.Total,
			OccurredAt:    now,
		})
	case enums.OrderStatusCanceled:
		canceledAt := now
		order.CanceledAt = &canceledAt
		order.Raise(events.OrderCanceled{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			StoreID:       order.StoreID,
			TransactionID: order.TransactionID,
			CustomerName:  order.CustomerName,
			CustomerEmail: order.CustomerEmail,
			Total:         order.Total,
			Items:         snapshotItems(order.Items),
			OccurredAt:    now,
		})
	case enums.OrderStatusDelivered:
		deliveredAt := now
		order.DeliveredAt = &deliveredAt
		order.Raise(events.OrderDelivered{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			StoreID:       order.StoreID,
			CustomerName:  order.CustomerName,
			CustomerEmail: order.CustomerEmail,
			Items:         snapshotItems(order.Items),
			OccurredAt:    now,
		})
	}

	return nil
}

func snapshotItems(items []models.OrderItem) []events.ItemSnapshot {
	snapshots := make([]events.ItemSnapshot, len(items))
	for i, item := range items {
		snapshots[i] = events.ItemSnapshot{
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}
	return snapshots
}
