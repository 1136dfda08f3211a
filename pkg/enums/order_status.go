package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPendingPayment   OrderStatus = "pending_payment"
	OrderStatusPaymentConfirmed OrderStatus = "payment_confirmed"
	OrderStatusProcessing       OrderStatus = "processing"
	OrderStatusReadyForPickup   OrderStatus = "ready_for_pickup"
	OrderStatusShipped          OrderStatus = "shipped"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusFailedDelivery   OrderStatus = "failed_delivery"
	OrderStatusCanceled         OrderStatus = "canceled"
	OrderStatusReturned         OrderStatus = "returned"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaymentConfirmed,
	OrderStatusProcessing,
	OrderStatusReadyForPickup,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusFailedDelivery,
	OrderStatusCanceled,
	OrderStatusReturned,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from the status.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusCanceled || o == OrderStatusReturned
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
