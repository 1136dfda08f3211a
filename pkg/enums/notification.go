package enums

import "fmt"

// NotificationChannel names the delivery channel for a notification.
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
)

var validNotificationChannels = []NotificationChannel{
	NotificationChannelEmail,
	NotificationChannelSMS,
}

// IsValid reports whether the value is a known NotificationChannel.
func (n NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == n {
			return true
		}
	}
	return false
}

// NotificationTemplate identifies the message rendered for the recipient.
type NotificationTemplate string

const (
	NotificationTemplateOrderCreated   NotificationTemplate = "order_created"
	NotificationTemplateOrderPaid      NotificationTemplate = "order_paid"
	NotificationTemplateOrderDelivered NotificationTemplate = "order_delivered"
	NotificationTemplateOrderCanceled  NotificationTemplate = "order_canceled"
	NotificationTemplateNewOrderSeller NotificationTemplate = "new_order_seller"
)

// NotificationStatus tracks delivery progress.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

var validNotificationStatuses = []NotificationStatus{
	NotificationStatusPending,
	NotificationStatusSent,
	NotificationStatusFailed,
}

// IsValid reports whether the value is a known NotificationStatus.
func (n NotificationStatus) IsValid() bool {
	for _, candidate := range validNotificationStatuses {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationStatus converts raw input into a NotificationStatus.
func ParseNotificationStatus(value string) (NotificationStatus, error) {
	for _, candidate := range validNotificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification status %q", value)
}
