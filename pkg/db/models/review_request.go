package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewRequest is a deferred ask-for-review created when an order is
// delivered. SendAt is in the future; a scheduler outside this core picks up
// due rows and marks SentAt.
type ReviewRequest struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	VariantID     uuid.UUID  `gorm:"column:variant_id;type:uuid;not null"`
	CustomerEmail string     `gorm:"column:customer_email;not null"`
	SendAt        time.Time  `gorm:"column:send_at;not null;index"`
	SentAt        *time.Time `gorm:"column:sent_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
