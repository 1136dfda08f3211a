package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/CarlosPavajeau/cetus/pkg/enums"
)

// Notification records a message queued for a recipient. Rendering and actual
// delivery belong to the external mailer; this row is the durable intent.
type Notification struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID                 `gorm:"column:store_id;type:uuid;not null;index"`
	Recipient string                    `gorm:"column:recipient;not null"`
	Channel   enums.NotificationChannel `gorm:"column:channel;type:text;not null;default:'email'"`
	Template  enums.NotificationTemplate `gorm:"column:template;type:text;not null"`
	Payload   json.RawMessage           `gorm:"column:payload;type:jsonb"`
	Status    enums.NotificationStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	SentAt    *time.Time                `gorm:"column:sent_at"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
