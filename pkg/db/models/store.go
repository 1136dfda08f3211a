package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is the owning tenant for products, variants and orders.
type Store struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	ContactEmail string    `gorm:"column:contact_email;not null"`
	ContactPhone *string   `gorm:"column:contact_phone"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
