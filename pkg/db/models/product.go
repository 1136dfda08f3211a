package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable listing owned by a store. Stock lives on its variants.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	Enabled     bool      `gorm:"column:enabled;not null;default:true"`
	Variants    []Variant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
