package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/secondserve/secondserve-backend/pkg/enums"
)

// Listing is the canonical catalog entry for a donated or sold food item.
// PriceCents is null exactly when IsDonation is true; the rules engine
// guarantees both that and IsDonation implying IsSealed before insert.
type Listing struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID      uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index"`
	Name         string              `gorm:"column:name;not null"`
	Category     string              `gorm:"column:category;not null"`
	IsDonation   bool                `gorm:"column:is_donation;not null"`
	IsSealed     bool                `gorm:"column:is_sealed;not null"`
	ExpiresAt    time.Time           `gorm:"column:expires_at;not null"`
	Description  string              `gorm:"column:description;not null"`
	PriceCents   *int64              `gorm:"column:price_cents"`
	LocationText string              `gorm:"column:location_text;not null"`
	Status       enums.ListingStatus `gorm:"column:status;not null"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
