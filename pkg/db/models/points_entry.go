package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/secondserve/secondserve-backend/pkg/enums"
)

// PointsEntry is an append-only record of a loyalty credit.
type PointsEntry struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	ListingID uuid.UUID             `gorm:"column:listing_id;type:uuid;not null"`
	Type      enums.PointsEventType `gorm:"column:type;not null"`
	Points    int                   `gorm:"column:points;not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
