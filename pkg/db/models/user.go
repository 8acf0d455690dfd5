package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User represents the account record the external identity service hands us.
// The points balance is owned by the ledger; nothing else writes it.
type User struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	DisplayName        string         `gorm:"column:display_name;not null"`
	Email              *string        `gorm:"column:email"`
	Phone              *string        `gorm:"column:phone"`
	RadiusMiles        *float64       `gorm:"column:radius_miles"`
	Points             int            `gorm:"column:points;not null;default:0"`
	DietaryPreferences pq.StringArray `gorm:"column:dietary_preferences;type:text[]"`
	MaskAddress        bool           `gorm:"column:mask_address;not null;default:true"`
	InAppMessagingOnly bool           `gorm:"column:in_app_messaging_only;not null;default:true"`
	AIDataOptIn        bool           `gorm:"column:ai_data_opt_in;not null;default:false"`
	AIDataConsent      bool           `gorm:"column:ai_data_consent;not null;default:false"`
	ConsentedAt        *time.Time     `gorm:"column:consented_at"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
