package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
)

// UserDTO is the account payload returned to clients.
type UserDTO struct {
	ID                 uuid.UUID   `json:"id"`
	DisplayName        string      `json:"display_name"`
	Email              *string     `json:"email,omitempty"`
	Phone              *string     `json:"phone,omitempty"`
	RadiusMiles        *float64    `json:"radius_miles,omitempty"`
	Points             int         `json:"points"`
	DietaryPreferences []string    `json:"dietary_preferences"`
	Privacy            PrivacyDTO  `json:"privacy"`
	Consents           ConsentsDTO `json:"consents"`
	CreatedAt          time.Time   `json:"created_at"`
}

// PrivacyDTO groups the privacy toggles.
type PrivacyDTO struct {
	MaskAddress        bool `json:"mask_address"`
	InAppMessagingOnly bool `json:"in_app_messaging_only"`
	AIDataOptIn        bool `json:"ai_data_opt_in"`
}

// ConsentsDTO records program consents and when they were given.
type ConsentsDTO struct {
	AIDataProgram bool       `json:"ai_data_program"`
	ConsentedAt   *time.Time `json:"consented_at,omitempty"`
}

// NewUserDTO builds a DTO from the persisted model.
func NewUserDTO(user *models.User) *UserDTO {
	return &UserDTO{
		ID:                 user.ID,
		DisplayName:        user.DisplayName,
		Email:              user.Email,
		Phone:              user.Phone,
		RadiusMiles:        user.RadiusMiles,
		Points:             user.Points,
		DietaryPreferences: append([]string{}, user.DietaryPreferences...),
		Privacy: PrivacyDTO{
			MaskAddress:        user.MaskAddress,
			InAppMessagingOnly: user.InAppMessagingOnly,
			AIDataOptIn:        user.AIDataOptIn,
		},
		Consents: ConsentsDTO{
			AIDataProgram: user.AIDataConsent,
			ConsentedAt:   user.ConsentedAt,
		},
		CreatedAt: user.CreatedAt,
	}
}
