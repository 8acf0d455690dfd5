package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/secondserve/secondserve-backend/internal/rules"
	"github.com/secondserve/secondserve-backend/pkg/db/models"
)

// ListingDTO is the listing payload returned to clients.
type ListingDTO struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Description  string    `json:"description,omitempty"`
	LocationText string    `json:"location_text,omitempty"`
	IsDonation   bool      `json:"is_donation"`
	IsSealed     bool      `json:"is_sealed"`
	Transaction  string    `json:"transaction"`
	PriceCents   *int64    `json:"price_cents,omitempty"`
	Price        *string   `json:"price,omitempty"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmissionResult is what a successful submit returns: the stored
// listing, the points credited, and a confirmation message.
type SubmissionResult struct {
	Listing       ListingDTO `json:"listing"`
	PointsAwarded int        `json:"points_awarded"`
	Message       string     `json:"message"`
}

// NewListingDTO builds a DTO from the persisted model.
func NewListingDTO(listing *models.Listing) ListingDTO {
	dto := ListingDTO{
		ID:           listing.ID,
		OwnerID:      listing.OwnerID,
		Name:         listing.Name,
		Category:     listing.Category,
		Description:  listing.Description,
		LocationText: listing.LocationText,
		IsDonation:   listing.IsDonation,
		IsSealed:     listing.IsSealed,
		Transaction:  rules.TransactionToken(listing.IsDonation),
		Status:       listing.Status.String(),
		ExpiresAt:    listing.ExpiresAt,
		CreatedAt:    listing.CreatedAt,
	}
	if listing.PriceCents != nil {
		cents := *listing.PriceCents
		display := decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
		dto.PriceCents = &cents
		dto.Price = &display
	}
	return dto
}

func newListingDTOs(listings []models.Listing) []ListingDTO {
	dtos := make([]ListingDTO, len(listings))
	for i := range listings {
		dtos[i] = NewListingDTO(&listings[i])
	}
	return dtos
}
