package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
)

// LineDTO is one cart line joined with its listing snapshot.
type LineDTO struct {
	ListingID      uuid.UUID `json:"listing_id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	IsDonation     bool      `json:"is_donation"`
	PriceCents     *int64    `json:"price_cents,omitempty"`
	Price          *string   `json:"price,omitempty"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// CartDTO is the full cart payload returned to clients.
type CartDTO struct {
	Items      []LineDTO `json:"items"`
	TotalCents int64     `json:"total_cents"`
	Total      string    `json:"total"`
}

// CheckoutResult confirms a placed order.
type CheckoutResult struct {
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
	Message    string `json:"message"`
}

// newLineDTO computes a line total from the stored listing. Donation
// lines always contribute zero regardless of any stray price.
func newLineDTO(item models.CartItem) LineDTO {
	line := LineDTO{
		ListingID: item.ListingID,
		Quantity:  item.Quantity,
	}
	listing := item.Listing
	if listing == nil {
		return line
	}

	line.Name = listing.Name
	line.Category = listing.Category
	line.IsDonation = listing.IsDonation
	if listing.PriceCents != nil {
		cents := *listing.PriceCents
		display := formatDollars(cents)
		line.PriceCents = &cents
		line.Price = &display
	}
	if !listing.IsDonation && listing.PriceCents != nil {
		line.LineTotalCents = *listing.PriceCents * int64(item.Quantity)
	}
	return line
}

func formatDollars(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}
