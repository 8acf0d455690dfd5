// Package rules holds the pure eligibility and lifecycle rules for listings.
// Finalization is total: invalid combinations are normalized, never rejected.
package rules

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
	"github.com/secondserve/secondserve-backend/pkg/enums"
)

// Reward points credited when a submission is accepted. The 5x donation
// premium is an incentive design choice and must not be re-derived.
const (
	DonationRewardPoints = 10
	SaleRewardPoints     = 2
)

// Draft is the raw submission before the rules have run. Callers are
// expected to have validated the free-text fields as non-empty.
type Draft struct {
	Name         string
	Category     string
	Description  string
	LocationText string
	IsSealed     bool
	IsDonation   bool
	Price        string
	ExpiresAt    time.Time
}

// FinalizeDraft normalizes a draft into a listing ready for storage.
// An unsealed item can never be a donation, so the donation request is
// dropped in that case. Donations carry no price and go straight to
// active; sales get a parsed price and wait for approval. The id and
// clock are injected so the transform stays deterministic under test.
func FinalizeDraft(draft Draft, ownerID, id uuid.UUID, now time.Time) models.Listing {
	isDonation := draft.IsDonation && draft.IsSealed

	listing := models.Listing{
		ID:           id,
		OwnerID:      ownerID,
		Name:         draft.Name,
		Category:     draft.Category,
		Description:  draft.Description,
		LocationText: draft.LocationText,
		IsSealed:     draft.IsSealed,
		IsDonation:   isDonation,
		ExpiresAt:    draft.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if isDonation {
		listing.Status = enums.ListingStatusActive
		return listing
	}

	cents := ParsePrice(draft.Price)
	listing.PriceCents = &cents
	listing.Status = enums.ListingStatusPendingApproval
	return listing
}

// ParsePrice converts a price string such as "4.50" into cents.
// Malformed or negative input normalizes to zero.
func ParsePrice(value string) int64 {
	price, err := decimal.NewFromString(value)
	if err != nil || price.IsNegative() {
		return 0
	}
	return price.Shift(2).IntPart()
}

// RewardFor returns the ledger event and points a finalized listing earns.
func RewardFor(listing models.Listing) (enums.PointsEventType, int) {
	if listing.IsDonation {
		return enums.PointsEventTypeDonationListed, DonationRewardPoints
	}
	return enums.PointsEventTypeSaleListed, SaleRewardPoints
}

// TransactionToken is the searchable keyword for the listing kind.
func TransactionToken(isDonation bool) string {
	if isDonation {
		return "donate"
	}
	return "sell"
}

var transitions = map[enums.ListingStatus][]enums.ListingStatus{
	enums.ListingStatusPendingApproval: {enums.ListingStatusActive, enums.ListingStatusRejected},
	enums.ListingStatusActive:          {enums.ListingStatusCompleted},
}

// CanTransition reports whether the status edge is part of the lifecycle.
func CanTransition(from, to enums.ListingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
