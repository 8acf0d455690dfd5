package catalog

import (
	"strings"

	"github.com/secondserve/secondserve-backend/internal/rules"
	"github.com/secondserve/secondserve-backend/pkg/db/models"
)

// FilterListings narrows listings to those matching the query. An empty
// query returns the input unchanged. Matching is a case-insensitive
// substring test against the name, the category, or the transaction
// token ("donate" or "sell"); order is preserved.
func FilterListings(listings []models.Listing, query string) []models.Listing {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return listings
	}

	matched := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		if matchesQuery(listing, needle) {
			matched = append(matched, listing)
		}
	}
	return matched
}

func matchesQuery(listing models.Listing, needle string) bool {
	if strings.Contains(strings.ToLower(listing.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(listing.Category), needle) {
		return true
	}
	return strings.Contains(rules.TransactionToken(listing.IsDonation), needle)
}
