package enums

import "fmt"

// ListingStatus tracks a listing through its lifecycle. Donations enter at
// Active; sales enter at PendingApproval and wait for a review decision.
type ListingStatus string

const (
	ListingStatusPendingApproval ListingStatus = "pending_approval"
	ListingStatusActive          ListingStatus = "active"
	ListingStatusCompleted       ListingStatus = "completed"
	ListingStatusRejected        ListingStatus = "rejected"
)

var validListingStatuses = []ListingStatus{
	ListingStatusPendingApproval,
	ListingStatusActive,
	ListingStatusCompleted,
	ListingStatusRejected,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
