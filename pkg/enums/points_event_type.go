package enums

import "fmt"

// PointsEventType tags a points ledger credit with the submission outcome
// that produced it.
type PointsEventType string

const (
	PointsEventTypeDonationListed PointsEventType = "donation_listed"
	PointsEventTypeSaleListed     PointsEventType = "sale_listed"
)

var validPointsEventTypes = []PointsEventType{
	PointsEventTypeDonationListed,
	PointsEventTypeSaleListed,
}

// String implements fmt.Stringer.
func (t PointsEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PointsEventType.
func (t PointsEventType) IsValid() bool {
	for _, candidate := range validPointsEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePointsEventType converts raw input into a PointsEventType.
func ParsePointsEventType(value string) (PointsEventType, error) {
	for _, candidate := range validPointsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid points event type %q", value)
}
