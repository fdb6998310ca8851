package enums

import "fmt"

// FulfillmentStatus is the warehouse-side stage of an order.
type FulfillmentStatus string

const (
	FulfillmentStatusNew         FulfillmentStatus = "NEW"
	FulfillmentStatusReadyToPick FulfillmentStatus = "READY_TO_PICK"
	FulfillmentStatusPicking     FulfillmentStatus = "PICKING"
	FulfillmentStatusPacked      FulfillmentStatus = "PACKED"
	FulfillmentStatusShipped     FulfillmentStatus = "SHIPPED"
	FulfillmentStatusCompleted   FulfillmentStatus = "COMPLETED"
	FulfillmentStatusCancelled   FulfillmentStatus = "CANCELLED"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusNew,
	FulfillmentStatusReadyToPick,
	FulfillmentStatusPicking,
	FulfillmentStatusPacked,
	FulfillmentStatusShipped,
	FulfillmentStatusCompleted,
	FulfillmentStatusCancelled,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the status is known.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
