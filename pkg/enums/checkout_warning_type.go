package enums

import "fmt"

// CheckoutWarningType enumerates non-fatal advisories attached to a quote.
type CheckoutWarningType string

const (
	CheckoutWarningTypePriceChanged CheckoutWarningType = "PRICE_CHANGED"
)

var validCheckoutWarningTypes = []CheckoutWarningType{
	CheckoutWarningTypePriceChanged,
}

// String implements fmt.Stringer.
func (c CheckoutWarningType) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c CheckoutWarningType) IsValid() bool {
	for _, candidate := range validCheckoutWarningTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutWarningType converts raw input into a CheckoutWarningType.
func ParseCheckoutWarningType(value string) (CheckoutWarningType, error) {
	for _, candidate := range validCheckoutWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout warning type %q", value)
}
