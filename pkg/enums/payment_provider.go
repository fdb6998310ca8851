package enums

import "fmt"

// PaymentProvider names the gateway that holds an order's authorization.
type PaymentProvider string

const (
	PaymentProviderSquare PaymentProvider = "square"
	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderMock   PaymentProvider = "mock"
)

var validPaymentProviders = []PaymentProvider{
	PaymentProviderSquare,
	PaymentProviderStripe,
	PaymentProviderMock,
}

// String implements fmt.Stringer.
func (p PaymentProvider) String() string {
	return string(p)
}

// IsValid reports whether the provider is known.
func (p PaymentProvider) IsValid() bool {
	for _, candidate := range validPaymentProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentProvider converts raw input into a PaymentProvider.
func ParsePaymentProvider(value string) (PaymentProvider, error) {
	for _, candidate := range validPaymentProviders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment provider %q", value)
}
