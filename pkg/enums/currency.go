package enums

import (
	"fmt"
	"strings"
)

// Currency is the ISO 4217 tag stored alongside every minor-unit amount.
type Currency string

const (
	CurrencySEK Currency = "SEK"
	CurrencyNOK Currency = "NOK"
	CurrencyDKK Currency = "DKK"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

var validCurrencies = []Currency{
	CurrencySEK,
	CurrencyNOK,
	CurrencyDKK,
	CurrencyEUR,
	CurrencyUSD,
	CurrencyGBP,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// MinorUnits is the number of decimal places between major and minor units.
// Every supported currency uses two.
func (c Currency) MinorUnits() int32 {
	return 2
}

// ParseCurrency converts a raw string into a Currency. Lowercase input is accepted.
func ParseCurrency(value string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validCurrencies {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
