// Package money holds the integer minor-unit arithmetic shared by checkout and
// order handling. Amounts never pass through floating point.
package money

import (
	"fmt"
	"math/bits"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

const (
	// MaxSafeAmount is the largest amount that survives a round trip through
	// JSON number parsers backed by IEEE-754 doubles (2^53 - 1).
	MaxSafeAmount int64 = 1<<53 - 1

	// BasisPointsDenominator is 100% expressed in basis points.
	BasisPointsDenominator int64 = 10000

	// MaxTaxRateBP caps rates at 100%.
	MaxTaxRateBP int64 = 10000
)

// Amount is a minor-unit integer tagged with its currency.
type Amount struct {
	Minor    int64          `json:"amount"`
	Currency enums.Currency `json:"currency"`
}

// ComputeTaxPortion returns the tax embedded in a tax-inclusive total:
// round(total * rate / (10000 + rate)), ties rounding half up.
// The result satisfies 0 <= tax <= total.
func ComputeTaxPortion(totalInclTax, taxRateBP int64) (int64, error) {
	if totalInclTax < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "total must be non-negative").
			WithDetails(map[string]any{"total": totalInclTax})
	}
	if taxRateBP < 0 || taxRateBP > MaxTaxRateBP {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "tax rate out of range").
			WithDetails(map[string]any{"taxRateBasisPoints": taxRateBP})
	}
	if totalInclTax == 0 || taxRateBP == 0 {
		return 0, nil
	}

	// Half-up division in 128 bits: floor((2*total*rate + denom) / (2*denom)).
	denom := uint64(BasisPointsDenominator + taxRateBP)
	hi, lo := bits.Mul64(uint64(totalInclTax), 2*uint64(taxRateBP))
	lo, carry := bits.Add64(lo, denom, 0)
	hi += carry
	quo, _ := bits.Div64(hi, lo, 2*denom)
	return int64(quo), nil
}

// ComputeLineTotal multiplies a unit price by a quantity, rejecting results
// that leave the safe integer range instead of wrapping.
func ComputeLineTotal(unitPrice, quantity int64) (int64, error) {
	if unitPrice < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative").
			WithDetails(map[string]any{"unitPrice": unitPrice})
	}
	if quantity < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative").
			WithDetails(map[string]any{"quantity": quantity})
	}
	if unitPrice == 0 || quantity == 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(uint64(unitPrice), uint64(quantity))
	if hi != 0 || lo > uint64(MaxSafeAmount) {
		return 0, overflowError("line total", unitPrice, quantity)
	}
	return int64(lo), nil
}

// Add sums non-negative amounts with the same overflow rule as ComputeLineTotal.
func Add(values ...int64) (int64, error) {
	var total int64
	for _, v := range values {
		if v < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "amounts must be non-negative").
				WithDetails(map[string]any{"amount": v})
		}
		if v > MaxSafeAmount-total {
			return 0, overflowError("sum", total, v)
		}
		total += v
	}
	return total, nil
}

// OrderTotal applies subtotal + shipping - discount. The discount may not push
// the total below zero.
func OrderTotal(subtotal, shipping, discount int64) (int64, error) {
	gross, err := Add(subtotal, shipping)
	if err != nil {
		return 0, err
	}
	if discount < 0 || discount > gross {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between zero and subtotal plus shipping").
			WithDetails(map[string]any{"discount": discount, "subtotal": subtotal, "shipping": shipping})
	}
	return gross - discount, nil
}

// FormatMajor renders a minor-unit amount in major units, e.g. 59000 SEK -> "590.00".
func FormatMajor(minor int64, currency enums.Currency) string {
	places := currency.MinorUnits()
	return decimal.New(minor, -places).StringFixed(places)
}

// String renders the amount with its currency code.
func (a Amount) String() string {
	return fmt.Sprintf("%s %s", FormatMajor(a.Minor, a.Currency), a.Currency)
}

func overflowError(op string, a, b int64) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s exceeds the safe integer range", op)).
		WithDetails(map[string]any{"left": a, "right": b, "max": MaxSafeAmount})
}
