package checkout

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// LineRequest references a variant by id or SKU. When both are present the id wins.
type LineRequest struct {
	VariantID       *uuid.UUID
	SKU             string
	Quantity        int64
	ClientUnitPrice *int64
}

// Request is a cart submitted for pricing.
type Request struct {
	Currency enums.Currency
	Locale   string
	Items    []LineRequest
}

// MerchantData is the catalog reference captured when the line was priced.
type MerchantData struct {
	ProductID uuid.UUID `json:"productId"`
	VariantID uuid.UUID `json:"variantId"`
}

// LineItem is one priced cart line. Amounts are minor units; TaxRate is basis points.
type LineItem struct {
	Reference      string       `json:"reference"`
	Name           string       `json:"name"`
	VariantName    string       `json:"variantName"`
	Quantity       int64        `json:"quantity"`
	UnitPrice      int64        `json:"unitPrice"`
	TaxRate        int64        `json:"taxRate"`
	TotalAmount    int64        `json:"totalAmount"`
	TotalTaxAmount int64        `json:"totalTaxAmount"`
	ImageURL       string       `json:"imageUrl,omitempty"`
	ProductURL     string       `json:"productUrl"`
	MerchantData   MerchantData `json:"merchantData"`
}

// Warning is a non-fatal advisory attached to a successful quote.
type Warning struct {
	Type         enums.CheckoutWarningType `json:"type"`
	Position     int                       `json:"position"`
	Reference    string                    `json:"reference"`
	OldUnitPrice int64                     `json:"oldUnitPrice"`
	NewUnitPrice int64                     `json:"newUnitPrice"`
	Message      string                    `json:"message"`
}

// Quote is the priced cart. OrderAmount and OrderTaxAmount are the sums of the
// line totals and line tax portions.
type Quote struct {
	Currency       enums.Currency `json:"currency"`
	Locale         string         `json:"locale"`
	OrderAmount    int64          `json:"orderAmount"`
	OrderTaxAmount int64          `json:"orderTaxAmount"`
	LineItems      []LineItem     `json:"lineItems"`
	Warnings       []Warning      `json:"warnings"`
}
