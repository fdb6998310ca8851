package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/internal/checkout"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
)

// TransitionInput carries an operator action. Carrier and TrackingNumber are
// read by the shipping transitions; RefundAmountMinor by refunds only.
type TransitionInput struct {
	OrderID           uuid.UUID
	Transition        enums.OrderTransition
	Carrier           string
	TrackingNumber    string
	RefundAmountMinor *int64
	Actor             string
}

// Result is the outcome of a transition. OK=false is an expected outcome
// (guard or gateway failure) and leaves the order unchanged.
type Result struct {
	OK                bool                    `json:"ok"`
	Message           string                  `json:"message"`
	Noop              bool                    `json:"noop,omitempty"`
	Mocked            bool                    `json:"mocked,omitempty"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillmentStatus"`
	PaymentStatus     enums.PaymentStatus     `json:"paymentStatus"`

	outcome outcome
}

// PlaceOrderInput is an accepted cart plus payment and delivery details.
type PlaceOrderInput struct {
	Cart           checkout.Request
	CustomerEmail  string
	ShippingMinor  int64
	DiscountMinor  int64
	PaymentSource  string
	IdempotencyKey string
	Actor          string
}

// Placement is the result of a successful PlaceOrder.
type Placement struct {
	Order    *OrderDetail       `json:"order"`
	Warnings []checkout.Warning `json:"warnings"`
}

// ItemView is an order line as stored at placement.
type ItemView struct {
	Position       int       `json:"position"`
	ProductID      uuid.UUID `json:"productId"`
	VariantID      uuid.UUID `json:"variantId"`
	SKU            string    `json:"sku"`
	ProductName    string    `json:"productName"`
	VariantName    string    `json:"variantName"`
	Quantity       int64     `json:"quantity"`
	UnitPriceMinor int64     `json:"unitPrice"`
	LineTotalMinor int64     `json:"lineTotal"`
	TaxMinor       int64     `json:"taxAmount"`
	TaxRateBP      int64     `json:"taxRate"`
}

// Totals is the monetary breakdown. Tax is already included in Subtotal.
type Totals struct {
	Subtotal int64  `json:"subtotal"`
	Shipping int64  `json:"shipping"`
	Discount int64  `json:"discount"`
	Tax      int64  `json:"tax"`
	Total    int64  `json:"total"`
	Refunded *int64 `json:"refunded,omitempty"`
}

// Shipment holds carrier details once an order is shipped.
type Shipment struct {
	Carrier        *string    `json:"carrier,omitempty"`
	TrackingNumber *string    `json:"trackingNumber,omitempty"`
	ShippedAt      *time.Time `json:"shippedAt,omitempty"`
}

// OrderDetail is the admin projection of an order.
type OrderDetail struct {
	ID                   uuid.UUID                `json:"id"`
	OrderNumber          int64                    `json:"orderNumber"`
	FulfillmentStatus    enums.FulfillmentStatus  `json:"fulfillmentStatus"`
	PaymentStatus        enums.PaymentStatus      `json:"paymentStatus"`
	PaymentProvider      enums.PaymentProvider    `json:"paymentProvider"`
	GatewayReference     *string                  `json:"gatewayReference,omitempty"`
	PendingTransition    *enums.OrderTransition   `json:"pendingTransition,omitempty"`
	Currency             enums.Currency           `json:"currency"`
	Locale               string                   `json:"locale"`
	CustomerEmail        string                   `json:"customerEmail"`
	Totals               Totals                   `json:"totals"`
	Shipment             Shipment                 `json:"shipment"`
	CapturedAt           *time.Time               `json:"capturedAt,omitempty"`
	PaymentCancelledAt   *time.Time               `json:"paymentCancelledAt,omitempty"`
	RefundedAt           *time.Time               `json:"refundedAt,omitempty"`
	Items                []ItemView               `json:"items"`
	AvailableTransitions []enums.OrderTransition  `json:"availableTransitions"`
	History              []outbox.RecordedEvent   `json:"history,omitempty"`
	CreatedAt            time.Time                `json:"createdAt"`
	UpdatedAt            time.Time                `json:"updatedAt"`
}

// PublicOrder is the customer-facing projection. It omits gateway and audit data.
type PublicOrder struct {
	OrderNumber       int64                   `json:"orderNumber"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillmentStatus"`
	PaymentStatus     enums.PaymentStatus     `json:"paymentStatus"`
	Currency          enums.Currency          `json:"currency"`
	Totals            Totals                  `json:"totals"`
	Shipment          Shipment                `json:"shipment"`
	Items             []ItemView              `json:"items"`
	CreatedAt         time.Time               `json:"createdAt"`
}

// OrderSummary is one row of the admin list.
type OrderSummary struct {
	ID                uuid.UUID               `json:"id"`
	OrderNumber       int64                   `json:"orderNumber"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillmentStatus"`
	PaymentStatus     enums.PaymentStatus     `json:"paymentStatus"`
	Currency          enums.Currency          `json:"currency"`
	Total             int64                   `json:"total"`
	TotalItems        int64                   `json:"totalItems"`
	CustomerEmail     string                  `json:"customerEmail"`
	CreatedAt         time.Time               `json:"createdAt"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// TransitionEvent is the payload of order.transitioned and order.gateway_failed.
type TransitionEvent struct {
	OrderID         uuid.UUID               `json:"orderId"`
	OrderNumber     int64                   `json:"orderNumber"`
	Transition      enums.OrderTransition   `json:"transition"`
	FromFulfillment enums.FulfillmentStatus `json:"fromFulfillment"`
	ToFulfillment   enums.FulfillmentStatus `json:"toFulfillment"`
	FromPayment     enums.PaymentStatus     `json:"fromPayment"`
	ToPayment       enums.PaymentStatus     `json:"toPayment"`
	AmountMinor     int64                   `json:"amount,omitempty"`
	Message         string                  `json:"message,omitempty"`
}

// PlacedEvent is the payload of order.placed.
type PlacedEvent struct {
	OrderID     uuid.UUID             `json:"orderId"`
	OrderNumber int64                 `json:"orderNumber"`
	Provider    enums.PaymentProvider `json:"provider"`
	Currency    enums.Currency        `json:"currency"`
	Total       int64                 `json:"total"`
	Items       int                   `json:"items"`
}
