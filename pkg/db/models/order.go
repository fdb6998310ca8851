package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// Order is written once, already authorized, and afterwards only changes through
// conditional status updates. PendingTransition marks a gateway call in flight.
type Order struct {
	ID                        uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber               int64                    `gorm:"column:order_number;not null;uniqueIndex"`
	FulfillmentStatus         enums.FulfillmentStatus  `gorm:"column:fulfillment_status;type:text;not null;default:'NEW'"`
	PreviousFulfillmentStatus *enums.FulfillmentStatus `gorm:"column:previous_fulfillment_status;type:text"`
	PaymentStatus             enums.PaymentStatus      `gorm:"column:payment_status;type:text;not null;default:'AUTHORIZED'"`
	PaymentProvider           enums.PaymentProvider    `gorm:"column:payment_provider;type:text;not null"`
	GatewayReference          *string                  `gorm:"column:gateway_reference"`
	Currency                  enums.Currency           `gorm:"column:currency;type:text;not null"`
	Locale                    string                   `gorm:"column:locale;not null"`
	CustomerEmail             string                   `gorm:"column:customer_email;not null"`
	SubtotalMinor             int64                    `gorm:"column:subtotal_minor;not null"`
	ShippingMinor             int64                    `gorm:"column:shipping_minor;not null;default:0"`
	DiscountMinor             int64                    `gorm:"column:discount_minor;not null;default:0"`
	TaxMinor                  int64                    `gorm:"column:tax_minor;not null;default:0"`
	TotalMinor                int64                    `gorm:"column:total_minor;not null"`
	RefundedMinor             *int64                   `gorm:"column:refunded_minor"`
	ShippingCarrier           *string                  `gorm:"column:shipping_carrier"`
	TrackingNumber            *string                  `gorm:"column:tracking_number"`
	ShippedAt                 *time.Time               `gorm:"column:shipped_at"`
	CapturedAt                *time.Time               `gorm:"column:captured_at"`
	PaymentCancelledAt        *time.Time               `gorm:"column:payment_cancelled_at"`
	RefundedAt                *time.Time               `gorm:"column:refunded_at"`
	PendingTransition         *enums.OrderTransition   `gorm:"column:pending_transition;type:text"`
	PendingSince              *time.Time               `gorm:"column:pending_since"`
	Items                     []OrderItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt                 time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                 time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is an immutable snapshot of a priced line at order time.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	Position       int       `gorm:"column:position;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID      uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	SKU            string    `gorm:"column:sku;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	VariantName    string    `gorm:"column:variant_name;not null"`
	Quantity       int64     `gorm:"column:quantity;not null"`
	UnitPriceMinor int64     `gorm:"column:unit_price_minor;not null"`
	LineTotalMinor int64     `gorm:"column:line_total_minor;not null"`
	TaxMinor       int64     `gorm:"column:tax_minor;not null"`
	TaxRateBP      int64     `gorm:"column:tax_rate_bp;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
