package checkout

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/api/validators"
	internalcheckout "github.com/angelmondragon/threadline-backend/internal/checkout"
	internalorders "github.com/angelmondragon/threadline-backend/internal/orders"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

type lineRequest struct {
	VariantID       *string `json:"variantId" validate:"omitempty,uuid"`
	SKU             string  `json:"sku" validate:"omitempty,max=64"`
	Quantity        int64   `json:"quantity"`
	ClientUnitPrice *int64  `json:"clientUnitPrice"`
}

type quoteRequest struct {
	Currency string        `json:"currency" validate:"required,len=3"`
	Locale   string        `json:"locale" validate:"omitempty,max=16"`
	Items    []lineRequest `json:"items" validate:"dive"`
}

type placeOrderRequest struct {
	quoteRequest
	Email           string `json:"email" validate:"required,email"`
	Shipping        int64  `json:"shipping" validate:"gte=0"`
	Discount        int64  `json:"discount" validate:"gte=0"`
	PaymentSourceID string `json:"paymentSourceId" validate:"required,max=255"`
}

// toCart maps the wire payload onto the pricing request. Quantity and
// reference rules are enforced by the engine so rejections carry line positions.
func (q quoteRequest) toCart() (internalcheckout.Request, error) {
	items := make([]internalcheckout.LineRequest, 0, len(q.Items))
	for i, line := range q.Items {
		item := internalcheckout.LineRequest{
			SKU:             strings.TrimSpace(line.SKU),
			Quantity:        line.Quantity,
			ClientUnitPrice: line.ClientUnitPrice,
		}
		if line.VariantID != nil && strings.TrimSpace(*line.VariantID) != "" {
			id, err := uuid.Parse(strings.TrimSpace(*line.VariantID))
			if err != nil {
				return internalcheckout.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id").
					WithDetails(map[string]any{"position": i})
			}
			item.VariantID = &id
		}
		items = append(items, item)
	}
	return internalcheckout.Request{
		Currency: enums.Currency(strings.ToUpper(strings.TrimSpace(q.Currency))),
		Locale:   validators.SanitizeString(q.Locale, 16),
		Items:    items,
	}, nil
}

func (p placeOrderRequest) toInput(idempotencyKey, actor string) (internalorders.PlaceOrderInput, error) {
	cart, err := p.toCart()
	if err != nil {
		return internalorders.PlaceOrderInput{}, err
	}
	return internalorders.PlaceOrderInput{
		Cart:           cart,
		CustomerEmail:  validators.SanitizeString(p.Email, 254),
		ShippingMinor:  p.Shipping,
		DiscountMinor:  p.Discount,
		PaymentSource:  strings.TrimSpace(p.PaymentSourceID),
		IdempotencyKey: idempotencyKey,
		Actor:          actor,
	}, nil
}
