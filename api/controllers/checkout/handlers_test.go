package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalcheckout "github.com/angelmondragon/threadline-backend/internal/checkout"
	internalorders "github.com/angelmondragon/threadline-backend/internal/orders"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

type stubPricer struct {
	got   internalcheckout.Request
	quote *internalcheckout.Quote
	err   error
}

func (s *stubPricer) PriceCart(_ context.Context, req internalcheckout.Request) (*internalcheckout.Quote, error) {
	s.got = req
	return s.quote, s.err
}

type stubPlacer struct {
	got       internalorders.PlaceOrderInput
	placement *internalorders.Placement
	err       error
}

func (s *stubPlacer) PlaceOrder(_ context.Context, input internalorders.PlaceOrderInput) (*internalorders.Placement, error) {
	s.got = input
	return s.placement, s.err
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestQuoteMapsRequest(t *testing.T) {
	variantID := uuid.New()
	pricer := &stubPricer{quote: &internalcheckout.Quote{
		Currency:       enums.CurrencySEK,
		Locale:         "sv-SE",
		OrderAmount:    70000,
		OrderTaxAmount: 14000,
		LineItems:      []internalcheckout.LineItem{},
		Warnings:       []internalcheckout.Warning{},
	}}

	body := `{"currency":"sek","locale":"sv-SE","items":[{"variantId":"` + variantID.String() + `","quantity":2,"clientUnitPrice":34900},{"sku":"TEE-BLK-M","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Quote(pricer, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, enums.CurrencySEK, pricer.got.Currency)
	require.Len(t, pricer.got.Items, 2)
	require.NotNil(t, pricer.got.Items[0].VariantID)
	assert.Equal(t, variantID, *pricer.got.Items[0].VariantID)
	require.NotNil(t, pricer.got.Items[0].ClientUnitPrice)
	assert.Equal(t, int64(34900), *pricer.got.Items[0].ClientUnitPrice)
	assert.Nil(t, pricer.got.Items[1].VariantID)
	assert.Equal(t, "TEE-BLK-M", pricer.got.Items[1].SKU)

	var payload struct {
		Data internalcheckout.Quote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, int64(70000), payload.Data.OrderAmount)
	assert.Equal(t, int64(14000), payload.Data.OrderTaxAmount)
}

func TestQuoteRejectsMalformedVariantID(t *testing.T) {
	pricer := &stubPricer{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"currency":"SEK","items":[{"variantId":"abc","quantity":1}]}`))
	resp := httptest.NewRecorder()
	Quote(pricer, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Nil(t, pricer.got.Items)
}

func TestQuotePropagatesRejectionCode(t *testing.T) {
	pricer := &stubPricer{err: pkgerrors.New(pkgerrors.CodeVariantInactive, "variant is not available for purchase")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"currency":"SEK","items":[{"sku":"OLD-1","quantity":1}]}`))
	resp := httptest.NewRecorder()
	Quote(pricer, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, string(pkgerrors.CodeVariantInactive), body.Error.Code)
}

func TestPlaceOrderPassesIdempotencyKey(t *testing.T) {
	placer := &stubPlacer{placement: &internalorders.Placement{
		Order: &internalorders.OrderDetail{OrderNumber: 1001, PaymentStatus: enums.PaymentStatusAuthorized},
	}}

	body := `{"currency":"SEK","locale":"sv-SE","items":[{"sku":"TEE-BLK-M","quantity":1}],"email":"kund@example.se","shipping":4900,"discount":0,"paymentSourceId":"cnon:card-nonce-ok"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "cart-42")
	resp := httptest.NewRecorder()
	PlaceOrder(placer, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "cart-42", placer.got.IdempotencyKey)
	assert.Equal(t, "kund@example.se", placer.got.CustomerEmail)
	assert.Equal(t, int64(4900), placer.got.ShippingMinor)
	assert.Equal(t, "cnon:card-nonce-ok", placer.got.PaymentSource)
	assert.Equal(t, storefrontActor, placer.got.Actor)
	assert.Equal(t, enums.CurrencySEK, placer.got.Cart.Currency)
}

func TestPlaceOrderValidatesBody(t *testing.T) {
	placer := &stubPlacer{}
	body := `{"currency":"SEK","items":[{"sku":"TEE-BLK-M","quantity":1}],"email":"not-an-email","shipping":-1,"paymentSourceId":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	resp := httptest.NewRecorder()
	PlaceOrder(placer, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, placer.got.CustomerEmail)
}

func TestPlaceOrderSurfacesDecline(t *testing.T) {
	placer := &stubPlacer{err: pkgerrors.New(pkgerrors.CodePaymentDeclined, "payment authorization failed")}
	body := `{"currency":"SEK","items":[{"sku":"TEE-BLK-M","quantity":1}],"email":"kund@example.se","shipping":0,"paymentSourceId":"cnon:card-nonce-declined"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	resp := httptest.NewRecorder()
	PlaceOrder(placer, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusPaymentRequired, resp.Code)
}
