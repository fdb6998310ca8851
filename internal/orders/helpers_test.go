package orders

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/threadline-backend/internal/catalog"
	"github.com/angelmondragon/threadline-backend/internal/checkout"
	"github.com/angelmondragon/threadline-backend/internal/payments"
	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/db"
	"github.com/angelmondragon/threadline-backend/pkg/db/dbtest"
	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/metrics"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
)

type fixture struct {
	client  *db.Client
	svc     Service
	gateway *payments.MockGateway
	events  *outbox.Service
	reg     *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	gateway := payments.NewMockGateway()
	events := outbox.NewService(outbox.NewRepository(client.DB()), nil)
	catalogRepo := catalog.NewRepository(client.DB())
	engine, err := checkout.NewEngine(catalogRepo, config.StorefrontConfig{
		SiteOrigin:      "https://shop.example",
		DefaultCurrency: "SEK",
		DefaultLocale:   "sv-SE",
		TaxRateBP:       2500,
	}, nil, logger.Nop())
	require.NoError(t, err)
	reg := prometheus.NewRegistry()

	svc, err := NewService(Options{
		Repo:    NewRepository(client.DB()),
		Tx:      client,
		Outbox:  events,
		Gateway: gateway,
		Pricer:  engine,
		Stock:   catalogRepo,
		Metrics: metrics.NewCommerce(reg),
		Logger:  logger.Nop(),
	})
	require.NoError(t, err)
	return &fixture{client: client, svc: svc, gateway: gateway, events: events, reg: reg}
}

// transitions reads threadline_order_transitions_total for one label pair.
func (f *fixture) transitions(t *testing.T, transition enums.OrderTransition, result string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "threadline_order_transitions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["transition"] == string(transition) && labels["result"] == result {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func (f *fixture) seedOrder(t *testing.T, fulfillment enums.FulfillmentStatus, payment enums.PaymentStatus, total int64) *models.Order {
	t.Helper()
	var max int64
	require.NoError(t, f.client.DB().Model(&models.Order{}).Select("COALESCE(MAX(order_number), 1000)").Scan(&max).Error)
	order := &models.Order{
		OrderNumber:       max + 1,
		FulfillmentStatus: fulfillment,
		PaymentStatus:     payment,
		PaymentProvider:   enums.PaymentProviderMock,
		GatewayReference:  strPtr("mock_auth_1"),
		Currency:          enums.CurrencySEK,
		Locale:            "sv-SE",
		CustomerEmail:     "kund@example.se",
		SubtotalMinor:     total,
		TaxMinor:          total / 5,
		TotalMinor:        total,
	}
	if fulfillment == enums.FulfillmentStatusShipped {
		now := time.Now().UTC()
		order.ShippedAt = &now
		order.ShippingCarrier = strPtr("PostNord")
		order.TrackingNumber = strPtr("PN123SE")
	}
	require.NoError(t, f.client.DB().Create(order).Error)
	return order
}

func (f *fixture) reload(t *testing.T, order *models.Order) *models.Order {
	t.Helper()
	var fresh models.Order
	require.NoError(t, f.client.DB().First(&fresh, "id = ?", order.ID).Error)
	return &fresh
}

func (f *fixture) seedSellable(t *testing.T, sku string, price, stock int64) *models.Variant {
	t.Helper()
	product := &models.Product{Slug: "p-" + sku, Title: "Heavyweight Tee", PriceMinor: int64Ptr(price), Currency: enums.CurrencySEK}
	require.NoError(t, f.client.DB().Create(product).Error)
	require.NoError(t, f.client.DB().Model(product).Update("published", true).Error)

	variant := &models.Variant{ProductID: product.ID, SKU: sku, Title: "Black / M", Stock: stock}
	require.NoError(t, f.client.DB().Create(variant).Error)
	require.NoError(t, f.client.DB().Model(variant).Update("active", true).Error)
	image := models.VariantImage{VariantID: variant.ID, Role: enums.ImageRolePrimary, Status: enums.MediaStatusReady, URL: "https://cdn.example/" + sku + ".jpg"}
	require.NoError(t, f.client.DB().Create(&image).Error)
	return variant
}
