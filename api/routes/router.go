package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/threadline-backend/api/controllers"
	catalogcontrollers "github.com/angelmondragon/threadline-backend/api/controllers/catalog"
	checkoutcontrollers "github.com/angelmondragon/threadline-backend/api/controllers/checkout"
	ordercontrollers "github.com/angelmondragon/threadline-backend/api/controllers/orders"
	"github.com/angelmondragon/threadline-backend/api/middleware"
	"github.com/angelmondragon/threadline-backend/internal/catalog"
	"github.com/angelmondragon/threadline-backend/internal/checkout"
	"github.com/angelmondragon/threadline-backend/internal/orders"
	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/threadline-backend/pkg/redis"
)

// Dependencies are the collaborators the router hands to controllers and middleware.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	RateLimiter pkgredis.RateLimiter
	Gatherer    prometheus.Gatherer
	Pricer      checkout.Pricer
	Orders      orders.Service
	Catalog     catalog.Service
}

// fulfillmentRoutes are the warehouse actions any staff role may take.
var fulfillmentRoutes = []struct {
	path       string
	transition enums.OrderTransition
}{
	{"/start-picking", enums.OrderTransitionStartPicking},
	{"/undo-start-picking", enums.OrderTransitionUndoStartPicking},
	{"/mark-packed", enums.OrderTransitionMarkPacked},
	{"/undo-packed", enums.OrderTransitionUndoPacked},
	{"/mark-shipped", enums.OrderTransitionMarkShipped},
	{"/undo-shipped", enums.OrderTransitionUndoShipped},
	{"/shipping-info", enums.OrderTransitionUpdateShippingInfo},
}

// paymentRoutes move money and are reserved for admins.
var paymentRoutes = []struct {
	path       string
	transition enums.OrderTransition
}{
	{"/capture", enums.OrderTransitionCapturePayment},
	{"/cancel-authorization", enums.OrderTransitionCancelAuthorization},
	{"/refund", enums.OrderTransitionRefundPayment},
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App),
	)

	idempotent := middleware.Idempotency(deps.Idempotency, cfg.Redis.IdempotencyTTL, logg)
	checkoutLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("checkout", cfg.Redis.CheckoutRateWindow, cfg.Redis.CheckoutRateLimit),
		deps.RateLimiter,
		logg,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(checkoutLimit).Post("/checkout", checkoutcontrollers.Quote(deps.Pricer, logg))
		r.With(checkoutLimit, idempotent).Post("/orders", checkoutcontrollers.PlaceOrder(deps.Orders, logg))
		r.Get("/orders/{orderNumber}", ordercontrollers.PublicOrder(deps.Orders, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.StaffAuth(cfg.JWT, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Get("/orders", ordercontrollers.List(deps.Orders, logg))
		r.Get("/orders/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
		for _, route := range fulfillmentRoutes {
			r.Post("/orders/{orderId}"+route.path, ordercontrollers.Transition(deps.Orders, route.transition, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin))

			for _, route := range paymentRoutes {
				r.With(idempotent).Post("/orders/{orderId}"+route.path, ordercontrollers.Transition(deps.Orders, route.transition, logg))
			}

			r.Get("/variants/{variantId}/checklist", catalogcontrollers.VariantChecklist(deps.Catalog, logg))
			r.Post("/variants/{variantId}/activate", catalogcontrollers.SetVariantActive(deps.Catalog, true, logg))
			r.Post("/variants/{variantId}/deactivate", catalogcontrollers.SetVariantActive(deps.Catalog, false, logg))
			r.Post("/products/{productId}/publish", catalogcontrollers.SetProductPublished(deps.Catalog, true, logg))
			r.Post("/products/{productId}/unpublish", catalogcontrollers.SetProductPublished(deps.Catalog, false, logg))
		})
	})

	return r
}
