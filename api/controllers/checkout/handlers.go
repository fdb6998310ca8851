package checkout

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/threadline-backend/api/responses"
	"github.com/angelmondragon/threadline-backend/api/validators"
	internalcheckout "github.com/angelmondragon/threadline-backend/internal/checkout"
	internalorders "github.com/angelmondragon/threadline-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

const storefrontActor = "storefront"

type orderPlacer interface {
	PlaceOrder(ctx context.Context, input internalorders.PlaceOrderInput) (*internalorders.Placement, error)
}

// Quote prices a storefront cart against the live catalog.
func Quote(pricer internalcheckout.Pricer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pricer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout engine unavailable"))
			return
		}

		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart, err := req.toCart()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := pricer.PriceCart(r.Context(), cart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// PlaceOrder re-prices the cart, authorizes payment and stores the order.
func PlaceOrder(svc orderPlacer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req placeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput(strings.TrimSpace(r.Header.Get("Idempotency-Key")), storefrontActor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		placement, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, placement)
	}
}
