package orders

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/threadline-backend/api/responses"
	internalorders "github.com/angelmondragon/threadline-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

type publicOrderReader interface {
	GetPublicOrder(ctx context.Context, orderNumber int64) (*internalorders.PublicOrder, error)
}

// PublicOrder returns the customer-facing view of an order by its number.
func PublicOrder(svc publicOrderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
		number, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || number <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order number"))
			return
		}

		order, err := svc.GetPublicOrder(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
