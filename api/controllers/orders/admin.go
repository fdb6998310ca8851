package orders

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/api/middleware"
	"github.com/angelmondragon/threadline-backend/api/responses"
	"github.com/angelmondragon/threadline-backend/api/validators"
	internalorders "github.com/angelmondragon/threadline-backend/internal/orders"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/pagination"
)

type adminOrderService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*internalorders.OrderDetail, error)
	ListOrders(ctx context.Context, filters internalorders.ListFilters, params pagination.Params) (*internalorders.OrderList, error)
	Apply(ctx context.Context, input internalorders.TransitionInput) (*internalorders.Result, error)
}

type transitionRequest struct {
	Carrier        string `json:"carrier" validate:"omitempty,max=64"`
	TrackingNumber string `json:"trackingNumber" validate:"omitempty,max=128"`
	Amount         *int64 `json:"amount" validate:"omitempty,gt=0"`
}

// List returns a page of orders, newest first, optionally filtered by status.
func List(svc adminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		list, err := svc.ListOrders(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns the operator view of one order including its history.
func Detail(svc adminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// Transition applies one operator action. A refused transition is answered
// with 409 and the same {ok, message} body as a successful one.
func Transition(svc adminOrderService, transition enums.OrderTransition, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req, err := decodeTransition(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Apply(r.Context(), internalorders.TransitionInput{
			OrderID:           orderID,
			Transition:        transition,
			Carrier:           validators.SanitizeString(req.Carrier, 64),
			TrackingNumber:    validators.SanitizeString(req.TrackingNumber, 128),
			RefundAmountMinor: req.Amount,
			Actor:             middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if !result.OK {
			status = http.StatusConflict
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// decodeTransition accepts an empty body; only shipping and refund actions carry one.
func decodeTransition(r *http.Request) (transitionRequest, error) {
	var req transitionRequest
	if r.Body == nil {
		return req, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, nil
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return req, err
	}
	return req, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func buildListFilters(r *http.Request) (internalorders.ListFilters, error) {
	var filters internalorders.ListFilters
	fulfillment, ok, err := validators.ParseQueryEnum(r, "fulfillmentStatus", enums.ParseFulfillmentStatus)
	if err != nil {
		return filters, err
	}
	if ok {
		filters.Fulfillment = &fulfillment
	}
	payment, ok, err := validators.ParseQueryEnum(r, "paymentStatus", enums.ParsePaymentStatus)
	if err != nil {
		return filters, err
	}
	if ok {
		filters.Payment = &payment
	}
	return filters, nil
}
