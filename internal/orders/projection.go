package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
	"github.com/angelmondragon/threadline-backend/pkg/pagination"
)

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	history, err := s.outbox.History(ctx, outbox.AggregateOrder, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order history")
	}
	return s.project(order, history), nil
}

func (s *service) GetPublicOrder(ctx context.Context, orderNumber int64) (*PublicOrder, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return &PublicOrder{
		OrderNumber:       order.OrderNumber,
		FulfillmentStatus: order.FulfillmentStatus,
		PaymentStatus:     order.PaymentStatus,
		Currency:          order.Currency,
		Totals:            totalsOf(order),
		Shipment:          shipmentOf(order),
		Items:             itemsOf(order),
		CreatedAt:         order.CreatedAt,
	}, nil
}

func (s *service) ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error) {
	window, err := params.Window()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, filters, window)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows)), NextCursor: next}
	for i := range rows {
		order := &rows[i]
		var items int64
		for _, item := range order.Items {
			items += item.Quantity
		}
		list.Orders = append(list.Orders, OrderSummary{
			ID:                order.ID,
			OrderNumber:       order.OrderNumber,
			FulfillmentStatus: order.FulfillmentStatus,
			PaymentStatus:     order.PaymentStatus,
			Currency:          order.Currency,
			Total:             order.TotalMinor,
			TotalItems:        items,
			CustomerEmail:     order.CustomerEmail,
			CreatedAt:         order.CreatedAt,
		})
	}
	return list, nil
}

func (s *service) project(order *models.Order, history []outbox.RecordedEvent) *OrderDetail {
	hasReference := order.GatewayReference != nil && *order.GatewayReference != ""
	return &OrderDetail{
		ID:                   order.ID,
		OrderNumber:          order.OrderNumber,
		FulfillmentStatus:    order.FulfillmentStatus,
		PaymentStatus:        order.PaymentStatus,
		PaymentProvider:      order.PaymentProvider,
		GatewayReference:     order.GatewayReference,
		PendingTransition:    order.PendingTransition,
		Currency:             order.Currency,
		Locale:               order.Locale,
		CustomerEmail:        order.CustomerEmail,
		Totals:               totalsOf(order),
		Shipment:             shipmentOf(order),
		CapturedAt:           order.CapturedAt,
		PaymentCancelledAt:   order.PaymentCancelledAt,
		RefundedAt:           order.RefundedAt,
		Items:                itemsOf(order),
		AvailableTransitions: AvailableTransitions(order.FulfillmentStatus, order.PaymentStatus, hasReference),
		History:              history,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
}

func totalsOf(order *models.Order) Totals {
	return Totals{
		Subtotal: order.SubtotalMinor,
		Shipping: order.ShippingMinor,
		Discount: order.DiscountMinor,
		Tax:      order.TaxMinor,
		Total:    order.TotalMinor,
		Refunded: order.RefundedMinor,
	}
}

func shipmentOf(order *models.Order) Shipment {
	return Shipment{
		Carrier:        order.ShippingCarrier,
		TrackingNumber: order.TrackingNumber,
		ShippedAt:      order.ShippedAt,
	}
}

func itemsOf(order *models.Order) []ItemView {
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemView{
			Position:       item.Position,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			SKU:            item.SKU,
			ProductName:    item.ProductName,
			VariantName:    item.VariantName,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
			LineTotalMinor: item.LineTotalMinor,
			TaxMinor:       item.TaxMinor,
			TaxRateBP:      item.TaxRateBP,
		})
	}
	return items
}
