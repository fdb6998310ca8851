package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/internal/checkout"
	"github.com/angelmondragon/threadline-backend/internal/payments"
	"github.com/angelmondragon/threadline-backend/pkg/db"
	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/metrics"
	"github.com/angelmondragon/threadline-backend/pkg/money"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
	"github.com/angelmondragon/threadline-backend/pkg/pagination"
)

const placeOrderAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	History(ctx context.Context, aggregateType outbox.AggregateType, aggregateID uuid.UUID, types ...outbox.EventType) ([]outbox.RecordedEvent, error)
}

// StockCommitter takes stock for a placed order inside its transaction.
type StockCommitter interface {
	CommitStock(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int64) error
}

// Service drives orders from placement through the fulfillment state machine.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Placement, error)
	Apply(ctx context.Context, input TransitionInput) (*Result, error)

	StartPicking(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error)
	UndoStartPicking(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error)
	MarkPacked(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error)
	UndoPacked(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error)
	MarkShipped(ctx context.Context, orderID uuid.UUID, carrier, tracking, actor string) (*Result, error)
	UndoShipped(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error)
	UpdateShippingInfo(ctx context.Context, orderID uuid.UUID, carrier, tracking, actor string) (*Result, error)
	CapturePayment(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error)
	CancelAuthorization(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error)
	RefundPayment(ctx context.Context, orderID uuid.UUID, amountMinor *int64, actor string) (*Result, error)

	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	GetPublicOrder(ctx context.Context, orderNumber int64) (*PublicOrder, error)
	ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error)
}

// Options collects the service collaborators.
type Options struct {
	Repo    *Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Gateway payments.Gateway
	Pricer  checkout.Pricer
	Stock   StockCommitter
	Metrics *metrics.Commerce
	Logger  *logger.Logger
	// ClaimTTL is how long an in-flight gateway claim blocks other requests
	// before it is considered abandoned.
	ClaimTTL time.Duration
	Now      func() time.Time
}

type service struct {
	repo     *Repository
	tx       txRunner
	outbox   outboxPublisher
	gateway  payments.Gateway
	pricer   checkout.Pricer
	stock    StockCommitter
	metrics  *metrics.Commerce
	logg     *logger.Logger
	claimTTL time.Duration
	now      func() time.Time
}

var errLostRace = errors.New("order changed concurrently")

// NewService validates the collaborators and builds the order service.
func NewService(opts Options) (Service, error) {
	if opts.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if opts.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if opts.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if opts.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if opts.Pricer == nil {
		return nil, fmt.Errorf("checkout pricer required")
	}
	if opts.Stock == nil {
		return nil, fmt.Errorf("stock committer required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.ClaimTTL <= 0 {
		opts.ClaimTTL = 2 * payments.DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     opts.Repo,
		tx:       opts.Tx,
		outbox:   opts.Outbox,
		gateway:  opts.Gateway,
		pricer:   opts.Pricer,
		stock:    opts.Stock,
		metrics:  opts.Metrics,
		logg:     opts.Logger,
		claimTTL: opts.ClaimTTL,
		now:      opts.Now,
	}, nil
}

func (s *service) StartPicking(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionStartPicking, Actor: actor})
}

func (s *service) UndoStartPicking(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionUndoStartPicking, Actor: actor})
}

func (s *service) MarkPacked(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionMarkPacked, Actor: actor})
}

func (s *service) UndoPacked(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionUndoPacked, Actor: actor})
}

func (s *service) MarkShipped(ctx context.Context, orderID uuid.UUID, carrier, tracking, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionMarkShipped, Carrier: carrier, TrackingNumber: tracking, Actor: actor})
}

func (s *service) UndoShipped(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionUndoShipped, Actor: actor})
}

func (s *service) UpdateShippingInfo(ctx context.Context, orderID uuid.UUID, carrier, tracking, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionUpdateShippingInfo, Carrier: carrier, TrackingNumber: tracking, Actor: actor})
}

func (s *service) CapturePayment(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionCapturePayment, Actor: actor})
}

func (s *service) CancelAuthorization(ctx context.Context, orderID uuid.UUID, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionCancelAuthorization, Actor: actor})
}

func (s *service) RefundPayment(ctx context.Context, orderID uuid.UUID, amountMinor *int64, actor string) (*Result, error) {
	return s.Apply(ctx, TransitionInput{OrderID: orderID, Transition: enums.OrderTransitionRefundPayment, RefundAmountMinor: amountMinor, Actor: actor})
}

// Apply runs one transition. Input problems, unknown orders and persistence
// failures are errors; guard and gateway failures are a Result with OK=false.
func (s *service) Apply(ctx context.Context, input TransitionInput) (*Result, error) {
	rule, ok := RuleFor(input.Transition)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown transition").
			WithDetails(map[string]any{"transition": input.Transition})
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	input.Carrier = strings.TrimSpace(input.Carrier)
	input.TrackingNumber = strings.TrimSpace(input.TrackingNumber)
	if rule.NeedsShipping && (input.Carrier == "" || input.TrackingNumber == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier and tracking number are required")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{"transition": string(input.Transition), "actor": input.Actor})

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, mapLookupError(err)
	}

	var result *Result
	if rule.Gateway != "" {
		result, err = s.applyGateway(ctx, rule, order, input)
	} else {
		result, err = s.applyLocal(ctx, rule, order, input)
	}
	if err != nil {
		s.metrics.IncTransition(string(input.Transition), string(outcomeError))
		return nil, err
	}
	s.metrics.IncTransition(string(input.Transition), string(result.outcomeLabel()))
	return result, nil
}

func (s *service) applyLocal(ctx context.Context, rule Rule, order *models.Order, input TransitionInput) (*Result, error) {
	if !rule.Allows(order.FulfillmentStatus, order.PaymentStatus) {
		return rejected(outcomeGuard, rule.GuardFailMessage, order), nil
	}
	if order.PendingTransition != nil {
		return rejected(outcomeConflict, fmt.Sprintf("%s is in progress", *order.PendingTransition), order), nil
	}

	now := s.now()
	next := rule.Next(order.FulfillmentStatus, order.PreviousFulfillmentStatus)
	updates := map[string]any{
		"fulfillment_status": next,
		"updated_at":         now,
	}
	switch rule.Transition {
	case enums.OrderTransitionStartPicking:
		updates["previous_fulfillment_status"] = order.FulfillmentStatus
	case enums.OrderTransitionUndoStartPicking:
		updates["previous_fulfillment_status"] = nil
	case enums.OrderTransitionMarkShipped:
		updates["shipping_carrier"] = input.Carrier
		updates["tracking_number"] = input.TrackingNumber
		updates["shipped_at"] = now
	case enums.OrderTransitionUndoShipped:
		updates["shipped_at"] = nil
	case enums.OrderTransitionUpdateShippingInfo:
		updates["shipping_carrier"] = input.Carrier
		updates["tracking_number"] = input.TrackingNumber
	}

	expect := Expectation{Fulfillment: order.FulfillmentStatus, Payment: order.PaymentStatus}
	event := transitionEvent(order, rule.Transition, next, order.PaymentStatus, 0, "")
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		changed, err := s.repo.WithTx(tx).UpdateIf(ctx, order.ID, expect, updates)
		if err != nil {
			return err
		}
		if !changed {
			return errLostRace
		}
		return s.emit(ctx, tx, outbox.EventOrderTransitioned, order.ID, input.Actor, event)
	})
	if errors.Is(err, errLostRace) {
		return s.afterLostRace(ctx, rule, order.ID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
	}

	s.logg.Info(ctx, "orders.transition_applied")
	return &Result{
		OK:                true,
		Message:           fmt.Sprintf("order %d is %s", order.OrderNumber, next),
		FulfillmentStatus: next,
		PaymentStatus:     order.PaymentStatus,
	}, nil
}

func (s *service) applyGateway(ctx context.Context, rule Rule, order *models.Order, input TransitionInput) (*Result, error) {
	if rule.AlreadyApplied(order.PaymentStatus) {
		return noop(outcomeOK, rule.AlreadyAppliedMsg, order), nil
	}
	if !rule.Allows(order.FulfillmentStatus, order.PaymentStatus) {
		return rejected(outcomeGuard, rule.GuardFailMessage, order), nil
	}
	if order.GatewayReference == nil || strings.TrimSpace(*order.GatewayReference) == "" {
		return rejected(outcomeGuard, "order has no payment gateway reference", order), nil
	}

	amount := order.TotalMinor
	if rule.Transition == enums.OrderTransitionRefundPayment && input.RefundAmountMinor != nil {
		amount = *input.RefundAmountMinor
	}
	if rule.Transition != enums.OrderTransitionCancelAuthorization && (amount <= 0 || amount > order.TotalMinor) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive and no more than the order total").
			WithDetails(map[string]any{"amount": amount, "total": order.TotalMinor})
	}

	// The gateway call and its bookkeeping must finish even if the caller goes away.
	detached := context.WithoutCancel(ctx)
	now := s.now()
	expect := Expectation{Fulfillment: order.FulfillmentStatus, Payment: order.PaymentStatus}
	claimed, err := s.repo.Claim(detached, order.ID, expect, rule.Transition, now, now.Add(-s.claimTTL))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim order")
	}
	if !claimed {
		return s.afterLostRace(ctx, rule, order.ID)
	}

	req := payments.Request{
		Reference:      *order.GatewayReference,
		AmountMinor:    amount,
		Currency:       order.Currency,
		IdempotencyKey: payments.IdempotencyKey(order.ID.String(), rule.Gateway),
	}
	gwResult, gwErr := s.callGateway(detached, rule.Gateway, req)
	if gwErr != nil {
		return s.recordGatewayFailure(detached, rule, order, input, amount, gwErr)
	}

	next := rule.Next(order.FulfillmentStatus, order.PreviousFulfillmentStatus)
	finished := s.now()
	updates := map[string]any{
		"payment_status":     rule.NextPayment,
		"fulfillment_status": next,
		"pending_transition": nil,
		"pending_since":      nil,
		"updated_at":         finished,
	}
	switch rule.NextPayment {
	case enums.PaymentStatusCaptured:
		updates["captured_at"] = finished
	case enums.PaymentStatusCancelled:
		updates["payment_cancelled_at"] = finished
	case enums.PaymentStatusRefunded:
		updates["refunded_at"] = finished
		updates["refunded_minor"] = amount
	}

	claimedExpect := expect
	claimedExpect.ClaimedBy = rule.Transition
	event := transitionEvent(order, rule.Transition, next, rule.NextPayment, amount, "")
	err = s.tx.WithTx(detached, func(tx *gorm.DB) error {
		changed, err := s.repo.WithTx(tx).UpdateIf(detached, order.ID, claimedExpect, updates)
		if err != nil {
			return err
		}
		if !changed {
			return errLostRace
		}
		return s.emit(detached, tx, outbox.EventOrderTransitioned, order.ID, input.Actor, event)
	})
	if err != nil {
		// The gateway has moved money but the order row could not follow.
		s.logg.Error(detached, "orders.gateway_state_divergence", err)
		if errors.Is(err, errLostRace) {
			return rejected(outcomeConflict, fmt.Sprintf("%s succeeded at the gateway but the order changed; reconcile manually", rule.Gateway), order), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record gateway result")
	}

	s.logg.Info(ctx, "orders.payment_transition_applied")
	return &Result{
		OK:                true,
		Message:           fmt.Sprintf("payment %s", strings.ToLower(string(rule.NextPayment))),
		Mocked:            gwResult.Mocked,
		FulfillmentStatus: next,
		PaymentStatus:     rule.NextPayment,
	}, nil
}

func (s *service) callGateway(ctx context.Context, op payments.Operation, req payments.Request) (payments.Result, error) {
	switch op {
	case payments.OperationCapture:
		return s.gateway.Capture(ctx, req)
	case payments.OperationCancel:
		return s.gateway.Cancel(ctx, req)
	case payments.OperationRefund:
		return s.gateway.Refund(ctx, req)
	default:
		return payments.Result{}, fmt.Errorf("unsupported gateway operation %q", op)
	}
}

// recordGatewayFailure releases the claim and appends an audit row. The order
// statuses are left as they were.
func (s *service) recordGatewayFailure(ctx context.Context, rule Rule, order *models.Order, input TransitionInput, amount int64, gwErr error) (*Result, error) {
	message := fmt.Sprintf("%s failed: %s", rule.Gateway, payments.Message(gwErr))
	event := transitionEvent(order, rule.Transition, order.FulfillmentStatus, order.PaymentStatus, amount, message)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).ReleaseClaim(ctx, order.ID, rule.Transition); err != nil {
			return err
		}
		return s.emit(ctx, tx, outbox.EventOrderGatewayFailed, order.ID, input.Actor, event)
	})
	if err != nil {
		s.logg.Error(ctx, "orders.gateway_failure_not_recorded", err)
	}
	s.logg.Warn(s.logg.WithField(ctx, "gateway_message", message), "orders.gateway_failed")
	return rejected(outcomeGatewayFailed, message, order), nil
}

// afterLostRace re-reads the order after a conditional write matched no row.
func (s *service) afterLostRace(ctx context.Context, rule Rule, orderID uuid.UUID) (*Result, error) {
	current, err := s.repo.FindByID(context.WithoutCancel(ctx), orderID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if rule.AlreadyApplied(current.PaymentStatus) {
		return noop(outcomeConflict, rule.AlreadyAppliedMsg, current), nil
	}
	if current.PendingTransition != nil {
		return rejected(outcomeConflict, fmt.Sprintf("%s is in progress", *current.PendingTransition), current), nil
	}
	return rejected(outcomeConflict, fmt.Sprintf("order changed concurrently: %s", rule.GuardFailMessage), current), nil
}

// PlaceOrder re-prices the cart, authorizes the total and then stores the
// order with its items while taking stock. If storing fails the authorization
// is cancelled again.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Placement, error) {
	input.CustomerEmail = strings.TrimSpace(input.CustomerEmail)
	if input.CustomerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if strings.TrimSpace(input.PaymentSource) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source required")
	}
	if input.ShippingMinor < 0 || input.DiscountMinor < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping and discount must be non-negative")
	}

	quote, err := s.pricer.PriceCart(ctx, input.Cart)
	if err != nil {
		return nil, err
	}
	total, err := money.OrderTotal(quote.OrderAmount, input.ShippingMinor, input.DiscountMinor)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	detached := context.WithoutCancel(ctx)
	authKey := strings.TrimSpace(input.IdempotencyKey)
	if authKey == "" {
		authKey = uuid.NewString()
	}
	auth, err := s.gateway.Authorize(detached, payments.AuthorizeRequest{
		AmountMinor:    total,
		Currency:       quote.Currency,
		SourceID:       input.PaymentSource,
		CustomerEmail:  input.CustomerEmail,
		Reference:      authKey,
		IdempotencyKey: "checkout-" + authKey,
	})
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeValidation {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePaymentDeclined, err, "payment authorization failed").
			WithDetails(map[string]any{"message": payments.Message(err)})
	}

	order := buildOrder(quote, input, total, s.gateway.Provider(), auth.Reference)
	if err := s.persistPlacement(detached, order, input.Actor); err != nil {
		cancelReq := payments.Request{
			Reference:      auth.Reference,
			AmountMinor:    total,
			Currency:       quote.Currency,
			IdempotencyKey: "checkout-cancel-" + authKey,
		}
		if _, cancelErr := s.gateway.Cancel(detached, cancelReq); cancelErr != nil {
			s.logg.Error(s.logg.WithField(detached, "gateway_reference", auth.Reference), "orders.authorization_orphaned", cancelErr)
			return nil, multierr.Append(err, cancelErr)
		}
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(s.logg.WithField(logCtx, "order_number", order.OrderNumber), "orders.placed")

	detail := s.project(order, nil)
	return &Placement{Order: detail, Warnings: quote.Warnings}, nil
}

func (s *service) persistPlacement(ctx context.Context, order *models.Order, actor string) error {
	var err error
	for attempt := 0; attempt < placeOrderAttempts; attempt++ {
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			for _, item := range order.Items {
				if err := s.stock.CommitStock(ctx, tx, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
			repo := s.repo.WithTx(tx)
			number, err := repo.NextOrderNumber(ctx)
			if err != nil {
				return err
			}
			order.OrderNumber = number
			if err := repo.Create(ctx, order); err != nil {
				return err
			}
			return s.emit(ctx, tx, outbox.EventOrderPlaced, order.ID, actor, PlacedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Provider:    order.PaymentProvider,
				Currency:    order.Currency,
				Total:       order.TotalMinor,
				Items:       len(order.Items),
			})
		})
		if err == nil || !db.IsUniqueViolation(err, "") {
			break
		}
		// Another placement took the same order number; retry with fresh ids.
		order.ID = uuid.Nil
		for i := range order.Items {
			order.Items[i].ID = uuid.Nil
			order.Items[i].OrderID = uuid.Nil
		}
	}
	if err != nil && pkgerrors.As(err) == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store order")
	}
	return err
}

func buildOrder(quote *checkout.Quote, input PlaceOrderInput, total int64, provider enums.PaymentProvider, reference string) *models.Order {
	ref := reference
	items := make([]models.OrderItem, 0, len(quote.LineItems))
	for pos, line := range quote.LineItems {
		items = append(items, models.OrderItem{
			Position:       pos,
			ProductID:      line.MerchantData.ProductID,
			VariantID:      line.MerchantData.VariantID,
			SKU:            line.Reference,
			ProductName:    line.Name,
			VariantName:    line.VariantName,
			Quantity:       line.Quantity,
			UnitPriceMinor: line.UnitPrice,
			LineTotalMinor: line.TotalAmount,
			TaxMinor:       line.TotalTaxAmount,
			TaxRateBP:      line.TaxRate,
		})
	}
	return &models.Order{
		FulfillmentStatus: enums.FulfillmentStatusNew,
		PaymentStatus:     enums.PaymentStatusAuthorized,
		PaymentProvider:   provider,
		GatewayReference:  &ref,
		Currency:          quote.Currency,
		Locale:            quote.Locale,
		CustomerEmail:     input.CustomerEmail,
		SubtotalMinor:     quote.OrderAmount,
		ShippingMinor:     input.ShippingMinor,
		DiscountMinor:     input.DiscountMinor,
		TaxMinor:          quote.OrderTaxAmount,
		TotalMinor:        total,
		Items:             items,
	}
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType outbox.EventType, orderID uuid.UUID, actor string, data any) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: outbox.AggregateOrder,
		AggregateID:   orderID,
		Actor:         actor,
		Data:          data,
		OccurredAt:    s.now(),
	})
}

func transitionEvent(order *models.Order, t enums.OrderTransition, toF enums.FulfillmentStatus, toP enums.PaymentStatus, amount int64, message string) TransitionEvent {
	return TransitionEvent{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Transition:      t,
		FromFulfillment: order.FulfillmentStatus,
		ToFulfillment:   toF,
		FromPayment:     order.PaymentStatus,
		ToPayment:       toP,
		AmountMinor:     amount,
		Message:         message,
	}
}

func rejected(o outcome, message string, order *models.Order) *Result {
	return &Result{
		OK:                false,
		outcome:           o,
		Message:           message,
		FulfillmentStatus: order.FulfillmentStatus,
		PaymentStatus:     order.PaymentStatus,
	}
}

func noop(o outcome, message string, order *models.Order) *Result {
	return &Result{
		OK:                true,
		outcome:           o,
		Noop:              true,
		Message:           message,
		FulfillmentStatus: order.FulfillmentStatus,
		PaymentStatus:     order.PaymentStatus,
	}
}

// outcome is the result label of threadline_order_transitions_total.
type outcome string

const (
	outcomeOK            outcome = "ok"
	outcomeGuard         outcome = "guard"
	outcomeGatewayFailed outcome = "gateway_failed"
	outcomeConflict      outcome = "conflict"
	outcomeError         outcome = "error"
)

func (r *Result) outcomeLabel() outcome {
	if r.outcome != "" {
		return r.outcome
	}
	if r.OK {
		return outcomeOK
	}
	return outcomeGuard
}

func mapLookupError(err error) error {
	if isNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}
