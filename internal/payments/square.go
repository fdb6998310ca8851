package payments

import (
	"context"
	"fmt"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
	"github.com/angelmondragon/threadline-backend/pkg/square"
)

// SquareGateway authorizes with delayed capture and completes, cancels or
// refunds the resulting payment.
type SquareGateway struct {
	client *square.Client
}

// NewSquareGateway wraps the shared pkg/square client.
func NewSquareGateway(client *square.Client) (*SquareGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("square client required")
	}
	return &SquareGateway{client: client}, nil
}

func (g *SquareGateway) Provider() enums.PaymentProvider {
	return enums.PaymentProviderSquare
}

func (g *SquareGateway) Authorize(ctx context.Context, req AuthorizeRequest) (Result, error) {
	if err := validateAuthorize(req); err != nil {
		return Result{}, err
	}
	payment, err := g.client.CreatePayment(ctx, square.PaymentCreateParams{
		AmountMinor:    req.AmountMinor,
		Currency:       req.Currency.String(),
		SourceID:       req.SourceID,
		BuyerEmail:     req.CustomerEmail,
		ReferenceID:    req.Reference,
		IdempotencyKey: req.IdempotencyKey,
		Autocomplete:   false,
	})
	if err != nil {
		return Result{}, err
	}
	id := ""
	if payment != nil && payment.GetID() != nil {
		id = *payment.GetID()
	}
	if id == "" {
		return Result{}, fmt.Errorf("square returned a payment without an id")
	}
	return Result{Reference: id}, nil
}

func (g *SquareGateway) Capture(ctx context.Context, req Request) (Result, error) {
	if err := validateReference(req); err != nil {
		return Result{}, err
	}
	if _, err := g.client.CompletePayment(ctx, req.Reference); err != nil {
		return Result{}, err
	}
	return Result{Reference: req.Reference}, nil
}

func (g *SquareGateway) Cancel(ctx context.Context, req Request) (Result, error) {
	if err := validateReference(req); err != nil {
		return Result{}, err
	}
	if _, err := g.client.CancelPayment(ctx, req.Reference); err != nil {
		return Result{}, err
	}
	return Result{Reference: req.Reference}, nil
}

func (g *SquareGateway) Refund(ctx context.Context, req Request) (Result, error) {
	if err := validateReference(req); err != nil {
		return Result{}, err
	}
	err := g.client.RefundPayment(ctx, square.RefundParams{
		PaymentID:      req.Reference,
		AmountMinor:    req.AmountMinor,
		Currency:       req.Currency.String(),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Reference: req.Reference}, nil
}
