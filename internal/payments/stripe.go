package payments

import (
	"context"
	"fmt"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgstripe "github.com/angelmondragon/threadline-backend/pkg/stripe"
)

// StripeGateway maps authorizations onto manual-capture payment intents.
type StripeGateway struct {
	client *pkgstripe.Client
}

// NewStripeGateway wraps the shared pkg/stripe client.
func NewStripeGateway(client *pkgstripe.Client) (*StripeGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	return &StripeGateway{client: client}, nil
}

func (g *StripeGateway) Provider() enums.PaymentProvider {
	return enums.PaymentProviderStripe
}

func (g *StripeGateway) Authorize(ctx context.Context, req AuthorizeRequest) (Result, error) {
	if err := validateAuthorize(req); err != nil {
		return Result{}, err
	}
	intent, err := g.client.Authorize(ctx, pkgstripe.AuthorizeParams{
		AmountMinor:    req.AmountMinor,
		Currency:       req.Currency.String(),
		PaymentMethod:  req.SourceID,
		ReceiptEmail:   req.CustomerEmail,
		Reference:      req.Reference,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return Result{}, err
	}
	if intent == nil || intent.ID == "" {
		return Result{}, fmt.Errorf("stripe returned a payment intent without an id")
	}
	return Result{Reference: intent.ID}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, req Request) (Result, error) {
	if err := validateReference(req); err != nil {
		return Result{}, err
	}
	if _, err := g.client.Capture(ctx, req.Reference, req.AmountMinor, req.IdempotencyKey); err != nil {
		return Result{}, err
	}
	return Result{Reference: req.Reference}, nil
}

func (g *StripeGateway) Cancel(ctx context.Context, req Request) (Result, error) {
	if err := validateReference(req); err != nil {
		return Result{}, err
	}
	if _, err := g.client.Cancel(ctx, req.Reference, req.IdempotencyKey); err != nil {
		return Result{}, err
	}
	return Result{Reference: req.Reference}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, req Request) (Result, error) {
	if err := validateReference(req); err != nil {
		return Result{}, err
	}
	if _, err := g.client.Refund(ctx, req.Reference, req.AmountMinor, req.IdempotencyKey); err != nil {
		return Result{}, err
	}
	return Result{Reference: req.Reference}, nil
}
