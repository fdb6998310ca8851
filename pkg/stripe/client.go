package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/threadline-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client wraps Stripe's API client plus env-specific metadata.
type Client struct {
	api         *stripe.Client
	environment string
	logger      *logger.Logger
}

// NewClient initializes Stripe once with the configured key and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	api := stripe.NewClient(apiKey)

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		api:         api,
		environment: env,
		logger:      logg,
	}, nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// AuthorizeParams describes a manual-capture payment intent.
type AuthorizeParams struct {
	AmountMinor    int64
	Currency       string
	PaymentMethod  string
	ReceiptEmail   string
	Reference      string
	IdempotencyKey string
}

// Authorize confirms a payment intent with manual capture so funds are held
// but not collected.
func (c *Client) Authorize(ctx context.Context, p AuthorizeParams) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(p.AmountMinor),
		Currency:      stripe.String(strings.ToLower(strings.TrimSpace(p.Currency))),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		PaymentMethod: stripe.String(p.PaymentMethod),
	}
	if email := strings.TrimSpace(p.ReceiptEmail); email != "" {
		params.ReceiptEmail = stripe.String(email)
	}
	if ref := strings.TrimSpace(p.Reference); ref != "" {
		params.AddMetadata("reference", ref)
	}
	setIdempotencyKey(&params.Params, p.IdempotencyKey)

	intent, err := c.api.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		c.logError(ctx, "authorize", err)
		return nil, mapStripeError(err, "authorize")
	}
	c.logResult(ctx, "authorize", intent)
	return intent, nil
}

// Capture collects the held amount of a payment intent.
func (c *Client) Capture(ctx context.Context, intentID string, amountMinor int64, idempotencyKey string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	if amountMinor > 0 {
		params.AmountToCapture = stripe.Int64(amountMinor)
	}
	setIdempotencyKey(&params.Params, idempotencyKey)

	intent, err := c.api.V1PaymentIntents.Capture(ctx, intentID, params)
	if err != nil {
		c.logError(ctx, "capture", err)
		return nil, mapStripeError(err, "capture")
	}
	c.logResult(ctx, "capture", intent)
	return intent, nil
}

// Cancel releases the hold on an uncaptured payment intent.
func (c *Client) Cancel(ctx context.Context, intentID, idempotencyKey string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentCancelParams{}
	setIdempotencyKey(&params.Params, idempotencyKey)

	intent, err := c.api.V1PaymentIntents.Cancel(ctx, intentID, params)
	if err != nil {
		c.logError(ctx, "cancel", err)
		return nil, mapStripeError(err, "cancel")
	}
	c.logResult(ctx, "cancel", intent)
	return intent, nil
}

// Refund returns amountMinor of a captured payment intent.
func (c *Client) Refund(ctx context.Context, intentID string, amountMinor int64, idempotencyKey string) (*stripe.Refund, error) {
	params := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(intentID),
	}
	if amountMinor > 0 {
		params.Amount = stripe.Int64(amountMinor)
	}
	setIdempotencyKey(&params.Params, idempotencyKey)

	refund, err := c.api.V1Refunds.Create(ctx, params)
	if err != nil {
		c.logError(ctx, "refund", err)
		return nil, mapStripeError(err, "refund")
	}
	if c.logger != nil {
		logCtx := c.logger.WithFields(ctx, map[string]any{"operation": "refund", "refund_id": refund.ID, "status": string(refund.Status)})
		c.logger.Info(logCtx, "stripe response")
	}
	return refund, nil
}

func (c *Client) logResult(ctx context.Context, op string, intent *stripe.PaymentIntent) {
	if c.logger == nil || intent == nil {
		return
	}
	logCtx := c.logger.WithFields(ctx, map[string]any{
		"operation":         op,
		"payment_intent_id": intent.ID,
		"status":            string(intent.Status),
	})
	c.logger.Info(logCtx, "stripe response")
}

func (c *Client) logError(ctx context.Context, op string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Error(c.logger.WithField(ctx, "operation", op), "stripe request failed", err)
}

func setIdempotencyKey(params *stripe.Params, key string) {
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		params.SetIdempotencyKey(trimmed)
	}
}

func mapStripeError(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		code := pkgerrors.CodeDependency
		switch {
		case stripeErr.Type == stripe.ErrorTypeCard:
			code = pkgerrors.CodePaymentDeclined
		case stripeErr.Type == stripe.ErrorTypeIdempotency:
			code = pkgerrors.CodeIdempotency
		case stripeErr.HTTPStatusCode == http.StatusUnauthorized:
			code = pkgerrors.CodeUnauthorized
		case stripeErr.HTTPStatusCode == http.StatusNotFound:
			code = pkgerrors.CodeNotFound
		case stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
			code = pkgerrors.CodeRateLimit
		case stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500:
			code = pkgerrors.CodeValidation
		}
		return pkgerrors.Wrap(code, err, fmt.Sprintf("stripe %s failed", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("stripe %s failed", op))
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
