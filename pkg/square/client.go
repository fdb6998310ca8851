package square

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqoption "github.com/square/square-go-sdk/option"

	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errAccessTokenRequired = errors.New("square access token is required")
	errLocationRequired    = errors.New("square location id is required")
	errInvalidSquareEnv    = fmt.Errorf("square environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired      = errors.New("square logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://connect.squareupsandbox.com",
	productionEnv: "https://connect.squareup.com",
}

// Client is the slice of the Square payments API the gateway needs:
// authorize, complete, cancel and refund. Every call is logged with
// sensitive fields redacted, and SDK failures come back as typed errors.
type Client struct {
	sdk         *sqclient.Client
	environment string
	locationID  string
	logger      *logger.Logger
}

// NewClient initializes the Square wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.SquareConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}
	locationID := strings.TrimSpace(cfg.LocationID)
	if locationID == "" {
		return nil, errLocationRequired
	}

	sdk := sqclient.NewClient(
		sqoption.WithBaseURL(baseURLs[env]),
		sqoption.WithToken(accessToken),
	)

	c := &Client{
		sdk:         sdk,
		environment: env,
		locationID:  locationID,
		logger:      logg,
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"square_env":  env,
		"location_id": locationID,
	}), "square.initialized")
	return c, nil
}

// Environment reports the normalized Square environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// LocationID returns the location payments are taken against.
func (c *Client) LocationID() string {
	if c == nil {
		return ""
	}
	return c.locationID
}

// NewIdempotencyKey returns a unique key for Square operations.
func (c *Client) NewIdempotencyKey(prefix string) string {
	key := strings.TrimSpace(prefix)
	if key == "" {
		key = "tl"
	}
	return fmt.Sprintf("%s-%s", key, uuid.NewString())
}

// CreatePayment takes a payment. With Autocomplete false the funds are only
// authorized and must later be completed or cancelled.
func (c *Client) CreatePayment(ctx context.Context, params PaymentCreateParams) (*sq.Payment, error) {
	if params.LocationID == "" {
		params.LocationID = c.locationID
	}
	req := params.toSquareRequest(c.ensureIdempotencyKey("payment.create", params.IdempotencyKey))
	return call(ctx, c, "create_payment", map[string]any{
		"location_id":  params.LocationID,
		"reference_id": params.ReferenceID,
		"amount":       params.AmountMinor,
		"autocomplete": params.Autocomplete,
		"source_id":    params.SourceID,
	}, func(ctx context.Context) (*sq.Payment, error) {
		resp, err := c.sdk.Payments.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.GetPayment(), nil
	})
}

// CompletePayment captures a previously authorized payment.
func (c *Client) CompletePayment(ctx context.Context, paymentID string) (*sq.Payment, error) {
	return call(ctx, c, "complete_payment", map[string]any{"payment_id": paymentID}, func(ctx context.Context) (*sq.Payment, error) {
		resp, err := c.sdk.Payments.Complete(ctx, &sq.CompletePaymentRequest{PaymentID: paymentID})
		if err != nil {
			return nil, err
		}
		return resp.GetPayment(), nil
	})
}

// CancelPayment voids an authorized payment that has not been completed.
func (c *Client) CancelPayment(ctx context.Context, paymentID string) (*sq.Payment, error) {
	return call(ctx, c, "cancel_payment", map[string]any{"payment_id": paymentID}, func(ctx context.Context) (*sq.Payment, error) {
		resp, err := c.sdk.Payments.Cancel(ctx, &sq.CancelPaymentsRequest{PaymentID: paymentID})
		if err != nil {
			return nil, err
		}
		return resp.GetPayment(), nil
	})
}

// RefundPayment returns money from a completed payment.
func (c *Client) RefundPayment(ctx context.Context, params RefundParams) error {
	req := params.toSquareRequest(c.ensureIdempotencyKey("payment.refund", params.IdempotencyKey))
	_, err := call(ctx, c, "refund_payment", map[string]any{
		"payment_id": params.PaymentID,
		"amount":     params.AmountMinor,
	}, func(ctx context.Context) (*sq.PaymentRefund, error) {
		resp, err := c.sdk.Refunds.RefundPayment(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.GetRefund(), nil
	})
	return err
}

func (c *Client) ensureIdempotencyKey(prefix, provided string) string {
	if strings.TrimSpace(provided) != "" {
		return provided
	}
	return c.NewIdempotencyKey(prefix)
}

// call runs one SDK request with request/outcome logging and maps any
// failure onto the domain error codes.
func call[T any](ctx context.Context, c *Client, op string, fields map[string]any, fn func(context.Context) (T, error)) (T, error) {
	logg := c.logger
	if logg == nil {
		logg = logger.Nop()
	}
	logFields := redactFields(fields)
	logFields["operation"] = op
	ctx = logg.WithFields(ctx, logFields)

	start := time.Now()
	out, err := fn(ctx)
	ctx = logg.WithField(ctx, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		mapped := mapError(err, op)
		logg.Error(ctx, "square.failed", mapped)
		return out, mapped
	}
	logg.Info(ctx, "square.completed")
	return out, nil
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidSquareEnv
	}
}
