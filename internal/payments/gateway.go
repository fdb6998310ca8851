package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

// Operation names a gateway call.
type Operation string

const (
	OperationAuthorize Operation = "authorize"
	OperationCapture   Operation = "capture"
	OperationCancel    Operation = "cancel"
	OperationRefund    Operation = "refund"
)

// AuthorizeRequest holds the inputs needed to place a hold on a customer's funds.
type AuthorizeRequest struct {
	AmountMinor    int64
	Currency       enums.Currency
	SourceID       string
	CustomerEmail  string
	Reference      string
	IdempotencyKey string
}

// Request targets an existing authorization by its gateway reference.
type Request struct {
	Reference      string
	AmountMinor    int64
	Currency       enums.Currency
	IdempotencyKey string
}

// Result is a successful gateway response. Failures are returned as errors.
type Result struct {
	Reference string
	Mocked    bool
}

// Gateway is the payment provider contract the order flow depends on.
type Gateway interface {
	Provider() enums.PaymentProvider
	Authorize(ctx context.Context, req AuthorizeRequest) (Result, error)
	Capture(ctx context.Context, req Request) (Result, error)
	Cancel(ctx context.Context, req Request) (Result, error)
	Refund(ctx context.Context, req Request) (Result, error)
}

// IdempotencyKey derives a stable provider key from an order and an operation
// so that an operator retry is deduplicated by providers that honour keys.
func IdempotencyKey(orderID string, op Operation) string {
	return fmt.Sprintf("order-%s-%s", strings.TrimSpace(orderID), op)
}

func validateAuthorize(req AuthorizeRequest) error {
	if req.AmountMinor <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "authorize amount must be positive")
	}
	if strings.TrimSpace(req.SourceID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment source is required")
	}
	return nil
}

func validateReference(req Request) error {
	if strings.TrimSpace(req.Reference) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway reference is required")
	}
	return nil
}
