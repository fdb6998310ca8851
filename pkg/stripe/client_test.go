package stripe

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/threadline-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
)

func TestNewClientValidatesKeyForEnv(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.StripeConfig{}, nil); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_live_abc", Env: "test"}, nil); err == nil {
		t.Fatalf("expected live key to be rejected in test env")
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_abc", Env: "staging"}, nil); err == nil {
		t.Fatalf("expected unknown env to be rejected")
	}
	c, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_abc"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Environment() != testEnv {
		t.Fatalf("expected test env, got %q", c.Environment())
	}
}

func TestMapStripeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want pkgerrors.Code
	}{
		{"card declined", &stripe.Error{Type: stripe.ErrorTypeCard, HTTPStatusCode: http.StatusPaymentRequired}, pkgerrors.CodePaymentDeclined},
		{"idempotency", &stripe.Error{Type: stripe.ErrorTypeIdempotency, HTTPStatusCode: http.StatusBadRequest}, pkgerrors.CodeIdempotency},
		{"unauthorized", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusUnauthorized}, pkgerrors.CodeUnauthorized},
		{"missing intent", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusNotFound}, pkgerrors.CodeNotFound},
		{"bad request", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadRequest}, pkgerrors.CodeValidation},
		{"server", &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusInternalServerError}, pkgerrors.CodeDependency},
		{"transport", errors.New("dial tcp: timeout"), pkgerrors.CodeDependency},
	}
	for _, tt := range tests {
		if got := pkgerrors.CodeOf(mapStripeError(tt.err, "capture")); got != tt.want {
			t.Fatalf("%s: expected %s got %s", tt.name, tt.want, got)
		}
	}
}
