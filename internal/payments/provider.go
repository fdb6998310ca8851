package payments

import (
	"context"
	"fmt"

	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/metrics"
	"github.com/angelmondragon/threadline-backend/pkg/square"
	pkgstripe "github.com/angelmondragon/threadline-backend/pkg/stripe"
)

// New builds the configured provider wrapped in the timeout guard.
func New(ctx context.Context, cfg *config.Config, m *metrics.Commerce, logg *logger.Logger) (*Guarded, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	var (
		gw  Gateway
		err error
	)
	switch cfg.Payments.NormalizedProvider() {
	case config.ProviderSquare:
		client, cerr := square.NewClient(ctx, cfg.Square, logg)
		if cerr != nil {
			return nil, fmt.Errorf("init square: %w", cerr)
		}
		gw, err = NewSquareGateway(client)
	case config.ProviderStripe:
		client, cerr := pkgstripe.NewClient(ctx, cfg.Stripe, logg)
		if cerr != nil {
			return nil, fmt.Errorf("init stripe: %w", cerr)
		}
		gw, err = NewStripeGateway(client)
	case config.ProviderMock:
		if cfg.App.IsProd() {
			return nil, fmt.Errorf("mock payment provider is not allowed in %s", cfg.App.Env)
		}
		gw = NewMockGateway()
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Payments.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewGuarded(gw, cfg.Payments.GatewayTimeout, m, logg)
}
