package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/threadline-backend/pkg/errors"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/metrics"
)

const DefaultTimeout = 15 * time.Second

// Guarded decorates a Gateway so that every call is detached from caller
// cancellation, bounded by a timeout, timed and logged. A call that was sent
// must run to completion so its outcome can be recorded.
type Guarded struct {
	next    Gateway
	timeout time.Duration
	metrics *metrics.Commerce
	logg    *logger.Logger
}

func NewGuarded(next Gateway, timeout time.Duration, m *metrics.Commerce, logg *logger.Logger) (*Guarded, error) {
	if next == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guarded{next: next, timeout: timeout, metrics: m, logg: logg}, nil
}

func (g *Guarded) Provider() enums.PaymentProvider {
	return g.next.Provider()
}

func (g *Guarded) Authorize(ctx context.Context, req AuthorizeRequest) (Result, error) {
	return g.call(ctx, OperationAuthorize, req.Reference, func(callCtx context.Context) (Result, error) {
		return g.next.Authorize(callCtx, req)
	})
}

func (g *Guarded) Capture(ctx context.Context, req Request) (Result, error) {
	return g.call(ctx, OperationCapture, req.Reference, func(callCtx context.Context) (Result, error) {
		return g.next.Capture(callCtx, req)
	})
}

func (g *Guarded) Cancel(ctx context.Context, req Request) (Result, error) {
	return g.call(ctx, OperationCancel, req.Reference, func(callCtx context.Context) (Result, error) {
		return g.next.Cancel(callCtx, req)
	})
}

func (g *Guarded) Refund(ctx context.Context, req Request) (Result, error) {
	return g.call(ctx, OperationRefund, req.Reference, func(callCtx context.Context) (Result, error) {
		return g.next.Refund(callCtx, req)
	})
}

func (g *Guarded) call(ctx context.Context, op Operation, reference string, fn func(context.Context) (Result, error)) (Result, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	start := time.Now()
	result, err := fn(callCtx)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("payment gateway %s timed out after %s", op, g.timeout))
		}
	}
	g.metrics.ObserveGateway(g.Provider().String(), string(op), outcome, elapsed)

	logCtx := g.logg.WithFields(ctx, map[string]any{
		"provider":    g.Provider().String(),
		"operation":   string(op),
		"reference":   reference,
		"outcome":     outcome,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		g.logg.Warn(logCtx, "payment gateway call failed")
		return Result{}, err
	}
	g.logg.Info(logCtx, "payment gateway call succeeded")
	return result, nil
}

// Message renders a gateway error for operators without leaking wrapped internals.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if typed := pkgerrors.As(err); typed != nil {
		if cause := errors.Unwrap(typed); cause != nil {
			return fmt.Sprintf("%s: %v", typed.Message(), cause)
		}
		return typed.Message()
	}
	return err.Error()
}
