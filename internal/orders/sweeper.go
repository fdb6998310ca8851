package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/internal/payments"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
)

const (
	defaultSweepBatch = 100
	sweeperActor      = "system:claim-sweeper"
)

// ClaimExpiredEvent is the payload of order.claim_expired.
type ClaimExpiredEvent struct {
	OrderNumber  int64                 `json:"orderNumber"`
	Transition   enums.OrderTransition `json:"transition"`
	PendingSince time.Time             `json:"pendingSince"`
}

// SweeperOptions configure a ClaimSweeper.
type SweeperOptions struct {
	Repo     *Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Logger   *logger.Logger
	ClaimTTL time.Duration
	Batch    int
	Now      func() time.Time
}

// ClaimSweeper clears gateway claims abandoned by a crashed or timed out
// request. The gateway outcome of such a call is unknown, so each release is
// recorded for an operator to reconcile.
type ClaimSweeper struct {
	repo     *Repository
	tx       txRunner
	outbox   outboxPublisher
	logg     *logger.Logger
	claimTTL time.Duration
	batch    int
	now      func() time.Time
}

func NewClaimSweeper(opts SweeperOptions) (*ClaimSweeper, error) {
	if opts.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if opts.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if opts.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.ClaimTTL <= 0 {
		opts.ClaimTTL = 2 * payments.DefaultTimeout
	}
	if opts.Batch <= 0 {
		opts.Batch = defaultSweepBatch
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &ClaimSweeper{
		repo:     opts.Repo,
		tx:       opts.Tx,
		outbox:   opts.Outbox,
		logg:     opts.Logger,
		claimTTL: opts.ClaimTTL,
		batch:    opts.Batch,
		now:      opts.Now,
	}, nil
}

// Sweep releases up to one batch of stale claims and returns how many it
// released.
func (s *ClaimSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	before := now.Add(-s.claimTTL)
	rows, err := s.repo.StaleClaims(ctx, before, s.batch)
	if err != nil {
		return 0, fmt.Errorf("list stale claims: %w", err)
	}

	released := 0
	for _, order := range rows {
		if order.PendingTransition == nil || order.PendingSince == nil {
			continue
		}
		ok, err := s.expire(ctx, order.ID, order.OrderNumber, *order.PendingTransition, *order.PendingSince, before, now)
		if err != nil {
			return released, err
		}
		if !ok {
			continue
		}
		released++
		orderCtx := s.logg.WithOrderID(ctx, order.ID.String())
		orderCtx = s.logg.WithField(orderCtx, "transition", string(*order.PendingTransition))
		s.logg.Warn(orderCtx, "orders.claim_expired")
	}
	return released, nil
}

func (s *ClaimSweeper) expire(ctx context.Context, id uuid.UUID, number int64, transition enums.OrderTransition, since, before, now time.Time) (bool, error) {
	var changed bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).ExpireClaim(ctx, id, transition, before)
		if err != nil || !ok {
			return err
		}
		changed = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     outbox.EventOrderClaimExpired,
			AggregateType: outbox.AggregateOrder,
			AggregateID:   id,
			Actor:         sweeperActor,
			Data: ClaimExpiredEvent{
				OrderNumber:  number,
				Transition:   transition,
				PendingSince: since,
			},
			OccurredAt: now,
		})
	})
	if err != nil {
		return false, fmt.Errorf("expire claim %s: %w", id, err)
	}
	return changed, nil
}
