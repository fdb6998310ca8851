package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/pkg/db/models"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

const payloadVersion = 1

type DomainEvent struct {
	EventType     EventType
	AggregateType AggregateType
	AggregateID   uuid.UUID
	Actor         string
	Data          any
	OccurredAt    time.Time
}

// RecordedEvent is a decoded outbox row.
type RecordedEvent struct {
	EventType  EventType       `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      string          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Emit appends event inside tx so it commits or rolls back with the state change.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errTxRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	envelope := PayloadEnvelope{
		Version:    payloadVersion,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       payload,
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := &models.OutboxEvent{
		EventType:     string(event.EventType),
		AggregateType: string(event.AggregateType),
		AggregateID:   event.AggregateID,
		Payload:       json.RawMessage(payloadJSON),
	}
	if err := s.repo.Insert(ctx, tx, row); err != nil {
		return err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_id":       envelope.EventID,
			"event_type":     event.EventType,
			"aggregate_id":   event.AggregateID.String(),
			"aggregate_type": event.AggregateType,
		})
		s.logg.Info(logCtx, "outbox.recorded")
	}
	return nil
}

// History decodes the recorded events of one aggregate, optionally only
// those of the given types.
func (s *Service) History(ctx context.Context, aggregateType AggregateType, aggregateID uuid.UUID, types ...EventType) ([]RecordedEvent, error) {
	rows, err := s.repo.ListForAggregate(ctx, aggregateType, aggregateID, types...)
	if err != nil {
		return nil, err
	}
	out := make([]RecordedEvent, 0, len(rows))
	for _, row := range rows {
		var envelope PayloadEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			return nil, err
		}
		out = append(out, RecordedEvent{
			EventType:  EventType(row.EventType),
			OccurredAt: envelope.OccurredAt,
			Actor:      envelope.Actor,
			Data:       envelope.Data,
		})
	}
	return out, nil
}
