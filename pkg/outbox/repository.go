package outbox

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/threadline-backend/pkg/db/models"
)

var errTxRequired = errors.New("outbox: transaction required")

// Repository stores outbox rows. Writes only ever happen inside the
// caller's transaction; reads go through the shared connection.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends row within tx.
func (r *Repository) Insert(ctx context.Context, tx *gorm.DB, row *models.OutboxEvent) error {
	if tx == nil {
		return errTxRequired
	}
	if row.EventType == "" || row.AggregateType == "" {
		return errors.New("outbox: event and aggregate type are required")
	}
	return tx.WithContext(ctx).Create(row).Error
}

// ListForAggregate returns one aggregate's events in insertion order,
// optionally narrowed to the given types.
func (r *Repository) ListForAggregate(ctx context.Context, aggregateType AggregateType, aggregateID uuid.UUID, types ...EventType) ([]models.OutboxEvent, error) {
	q := r.db.WithContext(ctx).
		Where("aggregate_type = ? AND aggregate_id = ?", string(aggregateType), aggregateID)
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		q = q.Where("event_type IN ?", names)
	}
	var rows []models.OutboxEvent
	err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}
