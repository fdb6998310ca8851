package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OutboxEvent is an append-only record of something that happened to an aggregate.
type OutboxEvent struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     string          `gorm:"column:event_type;not null"`
	AggregateType string          `gorm:"column:aggregate_type;not null"`
	AggregateID   uuid.UUID       `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload       json.RawMessage `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time      `gorm:"column:published_at"`
}

func (e *OutboxEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
