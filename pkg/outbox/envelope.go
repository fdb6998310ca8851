package outbox

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderTransitioned  EventType = "order.transitioned"
	EventOrderGatewayFailed EventType = "order.gateway_failed"
	EventOrderClaimExpired  EventType = "order.claim_expired"
	EventVariantActivated   EventType = "variant.activated"
	EventVariantDeactivated EventType = "variant.deactivated"
	EventProductPublished   EventType = "product.published"
	EventProductUnpublished EventType = "product.unpublished"
)

type AggregateType string

const (
	AggregateOrder   AggregateType = "order"
	AggregateVariant AggregateType = "variant"
	AggregateProduct AggregateType = "product"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      string          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
