package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
)

const (
	EventSupplierOrderStatusChanged = "supplier.order.status_changed"
	EventSupplierInventoryUpdated   = "supplier.inventory.updated"
	EventOrderPaid                  = "order.paid"
	EventOrderStatusChanged         = "order.status_changed"

	producerName = "fashion-storefront"
)

type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"` // biasanya order id
	Payload       json.RawMessage `json:"payload"`
}

// Publisher emits domain events. key is used for partitioning.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
}

func NewEnvelope(eventType, correlationID string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// UnwrapPayload decodes an envelope payload into T.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}

type logPublisher struct{}

// NewLogPublisher is the default publisher when no broker is configured.
func NewLogPublisher() Publisher {
	return logPublisher{}
}

func (logPublisher) Publish(_ context.Context, eventType, key string, payload interface{}) error {
	env, err := NewEnvelope(eventType, key, payload)
	if err != nil {
		return err
	}
	logger.Debug("event %s id=%s key=%s payload=%s", env.EventType, env.EventID, key, string(env.Payload))
	return nil
}
