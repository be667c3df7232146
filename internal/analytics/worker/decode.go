package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/kruthishkandula/Grocery-be/internal/analytics/types"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox"
)

// decodeMessage rebuilds an envelope from a message published by the outbox
// publisher. The data holds the stored outbox envelope; routing fields come
// from the attributes and must agree with each other.
func decodeMessage(msg *gcppubsub.Message) (types.Envelope, error) {
	var stored outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &stored); err != nil {
		return types.Envelope{}, fmt.Errorf("decode payload envelope: %w", err)
	}

	eventType, err := enums.ParseOutboxEventType(attr(msg, "event_type"))
	if err != nil {
		return types.Envelope{}, fmt.Errorf("event_type: %w", err)
	}
	aggregateType, err := enums.ParseOutboxAggregateType(attr(msg, "aggregate_type"))
	if err != nil {
		return types.Envelope{}, fmt.Errorf("aggregate_type: %w", err)
	}
	if want := eventType.Aggregate(); aggregateType != want {
		return types.Envelope{}, fmt.Errorf("%s is keyed by %s, got %s", eventType, want, aggregateType)
	}
	aggregateID := attr(msg, "aggregate_id")
	if aggregateID == "" {
		return types.Envelope{}, errors.New("aggregate_id missing")
	}

	eventID, err := resolveEventID(strings.TrimSpace(stored.EventID), attr(msg, "event_id"))
	if err != nil {
		return types.Envelope{}, err
	}

	version := stored.Version
	if version <= 0 {
		version = outbox.CurrentVersion
	}

	occurredAt := stored.OccurredAt
	if occurredAt.IsZero() {
		if raw := attr(msg, "occurred_at"); raw != "" {
			parsed, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return types.Envelope{}, fmt.Errorf("occurred_at: %w", err)
			}
			occurredAt = parsed
		}
	}
	if occurredAt.IsZero() {
		occurredAt = msg.PublishTime
	}

	return types.Envelope{
		EventID:       eventID.String(),
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Version:       version,
		OccurredAt:    occurredAt.UTC(),
		Payload:       stored.Data,
	}, nil
}

// resolveEventID prefers the id inside the envelope. When both copies are
// present they must match, since the idempotency marker is keyed on it.
func resolveEventID(stored, attribute string) (uuid.UUID, error) {
	raw := stored
	if raw == "" {
		raw = attribute
	}
	if raw == "" {
		return uuid.Nil, errors.New("event_id missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("event_id: %w", err)
	}
	if stored != "" && attribute != "" && !strings.EqualFold(stored, attribute) {
		return uuid.Nil, fmt.Errorf("event_id mismatch: envelope %s, attribute %s", stored, attribute)
	}
	return id, nil
}

func attr(msg *gcppubsub.Message, key string) string {
	return strings.TrimSpace(msg.Attributes[key])
}
