package main

import (
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/kruthishkandula/Grocery-be/pkg/db/models"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox/payloads"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox/registry"
)

// orderingKey is "order:<order_id>" or "payment:<payment_id>".
func orderingKey(event models.OutboxEvent) string {
	return string(event.AggregateType) + ":" + event.AggregateID
}

// buildMessage publishes the stored envelope unchanged. Attributes carry the
// routing fields plus the payload fields subscribers filter on.
func buildMessage(event models.OutboxEvent, resolved *registry.ResolvedEvent) *gcppubsub.Message {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID,
		"schema_version": strconv.Itoa(resolved.Envelope.Version),
	}
	if !resolved.Envelope.OccurredAt.IsZero() {
		attrs["occurred_at"] = resolved.Envelope.OccurredAt.UTC().Format(time.RFC3339Nano)
	}
	for key, value := range payloadAttributes(resolved.Payload) {
		if value != "" {
			attrs[key] = value
		}
	}
	return &gcppubsub.Message{
		Data:        event.Payload,
		OrderingKey: orderingKey(event),
		Attributes:  attrs,
	}
}

func payloadAttributes(payload interface{}) map[string]string {
	switch p := payload.(type) {
	case *payloads.OrderCreatedEvent:
		return map[string]string{
			"order_id":     p.OrderID,
			"payment_id":   p.PaymentID,
			"order_status": string(p.Status),
		}
	case *payloads.OrderStatusChangedEvent:
		return map[string]string{
			"order_id":    p.OrderID,
			"from_status": string(p.FromStatus),
			"to_status":   string(p.ToStatus),
			"changed_by":  string(p.ChangedBy),
		}
	case *payloads.PaymentCreatedEvent:
		return map[string]string{
			"payment_id":     p.PaymentID,
			"payment_method": string(p.PaymentMethod),
			"payment_status": string(p.Status),
		}
	}
	return nil
}
