package router

import (
	"context"
	"fmt"

	"github.com/kruthishkandula/Grocery-be/internal/analytics/types"
	analyticswriter "github.com/kruthishkandula/Grocery-be/internal/analytics/writer"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox/payloads"
)

type orderStatusChangedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderStatusChangedHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderStatusChangedHandler{writer: writer, logg: logg}
}

func (h *orderStatusChangedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_status_changed")
	}

	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type":  envelope.EventType,
		"order_id":    event.OrderID,
		"from_status": event.FromStatus,
		"to_status":   event.ToStatus,
	})

	payloadJSON, err := analyticswriter.EncodeJSON(envelope.Payload)
	if err != nil {
		return fmt.Errorf("encode payload json: %w", err)
	}

	row := types.OrderEventRow{
		EventID:        envelope.EventID,
		EventType:      string(envelope.EventType),
		OccurredAt:     envelope.OccurredAt,
		OrderID:        stringPtr(event.OrderID),
		UserID:         uuidPtr(event.UserID),
		Status:         stringPtr(string(event.ToStatus)),
		PreviousStatus: stringPtr(string(event.FromStatus)),
		ChangedBy:      stringPtr(string(event.ChangedBy)),
		Payload:        payloadJSON,
	}
	if err := h.writer.InsertOrderEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert order event row", err)
		return err
	}
	return nil
}
