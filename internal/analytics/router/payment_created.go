package router

import (
	"context"
	"fmt"

	"github.com/kruthishkandula/Grocery-be/internal/analytics/types"
	analyticswriter "github.com/kruthishkandula/Grocery-be/internal/analytics/writer"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox/payloads"
)

type paymentCreatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newPaymentCreatedHandler(writer Writer, logg *logger.Logger) Handler {
	return &paymentCreatedHandler{writer: writer, logg: logg}
}

func (h *paymentCreatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.PaymentCreatedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for payment_created")
	}

	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"payment_id": event.PaymentID,
	})

	payloadJSON, err := analyticswriter.EncodeJSON(envelope.Payload)
	if err != nil {
		return fmt.Errorf("encode payload json: %w", err)
	}

	row := types.OrderEventRow{
		EventID:       envelope.EventID,
		EventType:     string(envelope.EventType),
		OccurredAt:    envelope.OccurredAt,
		PaymentID:     stringPtr(event.PaymentID),
		UserID:        uuidPtr(event.UserID),
		Status:        stringPtr(string(event.Status)),
		PaymentMethod: stringPtr(string(event.PaymentMethod)),
		Currency:      stringPtr(event.Currency),
		AmountMinor:   minorUnits(event.Amount),
		Payload:       payloadJSON,
	}
	if err := h.writer.InsertOrderEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert payment event row", err)
		return err
	}
	return nil
}
