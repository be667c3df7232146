package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/kruthishkandula/Grocery-be/internal/analytics/types"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox/registry"
)

var (
	ErrUnsupportedEventType = errors.New("unsupported analytics event type")
	// ErrUndecodablePayload marks payloads that no retry can fix: empty,
	// malformed, or of a schema version with no registered decoder.
	ErrUndecodablePayload = errors.New("undecodable analytics payload")
)

// Writer delivers BigQuery rows produced by analytics handlers.
type Writer interface {
	InsertOrderEvent(ctx context.Context, row types.OrderEventRow) error
}

// Handler receives an envelope plus a decoded event payload.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope, payload any) error
}

// Router dispatches analytics envelopes to the configured handler per event
// type. Payloads are decoded through a versioned decoder registry.
type Router struct {
	handlers map[enums.OutboxEventType]Handler
	decoders *registry.DecoderRegistry
	logg     *logger.Logger
}

// NewRouter wires the default handlers and allows overrides for specific
// events. A nil decoders uses registry.DefaultDecoders.
func NewRouter(writer Writer, logg *logger.Logger, decoders *registry.DecoderRegistry, overrides map[enums.OutboxEventType]Handler) (*Router, error) {
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	if decoders == nil {
		decoders = registry.DefaultDecoders()
	}

	handlers := map[enums.OutboxEventType]Handler{
		enums.EventOrderCreated:       newOrderCreatedHandler(writer, logg),
		enums.EventOrderStatusChanged: newOrderStatusChangedHandler(writer, logg),
		enums.EventPaymentCreated:     newPaymentCreatedHandler(writer, logg),
	}
	for event, custom := range overrides {
		if _, ok := handlers[event]; ok && custom != nil {
			handlers[event] = custom
		}
	}

	return &Router{handlers: handlers, decoders: decoders, logg: logg}, nil
}

// Handle decodes the payload for the envelope's schema version and passes it
// to the event's handler. Version 0 is read as the current version.
func (r *Router) Handle(ctx context.Context, envelope types.Envelope) error {
	handler, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}
	if len(envelope.Payload) == 0 {
		return fmt.Errorf("%w: empty payload for %s", ErrUndecodablePayload, envelope.EventType)
	}
	version := envelope.Version
	if version == 0 {
		version = outbox.CurrentVersion
	}
	payload, err := r.decoders.Decode(envelope.EventType, version, envelope.Payload)
	if err != nil {
		return fmt.Errorf("%w: %s@v%d: %v", ErrUndecodablePayload, envelope.EventType, version, err)
	}
	return handler.Handle(ctx, envelope, payload)
}
