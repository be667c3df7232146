package worker

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/kruthishkandula/Grocery-be/internal/analytics/router"
	"github.com/kruthishkandula/Grocery-be/internal/analytics/types"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
)

const consumerName = "analytics"

// Handler processes one decoded order or payment event.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope) error
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// outcome is what the worker did with a message. Only the retry outcomes nack.
type outcome string

const (
	outcomeHandled      outcome = "handled"
	outcomeDuplicate    outcome = "duplicate"
	outcomeMalformed    outcome = "malformed"
	outcomeUnsupported  outcome = "unsupported"
	outcomeRetryMarker  outcome = "retry_marker"
	outcomeRetryHandler outcome = "retry_handler"
)

func (o outcome) nack() bool {
	return o == outcomeRetryMarker || o == outcomeRetryHandler
}

// Service feeds order and payment events from the analytics subscription into
// the handler. Each event id is marked in Redis before handling and released
// again if the handler fails, so a redelivery gets another attempt.
type Service struct {
	subscription receiver
	handler      Handler
	manager      idempotencyChecker
	logg         *logger.Logger
}

func NewService(subscription receiver, handler Handler, manager idempotencyChecker, logg *logger.Logger) (*Service, error) {
	switch {
	case subscription == nil:
		return nil, errors.New("analytics subscription is required")
	case handler == nil:
		return nil, errors.New("analytics handler is required")
	case manager == nil:
		return nil, errors.New("idempotency manager is required")
	case logg == nil:
		return nil, errors.New("logger is required")
	}
	return &Service{subscription: subscription, handler: handler, manager: manager, logg: logg}, nil
}

// Run receives until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		if s.handleMessage(msgCtx, msg).nack() {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) handleMessage(ctx context.Context, msg *gcppubsub.Message) outcome {
	fields := map[string]any{"message_id": msg.ID}
	if msg.OrderingKey != "" {
		fields["ordering_key"] = msg.OrderingKey
	}

	envelope, err := decodeMessage(msg)
	if err != nil {
		fields["error"] = err.Error()
		fields["outcome"] = outcomeMalformed
		s.logg.Warn(s.logg.WithFields(ctx, fields), "analytics message dropped")
		return outcomeMalformed
	}
	fields["event_id"] = envelope.EventID
	fields["event_type"] = envelope.EventType
	fields["aggregate_id"] = envelope.AggregateID
	fields["schema_version"] = envelope.Version
	fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	logCtx := s.logg.WithFields(ctx, fields)

	eventID := uuid.MustParse(envelope.EventID)
	already, err := s.manager.CheckAndMarkProcessed(logCtx, consumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return outcomeRetryMarker
	}
	if already {
		s.logg.Info(logCtx, "analytics event already recorded")
		return outcomeDuplicate
	}

	err = s.handler.Handle(logCtx, envelope)
	switch {
	case err == nil:
		s.logg.Info(logCtx, "analytics event recorded")
		return outcomeHandled
	case errors.Is(err, router.ErrUnsupportedEventType):
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "unsupported analytics event dropped")
		return outcomeUnsupported
	case errors.Is(err, router.ErrUndecodablePayload):
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "analytics payload dropped")
		return outcomeMalformed
	}

	s.logg.Error(logCtx, "analytics handler failed", err)
	if delErr := s.manager.Delete(logCtx, consumerName, eventID); delErr != nil {
		s.logg.Error(logCtx, "idempotency release failed", delErr)
	}
	return outcomeRetryHandler
}
