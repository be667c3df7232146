package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/kruthishkandula/Grocery-be/pkg/db"
	"github.com/kruthishkandula/Grocery-be/pkg/db/models"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
	"github.com/kruthishkandula/Grocery-be/pkg/money"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox/payloads"
)

const (
	uniquePaymentIDConstraint = "payments_payment_id_unique"
	defaultCurrency           = "INR"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type idGenerator interface {
	PaymentID() (string, error)
}

// Service records client-asserted payments. No gateway is contacted.
type Service interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error)
	GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error)
}

// CreatePaymentInput carries the payment to record. Empty Method and Status
// fall back to cod and pending.
type CreatePaymentInput struct {
	UserID uuid.UUID
	Amount decimal.Decimal
	Method enums.PaymentMethod
	Status enums.PaymentStatus
	Actor  *outbox.ActorRef
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	ids      idGenerator
	currency string
	now      func() time.Time
}

// NewService wires the payment service.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, ids idGenerator, currency string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if ids == nil {
		return nil, fmt.Errorf("id generator required")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = defaultCurrency
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   outbox,
		ids:      ids,
		currency: currency,
		now:      time.Now,
	}, nil
}

func (s *service) CreatePayment(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required").
			WithDetails(map[string]any{"field": "user_id"})
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative").
			WithDetails(map[string]any{"field": "amount"})
	}
	if err := money.Check(input.Amount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount is invalid").
			WithDetails(map[string]any{"field": "amount", "error": err.Error()})
	}

	method := input.Method
	if method == "" {
		method = enums.PaymentMethodCOD
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method)).
			WithDetails(map[string]any{"field": "payment_method"})
	}
	status := input.Status
	if status == "" {
		status = enums.PaymentStatusPending
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", status)).
			WithDetails(map[string]any{"field": "status"})
	}

	paymentID, err := s.ids.PaymentID()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate payment id")
	}

	payment := &models.Payment{
		UserID:        input.UserID,
		PaymentID:     paymentID,
		Currency:      s.currency,
		Amount:        money.Format(input.Amount),
		Status:        status,
		PaymentMethod: method,
		CreatedAt:     s.now().UTC(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentCreated,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.PaymentID,
			Actor:         input.Actor,
			OccurredAt:    payment.CreatedAt,
			Data: payloads.PaymentCreatedEvent{
				PaymentID:     payment.PaymentID,
				UserID:        payment.UserID,
				Amount:        payment.Amount,
				Currency:      payment.Currency,
				PaymentMethod: payment.PaymentMethod,
				Status:        payment.Status,
				CreatedAt:     payment.CreatedAt,
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, uniquePaymentIDConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment id already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
	}
	return payment, nil
}

// GetPaymentByID returns nil, nil when the payment does not exist.
func (s *service) GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required").
			WithDetails(map[string]any{"field": "payment_id"})
	}
	payment, err := s.repo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
	}
	return payment, nil
}
