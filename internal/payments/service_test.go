package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kruthishkandula/Grocery-be/pkg/db/dbtest"
	"github.com/kruthishkandula/Grocery-be/pkg/db/models"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
	"github.com/kruthishkandula/Grocery-be/pkg/ids"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox"
)

type fixedIDs struct {
	id  string
	err error
}

func (f fixedIDs) PaymentID() (string, error) {
	return f.id, f.err
}

type stubOutbox struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func newSQLiteService(t *testing.T, gen idGenerator) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	svc, err := NewService(NewRepository(conn), client, outbox.NewService(outbox.NewRepository(conn), nil), gen, "inr")
	require.NoError(t, err)
	return svc, conn
}

func TestCreatePaymentPersistsCanonicalAmount(t *testing.T) {
	svc, conn := newSQLiteService(t, ids.NewGenerator())
	userID := uuid.New()

	payment, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		UserID: userID,
		Amount: decimal.RequireFromString("116"),
	})
	require.NoError(t, err)
	assert.Equal(t, "116.00", payment.Amount)
	assert.Equal(t, "INR", payment.Currency)
	assert.Equal(t, enums.PaymentStatusPending, payment.Status)
	assert.Equal(t, enums.PaymentMethodCOD, payment.PaymentMethod)
	assert.Regexp(t, `^pay_[0-9a-z]{26}$`, payment.PaymentID)

	loaded, err := svc.GetPaymentByID(context.Background(), payment.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, userID, loaded.UserID)
	assert.Equal(t, "116.00", loaded.Amount)

	var events []models.OutboxEvent
	require.NoError(t, conn.Where("aggregate_id = ?", payment.PaymentID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventPaymentCreated, events[0].EventType)
}

func TestCreatePaymentDuplicateIDIsConflict(t *testing.T) {
	svc, _ := newSQLiteService(t, fixedIDs{id: "pay_fixed"})
	input := CreatePaymentInput{UserID: uuid.New(), Amount: decimal.NewFromInt(10)}

	_, err := svc.CreatePayment(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.CreatePayment(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCreatePaymentRollsBackWhenOutboxFails(t *testing.T) {
	client, conn := dbtest.Client(t)
	svc, err := NewService(NewRepository(conn), client, &stubOutbox{err: errors.New("outbox down")}, fixedIDs{id: "pay_rollback"}, "")
	require.NoError(t, err)

	_, err = svc.CreatePayment(context.Background(), CreatePaymentInput{UserID: uuid.New(), Amount: decimal.NewFromInt(5)})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))

	payment, err := svc.GetPaymentByID(context.Background(), "pay_rollback")
	require.NoError(t, err)
	assert.Nil(t, payment)
}

func TestCreatePaymentValidation(t *testing.T) {
	client, conn := dbtest.Client(t)
	svc, err := NewService(NewRepository(conn), client, &stubOutbox{}, fixedIDs{id: "pay_x"}, "")
	require.NoError(t, err)

	cases := []struct {
		name  string
		input CreatePaymentInput
		field string
	}{
		{"missing user", CreatePaymentInput{Amount: decimal.NewFromInt(1)}, "user_id"},
		{"negative amount", CreatePaymentInput{UserID: uuid.New(), Amount: decimal.NewFromInt(-1)}, "amount"},
		{"sub-paisa amount", CreatePaymentInput{UserID: uuid.New(), Amount: decimal.RequireFromString("116.004")}, "amount"},
		{"amount too large", CreatePaymentInput{UserID: uuid.New(), Amount: decimal.RequireFromString("100000000")}, "amount"},
		{"bad method", CreatePaymentInput{UserID: uuid.New(), Amount: decimal.NewFromInt(1), Method: "cheque"}, "payment_method"},
		{"bad status", CreatePaymentInput{UserID: uuid.New(), Amount: decimal.NewFromInt(1), Status: "settled"}, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePayment(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, map[string]any{"field": tc.field}, typed.Details())
		})
	}
}

func TestCreatePaymentKeepsExplicitMethodAndStatus(t *testing.T) {
	client, conn := dbtest.Client(t)
	events := &stubOutbox{}
	svc, err := NewService(NewRepository(conn), client, events, fixedIDs{id: "pay_upi"}, "")
	require.NoError(t, err)

	payment, err := svc.CreatePayment(context.Background(), CreatePaymentInput{
		UserID: uuid.New(),
		Amount: decimal.RequireFromString("70.4"),
		Method: enums.PaymentMethodUPI,
		Status: enums.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, "70.40", payment.Amount)
	assert.Equal(t, enums.PaymentMethodUPI, payment.PaymentMethod)
	assert.Equal(t, enums.PaymentStatusCompleted, payment.Status)
	require.Len(t, events.events, 1)
	assert.Equal(t, "pay_upi", events.events[0].AggregateID)
}

func TestGetPaymentByIDMissing(t *testing.T) {
	svc, _ := newSQLiteService(t, ids.NewGenerator())

	payment, err := svc.GetPaymentByID(context.Background(), "pay_missing")
	require.NoError(t, err)
	assert.Nil(t, payment)

	_, err = svc.GetPaymentByID(context.Background(), "  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, nil, nil, nil, ""); err == nil {
		t.Fatal("expected error for missing repository")
	}
	if _, err := NewService(NewRepository(nil), nil, nil, nil, ""); err == nil {
		t.Fatal("expected error for missing tx runner")
	}
}
