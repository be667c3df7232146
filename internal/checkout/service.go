package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kruthishkandula/Grocery-be/internal/orders"
	"github.com/kruthishkandula/Grocery-be/internal/payments"
	"github.com/kruthishkandula/Grocery-be/internal/pricing"
	"github.com/kruthishkandula/Grocery-be/pkg/db/models"
	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/metrics"
	"github.com/kruthishkandula/Grocery-be/pkg/money"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox"
)

// Symbolic message codes surfaced by the workflow.
const (
	MessagePaymentNotFound = "PAYMENT_NOT_FOUND"
	MessageUserIDRequired  = "USER_ID_REQUIRED"
	MessageItemsRequired   = "ITEMS_REQUIRED"
	MessageItemTotal       = "ITEM_TOTAL_MISMATCH"
)

type quoter interface {
	ComputeQuote(userID uuid.UUID, items []pricing.LineItem) (pricing.Quote, error)
}

type orderIDGenerator interface {
	OrderID() (string, error)
}

// Service runs quote, payment and order placement. It never retries.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (pricing.Quote, error)
	CreatePayment(ctx context.Context, input PaymentInput) (*PaymentResult, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderResult, error)
}

type service struct {
	pricing  quoter
	payments payments.Service
	orders   orders.Service
	ids      orderIDGenerator
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// ServiceParams wires the workflow collaborators.
type ServiceParams struct {
	Pricing  quoter
	Payments payments.Service
	Orders   orders.Service
	IDs      orderIDGenerator
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
}

// NewService builds the checkout workflow.
func NewService(params ServiceParams) (Service, error) {
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.IDs == nil {
		return nil, fmt.Errorf("order id generator required")
	}
	return &service{
		pricing:  params.Pricing,
		payments: params.Payments,
		orders:   params.Orders,
		ids:      params.IDs,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (pricing.Quote, error) {
	quote, err := s.pricing.ComputeQuote(input.Caller.UserID, input.Items)
	s.metrics.IncQuote(outcomeFor(err))
	return quote, err
}

func (s *service) CreatePayment(ctx context.Context, input PaymentInput) (*PaymentResult, error) {
	result, err := s.createPayment(ctx, input)
	s.metrics.IncPayment(outcomeFor(err))
	return result, err
}

func (s *service) createPayment(ctx context.Context, input PaymentInput) (*PaymentResult, error) {
	if input.Caller.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required").WithMessageCode(MessageUserIDRequired)
	}
	amount, err := QuoteTotal(input.QuoteDetails)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote total must be greater than zero").
			WithDetails(map[string]any{"field": "quote_details.total_price"})
	}

	payment, err := s.payments.CreatePayment(ctx, payments.CreatePaymentInput{
		UserID: input.Caller.UserID,
		Amount: amount,
		Method: input.PaymentMethod,
		Status: input.PaymentStatus,
		Actor:  actorRef(input.Caller),
	})
	if err != nil {
		return nil, err
	}
	return &PaymentResult{
		PaymentID:   payment.PaymentID,
		PaymentType: payment.PaymentMethod,
		Amount:      money.New(amount),
		Status:      payment.Status,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderResult, error) {
	result, err := s.placeOrder(ctx, input)
	s.metrics.IncOrder(outcomeFor(err))
	return result, err
}

// placeOrder checks, in order, that the payment exists, belongs to the caller
// and matches the quote total. None of the checks write.
func (s *service) placeOrder(ctx context.Context, input PlaceOrderInput) (*OrderResult, error) {
	if input.Caller.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required").WithMessageCode(MessageUserIDRequired)
	}
	paymentID := strings.TrimSpace(input.PaymentID)
	if paymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required").
			WithDetails(map[string]any{"field": "payment_id"})
	}
	address := strings.TrimSpace(input.DeliveryAddress)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required").
			WithDetails(map[string]any{"field": "delivery_address"})
	}
	quoteTotal, err := QuoteTotal(input.QuoteDetails)
	if err != nil {
		return nil, err
	}
	items, err := buildOrderItems(input.Items)
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found").WithMessageCode(MessagePaymentNotFound)
	}
	if payment.UserID != input.Caller.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to another user")
	}
	if err := s.verifyAmount(ctx, payment, quoteTotal); err != nil {
		return nil, err
	}

	orderID, err := s.ids.OrderID()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
	}
	order, err := s.orders.CreateOrder(ctx, orders.NewOrder{
		OrderID:         orderID,
		UserID:          input.Caller.UserID,
		TotalAmount:     quoteTotal,
		DeliveryAddress: address,
		QuoteDetails:    input.QuoteDetails,
		PaymentID:       payment.PaymentID,
		Items:           items,
		ActorRole:       input.Caller.Role,
	})
	if err != nil {
		return nil, err
	}

	return &OrderResult{
		OrderID:     order.OrderID,
		PaymentID:   order.PaymentID,
		TotalAmount: money.New(order.TotalAmount),
		ItemsCount:  len(order.Items),
	}, nil
}

func (s *service) verifyAmount(ctx context.Context, payment *models.Payment, quoteTotal decimal.Decimal) error {
	recorded, err := money.Parse(payment.Amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored payment amount unreadable")
	}
	if recorded.Equal(quoteTotal) {
		return nil
	}
	s.metrics.IncAmountMismatch()
	if s.logg != nil {
		fields := map[string]any{
			"payment_id":  payment.PaymentID,
			"paid_amount": money.Format(recorded),
			"quote_total": money.Format(quoteTotal),
		}
		s.logg.Warn(s.logg.WithFields(ctx, fields), "payment amount does not match quote")
	}
	return pkgerrors.New(pkgerrors.CodeAmountMismatch, "payment amount does not match quote total").
		WithDetails(map[string]any{
			"payment_amount": money.Format(recorded),
			"quote_total":    money.Format(quoteTotal),
		})
}

// QuoteTotal reads total_price from a client-echoed quote. The value may be a
// JSON number or string.
func QuoteTotal(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Zero, missingQuoteTotal()
	}
	var parsed quoteEnvelope
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quote_details is malformed").
			WithDetails(map[string]any{"field": "quote_details.total_price"})
	}
	if parsed.TotalPrice == nil {
		return decimal.Zero, missingQuoteTotal()
	}
	total := parsed.TotalPrice.Decimal
	if err := money.Check(total); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quote_details.total_price is invalid").
			WithDetails(map[string]any{"field": "quote_details.total_price", "error": err.Error()})
	}
	return total, nil
}

func missingQuoteTotal() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "quote_details.total_price is required").
		WithDetails(map[string]any{"field": "quote_details.total_price"})
}

func buildOrderItems(lines []OrderLine) ([]orders.NewOrderItem, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items are required").
			WithMessageCode(MessageItemsRequired).
			WithDetails(map[string]any{"field": "items"})
	}
	items := make([]orders.NewOrderItem, 0, len(lines))
	for i, line := range lines {
		var field string
		switch {
		case line.ProductID <= 0:
			field = "product_id"
		case line.UnitPrice.IsNegative(), money.Check(line.UnitPrice) != nil:
			field = "unit_price"
		case line.Quantity <= 0:
			field = "quantity"
		}
		if field != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].%s is invalid", i, field)).
				WithDetails(map[string]any{"index": i, "field": field})
		}

		lineTotal := pricing.LineTotal(line.UnitPrice, line.Quantity)
		if money.Check(lineTotal) != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].total_price is out of range", i)).
				WithDetails(map[string]any{"index": i, "field": "total_price"})
		}
		if line.TotalPrice != nil && !line.TotalPrice.Equal(lineTotal) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].total_price does not equal unit_price * quantity", i)).
				WithMessageCode(MessageItemTotal).
				WithDetails(map[string]any{"index": i, "field": "total_price"})
		}
		items = append(items, orders.NewOrderItem{
			ProductID:        line.ProductID,
			ProductVariantID: line.ProductVariantID,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			TotalAmount:      lineTotal,
			ProductSnapshot:  line.ProductSnapshot,
		})
	}
	return items, nil
}

func actorRef(caller Caller) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: caller.UserID, Role: string(caller.Role)}
}

func outcomeFor(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	typed := pkgerrors.As(err)
	if typed != nil && pkgerrors.MetadataFor(typed.Code()).HTTPStatus < 500 {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
