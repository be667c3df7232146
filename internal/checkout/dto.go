package checkout

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kruthishkandula/Grocery-be/internal/pricing"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	"github.com/kruthishkandula/Grocery-be/pkg/money"
)

// Caller identifies the authenticated user driving the workflow.
type Caller struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// QuoteInput prices a cart.
type QuoteInput struct {
	Caller Caller
	Items  []pricing.LineItem
}

// PaymentInput records a payment for a previously issued quote. QuoteDetails
// is the quote exactly as the client echoes it back.
type PaymentInput struct {
	Caller        Caller
	QuoteDetails  json.RawMessage
	PaymentMethod enums.PaymentMethod
	PaymentStatus enums.PaymentStatus
}

// PaymentResult is returned after a payment is recorded.
type PaymentResult struct {
	PaymentID   string              `json:"payment_id"`
	PaymentType enums.PaymentMethod `json:"payment_type"`
	Amount      money.Amount        `json:"amount"`
	Status      enums.PaymentStatus `json:"status"`
}

// OrderLine is a cart line submitted with the order. TotalPrice is optional;
// when present it must match unit price times quantity.
type OrderLine struct {
	ProductID        int64
	ProductVariantID *int64
	UnitPrice        decimal.Decimal
	Quantity         int
	TotalPrice       *decimal.Decimal
	ProductSnapshot  json.RawMessage
}

// PlaceOrderInput commits an order against a recorded payment.
type PlaceOrderInput struct {
	Caller          Caller
	PaymentID       string
	DeliveryAddress string
	QuoteDetails    json.RawMessage
	Items           []OrderLine
}

// OrderResult is returned after an order is committed.
type OrderResult struct {
	OrderID     string       `json:"order_id"`
	PaymentID   string       `json:"payment_id"`
	TotalAmount money.Amount `json:"total_amount"`
	ItemsCount  int          `json:"items_count"`
}

type quoteEnvelope struct {
	TotalPrice *money.Amount `json:"total_price"`
}
