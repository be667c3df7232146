package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
	"github.com/kruthishkandula/Grocery-be/pkg/money"
)

const (
	MessageUserIDRequired = "USER_ID_REQUIRED"
	MessageItemsRequired  = "ITEMS_REQUIRED"
)

// DefaultSurgeRate is the share of the subtotal charged as surge fee.
var DefaultSurgeRate = decimal.RequireFromString("0.01")

// LineItem is a client-supplied cart line.
type LineItem struct {
	ProductID        int64
	ProductVariantID *int64
	UnitPrice        decimal.Decimal
	Quantity         int
}

// QuotedItem is a cart line with its computed total.
type QuotedItem struct {
	ProductID        int64        `json:"product_id"`
	ProductVariantID *int64       `json:"product_variant_id,omitempty"`
	UnitPrice        money.Amount `json:"unit_price"`
	Quantity         int          `json:"quantity"`
	TotalPrice       money.Amount `json:"total_price"`
}

// Quote is an unpersisted price breakdown.
type Quote struct {
	Subtotal       money.Amount `json:"subtotal"`
	DeliveryFee    money.Amount `json:"delivery_fee"`
	SurgeFee       money.Amount `json:"surge_fee"`
	SGST           money.Amount `json:"sgst"`
	CGST           money.Amount `json:"cgst"`
	CouponDiscount money.Amount `json:"coupon_discount"`
	TotalPrice     money.Amount `json:"total_price"`
	Items          []QuotedItem `json:"items"`
}

// Engine computes quotes. It holds no mutable state and is safe to share.
type Engine struct {
	schedule  FeeSchedule
	surgeRate decimal.Decimal
}

func NewEngine(schedule FeeSchedule, surgeRate decimal.Decimal) (*Engine, error) {
	if err := schedule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fee schedule: %w", err)
	}
	if surgeRate.IsNegative() {
		return nil, fmt.Errorf("surge rate must be non-negative")
	}
	return &Engine{schedule: schedule, surgeRate: surgeRate}, nil
}

// NewDefaultEngine uses the stock schedule and a 1% surge.
func NewDefaultEngine() *Engine {
	return &Engine{schedule: DefaultFeeSchedule(), surgeRate: DefaultSurgeRate}
}

// ComputeQuote prices items for userID. Each line total is unit price times
// quantity; fees derive from the subtotal only.
func (e *Engine) ComputeQuote(userID uuid.UUID, items []LineItem) (Quote, error) {
	if userID == uuid.Nil {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required").WithMessageCode(MessageUserIDRequired)
	}
	if len(items) == 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "items are required").WithMessageCode(MessageItemsRequired)
	}

	quoted := make([]QuotedItem, 0, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		if err := validateItem(i, item); err != nil {
			return Quote{}, err
		}
		lineTotal := LineTotal(item.UnitPrice, item.Quantity)
		subtotal = subtotal.Add(lineTotal)
		quoted = append(quoted, QuotedItem{
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			UnitPrice:        money.New(item.UnitPrice),
			Quantity:         item.Quantity,
			TotalPrice:       money.New(lineTotal),
		})
	}
	subtotal = money.Round(subtotal)

	deliveryFee := money.Round(e.schedule.FeeFor(subtotal))
	surgeFee := money.Round(subtotal.Mul(e.surgeRate))
	sgst := decimal.Zero
	cgst := decimal.Zero
	coupon := decimal.Zero

	total := subtotal.Add(deliveryFee).Add(surgeFee).Add(sgst).Add(cgst).Sub(coupon)

	return Quote{
		Subtotal:       money.New(subtotal),
		DeliveryFee:    money.New(deliveryFee),
		SurgeFee:       money.New(surgeFee),
		SGST:           money.New(sgst),
		CGST:           money.New(cgst),
		CouponDiscount: money.New(coupon),
		TotalPrice:     money.New(total),
		Items:          quoted,
	}, nil
}

// LineTotal is unit price times quantity at two places.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return money.Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

func validateItem(index int, item LineItem) error {
	var field string
	switch {
	case item.ProductID <= 0:
		field = "product_id"
	case item.UnitPrice.IsNegative():
		field = "unit_price"
	case item.Quantity <= 0:
		field = "quantity"
	default:
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].%s is invalid", index, field)).
		WithDetails(map[string]any{"index": index, "field": field})
}
