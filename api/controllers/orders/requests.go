package orders

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/kruthishkandula/Grocery-be/internal/checkout"
	"github.com/kruthishkandula/Grocery-be/internal/pricing"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
)

type cartItem struct {
	ProductID        int64            `json:"product_id" validate:"required,gt=0"`
	ProductVariantID *int64           `json:"product_variant_id" validate:"omitempty,gt=0"`
	UnitPrice        *decimal.Decimal `json:"unit_price" validate:"required"`
	Quantity         int              `json:"quantity" validate:"required,gt=0"`
	TotalPrice       *decimal.Decimal `json:"total_price"`
	ProductSnapshot  json.RawMessage  `json:"product_snapshot"`
}

type quoteRequest struct {
	Items []cartItem `json:"items" validate:"required,min=1,dive"`
}

func (r quoteRequest) lineItems() []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, pricing.LineItem{
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			UnitPrice:        *item.UnitPrice,
			Quantity:         item.Quantity,
		})
	}
	return out
}

type paymentRequest struct {
	QuoteDetails  json.RawMessage     `json:"quote_details" validate:"required"`
	PaymentMethod enums.PaymentMethod `json:"payment_method" validate:"required,oneof=credit_card debit_card upi cod"`
	PaymentStatus enums.PaymentStatus `json:"payment_status" validate:"omitempty,oneof=pending completed failed refunded"`
}

type createOrderRequest struct {
	Items           []cartItem      `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string          `json:"delivery_address" validate:"required,max=500"`
	QuoteDetails    json.RawMessage `json:"quote_details" validate:"required"`
	PaymentID       string          `json:"payment_id" validate:"required"`
}

func (r createOrderRequest) orderLines() []checkout.OrderLine {
	out := make([]checkout.OrderLine, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, checkout.OrderLine{
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			UnitPrice:        *item.UnitPrice,
			Quantity:         item.Quantity,
			TotalPrice:       item.TotalPrice,
			ProductSnapshot:  item.ProductSnapshot,
		})
	}
	return out
}

type emptyRequest struct{}

type orderIDRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

type statusRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

type adminListRequest struct {
	Page      int    `json:"page" validate:"omitempty,gte=1"`
	PageSize  int    `json:"pageSize" validate:"omitempty,gte=1,lte=100"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
	Status    string `json:"status"`
}
