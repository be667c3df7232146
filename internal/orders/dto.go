package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kruthishkandula/Grocery-be/pkg/db/models"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	"github.com/kruthishkandula/Grocery-be/pkg/money"
	"github.com/kruthishkandula/Grocery-be/pkg/pagination"
)

// NewOrder is everything needed to commit an order and its items in one
// transaction. Amounts come from the verified quote and are stored as is.
type NewOrder struct {
	OrderID         string
	UserID          uuid.UUID
	TotalAmount     decimal.Decimal
	DeliveryAddress string
	QuoteDetails    json.RawMessage
	PaymentID       string
	Items           []NewOrderItem
	ActorRole       enums.UserRole
}

// NewOrderItem is one frozen cart line.
type NewOrderItem struct {
	ProductID        int64
	ProductVariantID *int64
	Quantity         int
	UnitPrice        decimal.Decimal
	TotalAmount      decimal.Decimal
	ProductSnapshot  json.RawMessage
}

// ItemDetail is an order item decorated with catalog names and the first image.
type ItemDetail struct {
	ItemID           int64           `json:"item_id"`
	ProductID        int64           `json:"product_id"`
	ProductVariantID *int64          `json:"product_variant_id"`
	Quantity         int             `json:"quantity"`
	UnitPrice        money.Amount    `json:"unit_price"`
	TotalAmount      money.Amount    `json:"total_amount"`
	ProductSnapshot  json.RawMessage `json:"product_snapshot"`
	ProductName      *string         `json:"product_name"`
	ShortDescription *string         `json:"short_description"`
	VariantName      *string         `json:"variant_name"`
	ImageURL         *string         `json:"image_url"`
}

// PaymentSummary is the slice of the payment row shown with an order.
type PaymentSummary struct {
	ID        int64               `json:"id"`
	PaymentID string              `json:"payment_id"`
	Amount    string              `json:"amount"`
	Status    enums.PaymentStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// UserSummary is only attached for admin reads.
type UserSummary struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
}

// OrderView is the order row as returned by the API.
type OrderView struct {
	OrderID         string            `json:"orderId"`
	UserID          uuid.UUID         `json:"userId"`
	TotalAmount     money.Amount      `json:"totalAmount"`
	DeliveryAddress string            `json:"deliveryAddress"`
	QuoteDetails    json.RawMessage   `json:"quoteDetails"`
	Status          enums.OrderStatus `json:"status"`
	PaymentID       string            `json:"paymentId"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// OrderDetail is an order with its items, payment and optionally its user.
type OrderDetail struct {
	OrderView
	Items   []ItemDetail    `json:"items"`
	Payment *PaymentSummary `json:"payment"`
	User    *UserSummary    `json:"user,omitempty"`
}

// ListParams drives the admin order listing.
type ListParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	Status    string
}

// PageMeta wraps the pagination block.
type PageMeta struct {
	Pagination pagination.Meta `json:"pagination"`
}

// PagedResult is one page of order details.
type PagedResult struct {
	Data []OrderDetail `json:"data"`
	Meta PageMeta      `json:"meta"`
}

// UpdateStatusInput carries a status change and the actor requesting it.
type UpdateStatusInput struct {
	OrderID     string
	Status      string
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// ViewFromModel maps an order row to its API shape.
func ViewFromModel(order *models.Order) OrderView {
	quote := order.QuoteDetails
	if len(quote) == 0 {
		quote = json.RawMessage("{}")
	}
	return OrderView{
		OrderID:         order.OrderID,
		UserID:          order.UserID,
		TotalAmount:     money.New(order.TotalAmount),
		DeliveryAddress: order.DeliveryAddress,
		QuoteDetails:    quote,
		Status:          order.Status,
		PaymentID:       order.PaymentID,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func paymentSummaryFromModel(p *models.Payment) *PaymentSummary {
	if p == nil {
		return nil
	}
	return &PaymentSummary{
		ID:        p.ID,
		PaymentID: p.PaymentID,
		Amount:    p.Amount,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}

func userSummaryFromModel(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:     u.ID,
		UserID: u.UserID,
		Name:   u.Username,
		Email:  u.Email,
		Phone:  u.PhoneNumber,
	}
}
