package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/kruthishkandula/Grocery-be/pkg/enums"
)

// OrderCreatedEvent is emitted when an order and its items are committed.
type OrderCreatedEvent struct {
	OrderID     string            `json:"order_id"`
	UserID      uuid.UUID         `json:"user_id"`
	PaymentID   string            `json:"payment_id"`
	TotalAmount string            `json:"total_amount"`
	ItemsCount  int               `json:"items_count"`
	Status      enums.OrderStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OrderStatusChangedEvent records one legal transition of an order.
type OrderStatusChangedEvent struct {
	OrderID    string            `json:"order_id"`
	UserID     uuid.UUID         `json:"user_id"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
	ChangedBy  enums.UserRole    `json:"changed_by"`
	ChangedAt  time.Time         `json:"changed_at"`
}

// PaymentCreatedEvent is emitted when a payment row is recorded.
type PaymentCreatedEvent struct {
	PaymentID     string              `json:"payment_id"`
	UserID        uuid.UUID           `json:"user_id"`
	Amount        string              `json:"amount"`
	Currency      string              `json:"currency"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Status        enums.PaymentStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
}
