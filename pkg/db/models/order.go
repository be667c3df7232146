package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kruthishkandula/Grocery-be/pkg/enums"
)

// Order is the persisted checkout result. It is only ever written together
// with its OrderItems.
type Order struct {
	OrderID         string            `gorm:"column:order_id;primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	DeliveryAddress string            `gorm:"column:delivery_address;not null"`
	QuoteDetails    json.RawMessage   `gorm:"column:quote_details;type:jsonb;not null"`
	PaymentID       string            `gorm:"column:payment_id;not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:pending"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;references:OrderID"`
}

func (Order) TableName() string { return "orders" }
