package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kruthishkandula/Grocery-be/pkg/enums"
)

// Payment is a client-asserted payment intent. Amount is the canonical
// two-decimal string and never changes after insert.
type Payment struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	PaymentID     string              `gorm:"column:payment_id;not null;uniqueIndex:payments_payment_id_unique"`
	Currency      string              `gorm:"column:currency;not null;default:INR"`
	Amount        string              `gorm:"column:amount;not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:payment_status;default:pending"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null;default:cod"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Payment) TableName() string { return "payments" }
