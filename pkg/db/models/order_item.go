package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem freezes a cart line at checkout. Prices and snapshot are never
// recomputed from the catalog.
type OrderItem struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID          string          `gorm:"column:order_id;not null"`
	ProductID        int64           `gorm:"column:product_id;not null"`
	ProductVariantID *int64          `gorm:"column:product_variant_id"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null"`
	ProductSnapshot  json.RawMessage `gorm:"column:product_snapshot;type:jsonb;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string { return "order_items" }
