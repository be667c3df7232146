package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// OrderEventRow mirrors the order_events BigQuery schema. Amounts are stored
// in minor units (paise for INR).
type OrderEventRow struct {
	EventID        string             `bigquery:"event_id"`
	EventType      string             `bigquery:"event_type"`
	OccurredAt     time.Time          `bigquery:"occurred_at"`
	OrderID        *string            `bigquery:"order_id"`
	PaymentID      *string            `bigquery:"payment_id"`
	UserID         *string            `bigquery:"user_id"`
	Status         *string            `bigquery:"status"`
	PreviousStatus *string            `bigquery:"previous_status"`
	ChangedBy      *string            `bigquery:"changed_by"`
	PaymentMethod  *string            `bigquery:"payment_method"`
	Currency       *string            `bigquery:"currency"`
	AmountMinor    *int64             `bigquery:"amount_minor"`
	ItemsCount     *int64             `bigquery:"items_count"`
	Payload        cbigquery.NullJSON `bigquery:"payload"`
}
