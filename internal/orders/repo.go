package orders

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kruthishkandula/Grocery-be/pkg/db/models"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	"github.com/kruthishkandula/Grocery-be/pkg/money"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOrder inserts the order row and then its items. Callers run it inside
// a transaction so a failed item insert discards the order too.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.OrderID
	}
	return db.Create(&order.Items).Error
}

// FindOrder returns nil, nil when the order does not exist.
func (r *repository) FindOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return r.findOrder(r.db.WithContext(ctx), orderID)
}

// FindOrderForUpdate locks the row on Postgres so concurrent status changes
// serialize. Other dialects read without a lock.
func (r *repository) FindOrderForUpdate(ctx context.Context, orderID string) (*models.Order, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector != nil && query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findOrder(query, orderID)
}

func (r *repository) findOrder(query *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	err := query.Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("order_id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListOrders(ctx context.Context, query ListQuery) ([]models.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Order{})
	if query.Status != nil {
		base = base.Where("status = ?", *query.Status)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Order{}, 0, nil
	}

	var orders []models.Order
	err := base.Session(&gorm.Session{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: query.SortColumn}, Desc: query.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order_id"}, Desc: query.Desc}).
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

type itemRow struct {
	ItemID           int64           `gorm:"column:item_id"`
	OrderID          string          `gorm:"column:order_id"`
	ProductID        int64           `gorm:"column:product_id"`
	ProductVariantID *int64          `gorm:"column:product_variant_id"`
	Quantity         int             `gorm:"column:quantity"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount"`
	ProductSnapshot  json.RawMessage `gorm:"column:product_snapshot"`
	ProductName      *string         `gorm:"column:product_name"`
	ShortDescription *string         `gorm:"column:short_description"`
	VariantName      *string         `gorm:"column:variant_name"`
	ImageURL         *string         `gorm:"column:image_url"`
}

const itemDetailColumns = `oi.id AS item_id, oi.order_id, oi.product_id, oi.product_variant_id,
oi.quantity, oi.unit_price, oi.total_amount, oi.product_snapshot,
p.name AS product_name, p.short_description, pv.name AS variant_name,
(SELECT pi.url FROM product_images pi WHERE pi.product_id = oi.product_id
 ORDER BY pi.display_order ASC, pi.id ASC LIMIT 1) AS image_url`

// FindItemDetails loads the items of every listed order, keyed by order id,
// each list ordered by item id.
func (r *repository) FindItemDetails(ctx context.Context, orderIDs []string) (map[string][]ItemDetail, error) {
	out := make(map[string][]ItemDetail, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	var rows []itemRow
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(itemDetailColumns).
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Joins("LEFT JOIN product_variants pv ON pv.id = oi.product_variant_id").
		Where("oi.order_id IN ?", orderIDs).
		Order("oi.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		snapshot := row.ProductSnapshot
		if len(snapshot) == 0 {
			snapshot = json.RawMessage("{}")
		}
		out[row.OrderID] = append(out[row.OrderID], ItemDetail{
			ItemID:           row.ItemID,
			ProductID:        row.ProductID,
			ProductVariantID: row.ProductVariantID,
			Quantity:         row.Quantity,
			UnitPrice:        money.New(row.UnitPrice),
			TotalAmount:      money.New(row.TotalAmount),
			ProductSnapshot:  snapshot,
			ProductName:      row.ProductName,
			ShortDescription: row.ShortDescription,
			VariantName:      row.VariantName,
			ImageURL:         row.ImageURL,
		})
	}
	return out, nil
}

func (r *repository) FindPayments(ctx context.Context, paymentIDs []string) (map[string]*models.Payment, error) {
	out := make(map[string]*models.Payment, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return out, nil
	}
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("payment_id IN ?", paymentIDs).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	for i := range payments {
		out[payments[i].PaymentID] = &payments[i]
	}
	return out, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": at,
		}).Error
}
