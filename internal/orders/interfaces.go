package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kruthishkandula/Grocery-be/pkg/db/models"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderID string) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, orderID string) (*models.Order, error)
	FindOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListOrders(ctx context.Context, query ListQuery) ([]models.Order, int64, error)
	FindItemDetails(ctx context.Context, orderIDs []string) (map[string][]ItemDetail, error)
	FindPayments(ctx context.Context, paymentIDs []string) (map[string]*models.Payment, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus, at time.Time) error
}

// ListQuery is a normalized admin listing request. SortColumn has already
// been checked against the whitelist.
type ListQuery struct {
	Offset     int
	Limit      int
	SortColumn string
	Desc       bool
	Status     *enums.OrderStatus
}

// UserDirectory resolves user summaries for admin order reads.
type UserDirectory interface {
	FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*models.User, error)
}
