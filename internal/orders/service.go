package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/kruthishkandula/Grocery-be/pkg/db"
	"github.com/kruthishkandula/Grocery-be/pkg/db/models"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
	"github.com/kruthishkandula/Grocery-be/pkg/money"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox/payloads"
	"github.com/kruthishkandula/Grocery-be/pkg/pagination"
)

const uniqueOrderIDConstraint = "orders_pkey"

// sortColumns is the full set of columns the admin list may sort by.
var sortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"total_amount": "total_amount",
	"status":       "status",
	"order_id":     "order_id",
}

const defaultSortColumn = "created_at"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines order store operations.
type Service interface {
	CreateOrder(ctx context.Context, input NewOrder) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID string, includeUser bool) (*OrderDetail, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	ListOrders(ctx context.Context, params ListParams) (*PagedResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	users  UserDirectory
	now    func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, users UserDirectory) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outbox,
		users:  users,
		now:    time.Now,
	}, nil
}

// CreateOrder commits the order, every item and the order_created event in a
// single transaction. The order is always created confirmed.
func (s *service) CreateOrder(ctx context.Context, input NewOrder) (*models.Order, error) {
	if err := validateNewOrder(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	quote := input.QuoteDetails
	if len(quote) == 0 {
		quote = json.RawMessage("{}")
	}
	order := &models.Order{
		OrderID:         input.OrderID,
		UserID:          input.UserID,
		TotalAmount:     money.Round(input.TotalAmount),
		DeliveryAddress: input.DeliveryAddress,
		QuoteDetails:    quote,
		PaymentID:       input.PaymentID,
		Status:          enums.OrderStatusConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           make([]models.OrderItem, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		snapshot := item.ProductSnapshot
		if len(snapshot) == 0 {
			snapshot = json.RawMessage("{}")
		}
		order.Items = append(order.Items, models.OrderItem{
			OrderID:          input.OrderID,
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			UnitPrice:        money.Round(item.UnitPrice),
			TotalAmount:      money.Round(item.TotalAmount),
			ProductSnapshot:  snapshot,
			CreatedAt:        now,
		})
	}

	role := input.ActorRole
	if role == "" {
		role = enums.UserRoleUser
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.OrderID,
			Actor:         &outbox.ActorRef{UserID: order.UserID, Role: string(role)},
			OccurredAt:    now,
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.OrderID,
				UserID:      order.UserID,
				PaymentID:   order.PaymentID,
				TotalAmount: money.Format(order.TotalAmount),
				ItemsCount:  len(order.Items),
				Status:      order.Status,
				CreatedAt:   now,
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, uniqueOrderIDConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order id already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return order, nil
}

func validateNewOrder(input NewOrder) error {
	switch {
	case strings.TrimSpace(input.OrderID) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required").
			WithDetails(map[string]any{"field": "order_id"})
	case input.UserID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required").
			WithDetails(map[string]any{"field": "user_id"})
	case strings.TrimSpace(input.PaymentID) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "payment id is required").
			WithDetails(map[string]any{"field": "payment_id"})
	case strings.TrimSpace(input.DeliveryAddress) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required").
			WithDetails(map[string]any{"field": "delivery_address"})
	case len(input.Items) == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item").
			WithDetails(map[string]any{"field": "items"})
	}
	return nil
}

// GetOrderByID returns nil, nil when the order does not exist.
func (s *service) GetOrderByID(ctx context.Context, orderID string, includeUser bool) (*OrderDetail, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required").
			WithDetails(map[string]any{"field": "order_id"})
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, nil
	}
	details, err := s.hydrate(ctx, []models.Order{*order}, includeUser)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// GetOrdersByUserID returns the caller's orders newest first, or an empty slice.
func (s *service) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]OrderDetail, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required").
			WithDetails(map[string]any{"field": "user_id"})
	}
	orders, err := s.repo.FindOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user orders")
	}
	return s.hydrate(ctx, orders, false)
}

// UpdateOrderStatus applies one legal transition. It returns nil, nil when the
// order does not exist and the unchanged order when the status already matches.
func (s *service) UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required").
			WithDetails(map[string]any{"field": "order_id"})
	}
	target, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
			WithMessageCode("INVALID_ORDER_STATUS").
			WithDetails(map[string]any{"field": "status"})
	}
	isAdmin := input.ActorRole == enums.UserRoleAdmin

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order == nil {
			return nil
		}
		if !isAdmin {
			if order.UserID != input.ActorUserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
			}
			if target != enums.OrderStatusCancelled {
				return pkgerrors.New(pkgerrors.CodeForbidden, "customers may only cancel orders").
					WithDetails(map[string]any{"field": "status"})
			}
		}
		if order.Status == target {
			updated = order
			return nil
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is already %s", order.Status)).
				WithDetails(map[string]any{"from": order.Status, "to": target, "terminal": true})
		}
		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", order.Status, target)).
				WithDetails(map[string]any{"from": order.Status, "to": target})
		}

		now := s.now().UTC()
		if err := repo.UpdateStatus(ctx, orderID, target, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		from := order.Status
		order.Status = target
		order.UpdatedAt = now

		role := input.ActorRole
		if role == "" {
			role = enums.UserRoleUser
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.OrderID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(role)},
			OccurredAt:    now,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:    order.OrderID,
				UserID:     order.UserID,
				FromStatus: from,
				ToStatus:   target,
				ChangedBy:  role,
				ChangedAt:  now,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit status change")
		}
		updated = order
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	return updated, nil
}

// ListOrders pages through every order for admins.
func (s *service) ListOrders(ctx context.Context, params ListParams) (*PagedResult, error) {
	page := pagination.Params{Page: params.Page, PageSize: params.PageSize}.Normalize()

	sortBy := strings.ToLower(strings.TrimSpace(params.SortBy))
	if sortBy == "" {
		sortBy = defaultSortColumn
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported sortBy %q", params.SortBy)).
			WithDetails(map[string]any{"field": "sortBy"})
	}

	query := ListQuery{
		Offset:     page.Offset(),
		Limit:      page.PageSize,
		SortColumn: column,
		Desc:       pagination.NormalizeSortOrder(params.SortOrder) == pagination.SortDesc,
	}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, err := enums.ParseOrderStatus(strings.ToLower(raw))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
				WithDetails(map[string]any{"field": "status"})
		}
		query.Status = &status
	}

	orders, total, err := s.repo.ListOrders(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	details, err := s.hydrate(ctx, orders, true)
	if err != nil {
		return nil, err
	}
	return &PagedResult{
		Data: details,
		Meta: PageMeta{Pagination: pagination.NewMeta(page, total)},
	}, nil
}

// hydrate attaches items, payment and optionally user summaries, keeping the
// input order.
func (s *service) hydrate(ctx context.Context, orders []models.Order, includeUser bool) ([]OrderDetail, error) {
	out := make([]OrderDetail, 0, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	orderIDs := make([]string, 0, len(orders))
	paymentIDs := make([]string, 0, len(orders))
	userIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.OrderID)
		if order.PaymentID != "" {
			paymentIDs = append(paymentIDs, order.PaymentID)
		}
		userIDs = append(userIDs, order.UserID)
	}

	items, err := s.repo.FindItemDetails(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
	}
	payments, err := s.repo.FindPayments(ctx, paymentIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order payments")
	}
	var users map[uuid.UUID]*models.User
	if includeUser {
		users, err = s.users.FindByUserIDs(ctx, userIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order users")
		}
	}

	for i := range orders {
		order := &orders[i]
		orderItems := items[order.OrderID]
		if orderItems == nil {
			orderItems = []ItemDetail{}
		}
		detail := OrderDetail{
			OrderView: ViewFromModel(order),
			Items:     orderItems,
			Payment:   paymentSummaryFromModel(payments[order.PaymentID]),
		}
		if includeUser {
			detail.User = userSummaryFromModel(users[order.UserID])
		}
		out = append(out, detail)
	}
	return out, nil
}
