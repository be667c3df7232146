// Package orders holds the HTTP handlers for the /orders surface.
package orders

import (
	"context"
	"net/http"

	"github.com/kruthishkandula/Grocery-be/api/middleware"
	"github.com/kruthishkandula/Grocery-be/api/responses"
	"github.com/kruthishkandula/Grocery-be/api/validators"
	"github.com/kruthishkandula/Grocery-be/internal/checkout"
	internalorders "github.com/kruthishkandula/Grocery-be/internal/orders"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/metrics"
)

// Envelope message codes.
const (
	MessageQuoteFetched     = "ORDER_QUOTE_DETAILS_FETCHED"
	MessagePaymentCreated   = "PAYMENT_CREATED"
	MessageOrderCreated     = "ORDER_CREATED"
	MessageOrderDetails     = "ORDER_DETAILS_FETCHED"
	MessageNoOrders         = "NO_ORDERS_FOUND"
	MessageStatusUpdated    = "ORDER_STATUS_UPDATED"
	MessageAllOrders        = "ALL_ORDERS_FETCHED"
	MessageOrderNotFound    = "ORDER_NOT_FOUND"
	MessageOrderIDRequired  = "ORDER_ID_REQUIRED"
	MessageStatusRequired   = "ORDER_ID_AND_STATUS_REQUIRED"
	MessageUserIDRequired   = "USER_ID_REQUIRED"
	MessageItemsRequired    = "ITEMS_REQUIRED"
	MessageQuoteFailed      = "QUOTE_GENERATION_FAILED"
	MessagePaymentFailed    = "PAYMENT_CREATION_FAILED"
	MessageOrderFailed      = "ORDER_CREATION_FAILED"
	MessageOrdersFetchError = "ORDERS_FETCH_ERROR"
	MessageDetailsError     = "ORDER_DETAILS_FETCH_ERROR"
	MessageStatusFailed     = "ORDER_STATUS_UPDATE_FAILED"
)

// Quote prices the submitted cart without persisting anything.
func Quote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFrom(r.Context(), w, logg)
		if !ok {
			return
		}
		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, fieldMessage(err, "items", MessageItemsRequired), MessageQuoteFailed)
			return
		}

		quote, err := svc.Quote(r.Context(), checkout.QuoteInput{Caller: caller, Items: req.lineItems()})
		if err != nil {
			writeError(r.Context(), logg, w, err, MessageQuoteFailed)
			return
		}
		responses.WriteSuccess(w, MessageQuoteFetched, quote)
	}
}

// CreatePayment records a payment for the echoed quote total.
func CreatePayment(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFrom(r.Context(), w, logg)
		if !ok {
			return
		}
		var req paymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err, MessagePaymentFailed)
			return
		}

		result, err := svc.CreatePayment(r.Context(), checkout.PaymentInput{
			Caller:        caller,
			QuoteDetails:  req.QuoteDetails,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: req.PaymentStatus,
		})
		if err != nil {
			writeError(r.Context(), logg, w, err, MessagePaymentFailed)
			return
		}
		if logg != nil {
			logg.Info(logg.WithPaymentID(r.Context(), result.PaymentID), "payment.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, MessagePaymentCreated, result)
	}
}

// CreateOrder commits an order against a recorded payment.
func CreateOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFrom(r.Context(), w, logg)
		if !ok {
			return
		}
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err, MessageOrderFailed)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), checkout.PlaceOrderInput{
			Caller:          caller,
			PaymentID:       req.PaymentID,
			DeliveryAddress: validators.SanitizeText(req.DeliveryAddress),
			QuoteDetails:    req.QuoteDetails,
			Items:           req.orderLines(),
		})
		if err != nil {
			writeError(r.Context(), logg, w, err, MessageOrderFailed)
			return
		}
		if logg != nil {
			logg.Info(logg.WithOrderID(r.Context(), result.OrderID), "order.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, MessageOrderCreated, result)
	}
}

// MyOrders lists the caller's orders, newest first.
func MyOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFrom(r.Context(), w, logg)
		if !ok {
			return
		}
		var req emptyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err, MessageOrdersFetchError)
			return
		}

		list, err := svc.GetOrdersByUserID(r.Context(), caller.UserID)
		if err != nil {
			writeError(r.Context(), logg, w, err, MessageOrdersFetchError)
			return
		}
		message := MessageOrderDetails
		if len(list) == 0 {
			message = MessageNoOrders
		}
		responses.WriteSuccess(w, message, list)
	}
}

// OrderDetails returns one of the caller's orders. Orders owned by someone
// else are a 403 carrying no order fields.
func OrderDetails(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFrom(r.Context(), w, logg)
		if !ok {
			return
		}
		var req orderIDRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, withMessage(err, MessageOrderIDRequired), MessageDetailsError)
			return
		}

		detail, err := svc.GetOrderByID(r.Context(), req.OrderID, false)
		if err != nil {
			writeError(r.Context(), logg, w, err, MessageDetailsError)
			return
		}
		if detail == nil {
			writeError(r.Context(), logg, w, orderNotFound(), MessageDetailsError)
			return
		}
		if detail.UserID != caller.UserID {
			writeError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user"), MessageDetailsError)
			return
		}
		responses.WriteSuccess(w, MessageOrderDetails, detail)
	}
}

// UpdateStatus lets the owner cancel their order. Admins calling this route
// are held to the owner rules too.
func UpdateStatus(svc internalorders.Service, rec *metrics.CheckoutMetrics, logg *logger.Logger) http.HandlerFunc {
	return statusHandler(svc, rec, logg, enums.UserRoleUser)
}

// AdminUpdateStatus applies any legal transition to any order.
func AdminUpdateStatus(svc internalorders.Service, rec *metrics.CheckoutMetrics, logg *logger.Logger) http.HandlerFunc {
	return statusHandler(svc, rec, logg, enums.UserRoleAdmin)
}

func statusHandler(svc internalorders.Service, rec *metrics.CheckoutMetrics, logg *logger.Logger, actAs enums.UserRole) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerFrom(r.Context(), w, logg)
		if !ok {
			return
		}
		caller.Role = actAs
		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, withMessage(err, MessageStatusRequired), MessageStatusFailed)
			return
		}

		order, err := svc.UpdateOrderStatus(r.Context(), internalorders.UpdateStatusInput{
			OrderID:     req.OrderID,
			Status:      req.Status,
			ActorUserID: caller.UserID,
			ActorRole:   caller.Role,
		})
		if err != nil {
			writeError(r.Context(), logg, w, err, MessageStatusFailed)
			return
		}
		if order == nil {
			writeError(r.Context(), logg, w, orderNotFound(), MessageStatusFailed)
			return
		}
		rec.IncTransition(string(order.Status))
		responses.WriteSuccess(w, MessageStatusUpdated, internalorders.ViewFromModel(order))
	}
}

// AdminListOrders pages through every order.
func AdminListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminListRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, err, MessageOrdersFetchError)
			return
		}

		page, err := svc.ListOrders(r.Context(), internalorders.ListParams{
			Page:      req.Page,
			PageSize:  req.PageSize,
			SortBy:    req.SortBy,
			SortOrder: req.SortOrder,
			Status:    req.Status,
		})
		if err != nil {
			writeError(r.Context(), logg, w, err, MessageOrdersFetchError)
			return
		}
		responses.WriteSuccess(w, MessageAllOrders, page)
	}
}

// AdminOrderDetails returns any order with its user summary.
func AdminOrderDetails(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderIDRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeError(r.Context(), logg, w, withMessage(err, MessageOrderIDRequired), MessageDetailsError)
			return
		}

		detail, err := svc.GetOrderByID(r.Context(), req.OrderID, true)
		if err != nil {
			writeError(r.Context(), logg, w, err, MessageDetailsError)
			return
		}
		if detail == nil {
			writeError(r.Context(), logg, w, orderNotFound(), MessageDetailsError)
			return
		}
		responses.WriteSuccess(w, MessageOrderDetails, detail)
	}
}

func callerFrom(ctx context.Context, w http.ResponseWriter, logg *logger.Logger) (checkout.Caller, bool) {
	userID, role, ok := middleware.CallerFromContext(ctx)
	if !ok {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id is required").
			WithMessageCode(MessageUserIDRequired))
		return checkout.Caller{}, false
	}
	if role == "" {
		role = enums.UserRoleUser
	}
	return checkout.Caller{UserID: userID, Role: role}, true
}

func orderNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").WithMessageCode(MessageOrderNotFound)
}

// writeError labels server-side failures with the operation's failure code so
// clients see which step broke.
func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error, failure string) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	if pkgerrors.MetadataFor(typed.Code()).HTTPStatus >= http.StatusInternalServerError {
		typed = typed.WithMessageCode(failure)
	}
	responses.WriteError(ctx, logg, w, typed)
}

// withMessage relabels validation failures with a route-specific code.
func withMessage(err error, message string) error {
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		return err
	}
	return pkgerrors.As(err).WithMessageCode(message)
}

// fieldMessage relabels a validation failure only when it names field.
func fieldMessage(err error, field, message string) error {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		return err
	}
	if details, ok := typed.Details().(map[string]any); ok && details["field"] == field {
		return typed.WithMessageCode(message)
	}
	return err
}
