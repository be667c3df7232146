package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kruthishkandula/Grocery-be/api/controllers"
	ordercontrollers "github.com/kruthishkandula/Grocery-be/api/controllers/orders"
	"github.com/kruthishkandula/Grocery-be/api/middleware"
	"github.com/kruthishkandula/Grocery-be/api/responses"
	"github.com/kruthishkandula/Grocery-be/internal/checkout"
	"github.com/kruthishkandula/Grocery-be/internal/orders"
	"github.com/kruthishkandula/Grocery-be/pkg/config"
	"github.com/kruthishkandula/Grocery-be/pkg/db"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/metrics"
	"github.com/kruthishkandula/Grocery-be/pkg/redis"
)

const checkoutRateLimitPolicy = "checkout"

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions middleware.SessionChecker,
	gatherer prometheus.Gatherer,
	checkoutService checkout.Service,
	ordersSvc orders.Service,
	checkoutMetrics *metrics.CheckoutMetrics,
) http.Handler {
	responses.ExposeErrors(!cfg.App.IsProd() && cfg.FeatureFlags.ExposeErrors)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	readiness := map[string]controllers.Pinger{"postgres": dbP}
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		readiness["redis"] = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	checkoutWrites := []func(http.Handler) http.Handler{
		middleware.RateLimit(middleware.RateLimitPolicy{
			Name:   checkoutRateLimitPolicy,
			Window: cfg.Checkout.RateLimitWindow,
			Limit:  cfg.Checkout.RateLimitPerUser,
		}, rateLimiter(redisClient), logg),
		middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg),
	}

	r.Route("/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Post("/createorder/quote", ordercontrollers.Quote(checkoutService, logg))
		r.With(checkoutWrites...).Post("/payment", ordercontrollers.CreatePayment(checkoutService, logg))
		r.With(checkoutWrites...).Post("/createorder", ordercontrollers.CreateOrder(checkoutService, logg))
		r.Post("/getorders", ordercontrollers.MyOrders(ordersSvc, logg))
		r.Post("/order/details", ordercontrollers.OrderDetails(ordersSvc, logg))
		r.Post("/order/status", ordercontrollers.UpdateStatus(ordersSvc, checkoutMetrics, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			r.Post("/orders", ordercontrollers.AdminListOrders(ordersSvc, logg))
			r.Post("/order/details", ordercontrollers.AdminOrderDetails(ordersSvc, logg))
			r.Post("/order/status", ordercontrollers.AdminUpdateStatus(ordersSvc, checkoutMetrics, logg))
		})
	})

	return r
}

// rateLimiter keeps a nil client from becoming a non-nil interface.
func rateLimiter(c *redis.Client) middleware.FixedWindowLimiter {
	if c == nil {
		return nil
	}
	return c
}
