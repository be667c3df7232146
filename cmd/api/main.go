package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/kruthishkandula/Grocery-be/api/routes"
	"github.com/kruthishkandula/Grocery-be/internal/checkout"
	"github.com/kruthishkandula/Grocery-be/internal/orders"
	"github.com/kruthishkandula/Grocery-be/internal/payments"
	"github.com/kruthishkandula/Grocery-be/internal/pricing"
	"github.com/kruthishkandula/Grocery-be/internal/users"
	"github.com/kruthishkandula/Grocery-be/pkg/auth/session"
	"github.com/kruthishkandula/Grocery-be/pkg/config"
	"github.com/kruthishkandula/Grocery-be/pkg/db"
	"github.com/kruthishkandula/Grocery-be/pkg/ids"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/metrics"
	"github.com/kruthishkandula/Grocery-be/pkg/migrate"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox"
	"github.com/kruthishkandula/Grocery-be/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		redisClient  *redis.Client
		sessionCache session.CacheStore
	)
	if redis.Enabled(cfg.Redis) {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		sessionCache = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, idempotency and rate limiting are disabled")
	}

	userRepo := users.NewRepository(dbClient.DB())
	sessions, err := session.NewChecker(userRepo, sessionCache, cfg.JWT.SessionCacheTTL, logg)
	if err != nil {
		return err
	}

	engine, err := pricingEngine(cfg.Checkout)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	gen := ids.NewGenerator()

	paymentSvc, err := payments.NewService(payments.NewRepository(dbClient.DB()), dbClient, events, gen, cfg.Checkout.Currency)
	if err != nil {
		return err
	}
	ordersSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, events, userRepo)
	if err != nil {
		return err
	}
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Pricing:  engine,
		Payments: paymentSvc,
		Orders:   ordersSvc,
		IDs:      gen,
		Metrics:  checkoutMetrics,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, sessions, registry, checkoutSvc, ordersSvc, checkoutMetrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(runCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// pricingEngine falls back to the stock schedule when the checkout pricing
// settings are blanked out entirely.
func pricingEngine(cfg config.CheckoutConfig) (*pricing.Engine, error) {
	if len(cfg.DeliveryFeeThresholds) == 0 && len(cfg.DeliveryFees) == 0 && strings.TrimSpace(cfg.SurgeRate) == "" {
		return pricing.NewDefaultEngine(), nil
	}
	schedule, err := pricing.ParseFeeSchedule(cfg.DeliveryFeeThresholds, cfg.DeliveryFees)
	if err != nil {
		return nil, err
	}
	surge, err := decimal.NewFromString(cfg.SurgeRate)
	if err != nil {
		return nil, err
	}
	return pricing.NewEngine(schedule, surge)
}
