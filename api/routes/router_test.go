package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kruthishkandula/Grocery-be/internal/checkout"
	"github.com/kruthishkandula/Grocery-be/internal/orders"
	"github.com/kruthishkandula/Grocery-be/internal/payments"
	"github.com/kruthishkandula/Grocery-be/internal/pricing"
	"github.com/kruthishkandula/Grocery-be/internal/users"
	"github.com/kruthishkandula/Grocery-be/pkg/auth/authtest"
	"github.com/kruthishkandula/Grocery-be/pkg/config"
	"github.com/kruthishkandula/Grocery-be/pkg/db/dbtest"
	"github.com/kruthishkandula/Grocery-be/pkg/enums"
	"github.com/kruthishkandula/Grocery-be/pkg/ids"
	"github.com/kruthishkandula/Grocery-be/pkg/logger"
	"github.com/kruthishkandula/Grocery-be/pkg/metrics"
	"github.com/kruthishkandula/Grocery-be/pkg/outbox"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, token string) (bool, error) {
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "grocery-be", ExpirationMinutes: 60},
		Checkout: config.CheckoutConfig{
			RateLimitWindow:  time.Minute,
			RateLimitPerUser: 30,
			IdempotencyTTL:   time.Hour,
		},
	}
}

func newTestRouter(t *testing.T, dbPinger stubPinger) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	client, conn := dbtest.Client(t)
	events := outbox.NewService(outbox.NewRepository(conn), nil)
	gen := ids.NewGenerator()
	logg := logger.Nop()

	paymentSvc, err := payments.NewService(payments.NewRepository(conn), client, events, gen, "INR")
	require.NoError(t, err)
	orderSvc, err := orders.NewService(orders.NewRepository(conn), client, events, users.NewRepository(conn))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	rec := metrics.NewCheckoutMetrics(reg)
	flow, err := checkout.NewService(checkout.ServiceParams{
		Pricing:  pricing.NewDefaultEngine(),
		Payments: paymentSvc,
		Orders:   orderSvc,
		IDs:      gen,
		Metrics:  rec,
		Logger:   logg,
	})
	require.NoError(t, err)

	return NewRouter(cfg, logg, dbPinger, nil, stubSessionChecker{}, reg, flow, orderSvc, rec), cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	return "Bearer " + authtest.Token(t, cfg.JWT, uuid.New(), role)
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from live got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from ready got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestReadyReportsFailingDatabase(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	require.Contains(t, resp.Body.String(), "postgres")
}

func TestOrdersRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	req := httptest.NewRequest(http.MethodPost, "/orders/getorders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestQuoteThroughRouterAndMetrics(t *testing.T) {
	router, cfg := newTestRouter(t, stubPinger{})

	req := httptest.NewRequest(http.MethodPost, "/orders/createorder/quote",
		strings.NewReader(`{"items":[{"product_id":1,"unit_price":"40","quantity":1}]}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.UserRoleUser))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Contains(t, resp.Body.String(), "ORDER_QUOTE_DETAILS_FETCHED")

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "checkout_quotes_total")
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router, cfg := newTestRouter(t, stubPinger{})

	req := httptest.NewRequest(http.MethodPost, "/orders/admin/orders", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/orders/admin/orders", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	req := httptest.NewRequest(http.MethodOptions, "/orders/payment", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin got %q", got)
	}
}
