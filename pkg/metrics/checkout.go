package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the checkout counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// CheckoutMetrics counts quote, payment and order attempts by outcome.
type CheckoutMetrics struct {
	quotes         *prometheus.CounterVec
	payments       *prometheus.CounterVec
	orders         *prometheus.CounterVec
	amountMismatch prometheus.Counter
	transitions    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_quotes_total",
		Help: "Quotes computed, by outcome.",
	}, []string{"outcome"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_payments_total",
		Help: "Payment records created, by outcome.",
	}, []string{"outcome"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Order placements, by outcome.",
	}, []string{"outcome"})
	mismatch := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_amount_mismatch_total",
		Help: "Order placements rejected because the payment amount differs from the quote.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status updates accepted, by resulting status.",
	}, []string{"status"})
	reg.MustRegister(quotes, payments, orders, mismatch, transitions)
	return &CheckoutMetrics{
		quotes:         quotes,
		payments:       payments,
		orders:         orders,
		amountMismatch: mismatch,
		transitions:    transitions,
	}
}

func (c *CheckoutMetrics) IncQuote(outcome string) {
	if c == nil || c.quotes == nil {
		return
	}
	c.quotes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (c *CheckoutMetrics) IncPayment(outcome string) {
	if c == nil || c.payments == nil {
		return
	}
	c.payments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (c *CheckoutMetrics) IncOrder(outcome string) {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (c *CheckoutMetrics) IncAmountMismatch() {
	if c == nil || c.amountMismatch == nil {
		return
	}
	c.amountMismatch.Inc()
}

func (c *CheckoutMetrics) IncTransition(status string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
