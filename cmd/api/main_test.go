package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kruthishkandula/Grocery-be/internal/pricing"
	"github.com/kruthishkandula/Grocery-be/pkg/config"
)

func TestPricingEngineDefaultsWhenUnset(t *testing.T) {
	engine, err := pricingEngine(config.CheckoutConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quote, err := engine.ComputeQuote(uuid.New(), []pricing.LineItem{
		{ProductID: 1, UnitPrice: decimal.NewFromInt(40), Quantity: 1},
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if got := quote.TotalPrice.String(); got != "70.40" {
		t.Fatalf("expected 70.40, got %s", got)
	}
}

func TestPricingEngineFromConfig(t *testing.T) {
	engine, err := pricingEngine(config.CheckoutConfig{
		DeliveryFeeThresholds: []string{"0", "100", "500"},
		DeliveryFees:          []string{"20", "10", "0"},
		SurgeRate:             "0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quote, err := engine.ComputeQuote(uuid.New(), []pricing.LineItem{
		{ProductID: 1, UnitPrice: decimal.NewFromInt(40), Quantity: 1},
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if got := quote.TotalPrice.String(); got != "60.00" {
		t.Fatalf("expected 60.00, got %s", got)
	}

	if _, err := pricingEngine(config.CheckoutConfig{DeliveryFeeThresholds: []string{"0"}, SurgeRate: "0.01"}); err == nil {
		t.Fatal("expected mismatched tiers to be rejected")
	}
}
