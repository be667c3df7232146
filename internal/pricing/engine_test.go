package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kruthishkandula/Grocery-be/pkg/errors"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestComputeQuoteScenarios(t *testing.T) {
	engine := NewDefaultEngine()
	user := uuid.New()

	tests := []struct {
		name     string
		items    []LineItem
		subtotal string
		delivery string
		surge    string
		total    string
	}{
		{
			name:     "lower boundary of middle tier",
			items:    []LineItem{{ProductID: 1, UnitPrice: dec("50"), Quantity: 2}},
			subtotal: "100.00", delivery: "15.00", surge: "1.00", total: "116.00",
		},
		{
			name:     "small cart",
			items:    []LineItem{{ProductID: 1, UnitPrice: dec("10"), Quantity: 3}, {ProductID: 2, UnitPrice: dec("10"), Quantity: 1}},
			subtotal: "40.00", delivery: "30.00", surge: "0.40", total: "70.40",
		},
		{
			name:     "free delivery",
			items:    []LineItem{{ProductID: 9, UnitPrice: dec("200"), Quantity: 3}},
			subtotal: "600.00", delivery: "0.00", surge: "6.00", total: "606.00",
		},
		{
			name:     "just below free delivery",
			items:    []LineItem{{ProductID: 9, UnitPrice: dec("499.99"), Quantity: 1}},
			subtotal: "499.99", delivery: "15.00", surge: "5.00", total: "519.99",
		},
		{
			name:     "zero priced items",
			items:    []LineItem{{ProductID: 3, UnitPrice: dec("0"), Quantity: 4}},
			subtotal: "0.00", delivery: "30.00", surge: "0.00", total: "30.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := engine.ComputeQuote(user, tt.items)
			require.NoError(t, err)
			assert.Equal(t, tt.subtotal, quote.Subtotal.String())
			assert.Equal(t, tt.delivery, quote.DeliveryFee.String())
			assert.Equal(t, tt.surge, quote.SurgeFee.String())
			assert.Equal(t, tt.total, quote.TotalPrice.String())
			assert.Equal(t, "0.00", quote.SGST.String())
			assert.Equal(t, "0.00", quote.CGST.String())
			assert.Equal(t, "0.00", quote.CouponDiscount.String())
			assert.Len(t, quote.Items, len(tt.items))
		})
	}
}

func TestComputeQuoteLineTotals(t *testing.T) {
	variant := int64(7)
	quote, err := NewDefaultEngine().ComputeQuote(uuid.New(), []LineItem{
		{ProductID: 1, ProductVariantID: &variant, UnitPrice: dec("12.345"), Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, quote.Items, 1)
	assert.Equal(t, "37.04", quote.Items[0].TotalPrice.String())
	assert.Equal(t, &variant, quote.Items[0].ProductVariantID)
}

func TestComputeQuoteIsDeterministic(t *testing.T) {
	engine := NewDefaultEngine()
	user := uuid.New()
	items := []LineItem{
		{ProductID: 1, UnitPrice: dec("19.99"), Quantity: 3},
		{ProductID: 2, UnitPrice: dec("5.25"), Quantity: 7},
	}

	first, err := engine.ComputeQuote(user, items)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := engine.ComputeQuote(user, items)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeQuoteTotalReconciles(t *testing.T) {
	engine := NewDefaultEngine()
	tolerance := dec("0.01")
	for cents := int64(1); cents < 80000; cents += 137 {
		price := decimal.New(cents, -2)
		quote, err := engine.ComputeQuote(uuid.New(), []LineItem{{ProductID: 1, UnitPrice: price, Quantity: 1}})
		require.NoError(t, err)

		sum := quote.Subtotal.Add(quote.DeliveryFee.Decimal).
			Add(quote.SurgeFee.Decimal).
			Add(quote.SGST.Decimal).
			Add(quote.CGST.Decimal).
			Sub(quote.CouponDiscount.Decimal)
		diff := sum.Sub(quote.TotalPrice.Decimal).Abs()
		require.Truef(t, diff.LessThanOrEqual(tolerance), "subtotal %s: total %s vs components %s", price, quote.TotalPrice, sum)
	}
}

func TestDeliveryFeeMonotonic(t *testing.T) {
	schedule := DefaultFeeSchedule()
	prev := schedule.FeeFor(decimal.Zero)
	for cents := int64(0); cents <= 100000; cents += 50 {
		fee := schedule.FeeFor(decimal.New(cents, -2))
		require.Truef(t, fee.LessThanOrEqual(prev), "fee rose at %d cents", cents)
		prev = fee
	}
}

func TestComputeQuoteValidation(t *testing.T) {
	engine := NewDefaultEngine()

	_, err := engine.ComputeQuote(uuid.New(), nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, MessageItemsRequired, typed.MessageCode())

	_, err = engine.ComputeQuote(uuid.Nil, []LineItem{{ProductID: 1, UnitPrice: dec("1"), Quantity: 1}})
	assert.Equal(t, MessageUserIDRequired, pkgerrors.As(err).MessageCode())

	bad := []LineItem{
		{ProductID: 0, UnitPrice: dec("1"), Quantity: 1},
		{ProductID: 1, UnitPrice: dec("-1"), Quantity: 1},
		{ProductID: 1, UnitPrice: dec("1"), Quantity: 0},
	}
	for _, item := range bad {
		_, err := engine.ComputeQuote(uuid.New(), []LineItem{item})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
}

func TestFeeScheduleValidation(t *testing.T) {
	_, err := ParseFeeSchedule([]string{"0", "100", "500"}, []string{"30", "15", "0"})
	require.NoError(t, err)

	cases := map[string][2][]string{
		"two tiers":        {{"0", "100"}, {"30", "15"}},
		"not from zero":    {{"10", "100", "500"}, {"30", "15", "0"}},
		"unsorted":         {{"0", "500", "100"}, {"30", "15", "0"}},
		"increasing fee":   {{"0", "100", "500"}, {"15", "30", "0"}},
		"negative fee":     {{"0", "100", "500"}, {"30", "15", "-1"}},
		"malformed number": {{"0", "abc", "500"}, {"30", "15", "0"}},
	}
	for name, tc := range cases {
		_, err := ParseFeeSchedule(tc[0], tc[1])
		assert.Errorf(t, err, name)
	}

	_, err = NewEngine(FeeSchedule{}, DefaultSurgeRate)
	assert.Error(t, err)
	_, err = NewEngine(DefaultFeeSchedule(), dec("-0.5"))
	assert.Error(t, err)
}
