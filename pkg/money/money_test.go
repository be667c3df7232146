package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	for _, raw := range []string{"116", "116.0", "116.00", "116.000", "0", "99999999.99", "-12.50"} {
		assert.NoError(t, Check(decimal.RequireFromString(raw)), raw)
	}

	assert.ErrorIs(t, Check(decimal.RequireFromString("116.004")), ErrTooPrecise)
	assert.ErrorIs(t, Check(decimal.RequireFromString("115.995")), ErrTooPrecise)
	assert.ErrorIs(t, Check(decimal.RequireFromString("100000000")), ErrOutOfRange)
	assert.ErrorIs(t, Check(decimal.RequireFromString("-100000000.00")), ErrOutOfRange)
}

func TestExactComparison(t *testing.T) {
	quoted := decimal.RequireFromString("116.00")
	assert.True(t, quoted.Equal(decimal.RequireFromString("116")))
	assert.False(t, quoted.Equal(decimal.RequireFromString("116.004")))
	assert.False(t, quoted.Equal(decimal.RequireFromString("115.995")))
}

func TestFormatAndRound(t *testing.T) {
	assert.Equal(t, "1.00", Format(decimal.NewFromInt(1)))
	assert.Equal(t, "0.01", Format(Round(decimal.RequireFromString("0.005"))))
	assert.Equal(t, "6.00", Format(Round(decimal.RequireFromString("5.999"))))
}

func TestAmountJSON(t *testing.T) {
	var payload struct {
		Total Amount `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total_price":116}`), &payload))
	assert.Equal(t, "116.00", payload.Total.String())

	require.NoError(t, json.Unmarshal([]byte(`{"total_price":"70.4"}`), &payload))
	assert.Equal(t, "70.40", payload.Total.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_price":"70.40"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"total_price":null}`), &payload))
	assert.Error(t, json.Unmarshal([]byte(`{"total_price":"x"}`), &payload))
}
