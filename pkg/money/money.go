// Package money normalizes decimal amounts to the two-place scale used by the
// quote, payment and order tables.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const Scale = 2

// MaxAmount is the largest value a NUMERIC(10,2) column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

var (
	ErrTooPrecise = errors.New("amount has more than two fractional digits")
	ErrOutOfRange = errors.New("amount exceeds 99999999.99")
)

// Amount is a decimal that always renders with two fractional digits and
// accepts either a JSON number or a JSON string on input.
type Amount struct {
	decimal.Decimal
}

func New(d decimal.Decimal) Amount {
	return Amount{Decimal: Round(d)}
}

// Parse reads a decimal string such as "116", "116.0" or "116.00".
func Parse(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d, nil
}

// Round applies half-away-from-zero rounding at two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Format renders d with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// Check reports whether d can be stored as-is in a two-place column. Values
// such as "116" and "116.000" pass; "116.004" does not.
func Check(d decimal.Decimal) error {
	if !d.Equal(Round(d)) {
		return ErrTooPrecise
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return ErrOutOfRange
	}
	return nil
}

func (a Amount) String() string {
	return Format(a.Decimal)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(Format(a.Decimal))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("amount must not be null")
	}
	raw = strings.Trim(raw, `"`)
	d, err := Parse(raw)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}
