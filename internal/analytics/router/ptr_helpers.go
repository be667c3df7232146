package router

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kruthishkandula/Grocery-be/pkg/money"
)

// stringPtr returns a trimmed pointer or nil when the input is empty.
func stringPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func uuidPtr(value uuid.UUID) *string {
	if value == uuid.Nil {
		return nil
	}
	return stringPtr(value.String())
}

func int64Ptr(value int64) *int64 {
	return &value
}

// minorUnits converts a decimal amount string into minor currency units.
// Unparseable amounts yield nil so the row still lands.
func minorUnits(amount string) *int64 {
	if strings.TrimSpace(amount) == "" {
		return nil
	}
	d, err := money.Parse(amount)
	if err != nil {
		return nil
	}
	return int64Ptr(money.Round(d).Shift(2).IntPart())
}
