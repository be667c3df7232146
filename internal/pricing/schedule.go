package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier applies Fee to subtotals at or above Threshold, up to the next tier.
type Tier struct {
	Threshold decimal.Decimal
	Fee       decimal.Decimal
}

// FeeSchedule is an ascending list of delivery fee tiers.
type FeeSchedule struct {
	Tiers []Tier
}

const scheduleTierCount = 3

// DefaultFeeSchedule charges 30 below 100, 15 below 500 and nothing above.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{Tiers: []Tier{
		{Threshold: decimal.Zero, Fee: decimal.NewFromInt(30)},
		{Threshold: decimal.NewFromInt(100), Fee: decimal.NewFromInt(15)},
		{Threshold: decimal.NewFromInt(500), Fee: decimal.Zero},
	}}
}

// ParseFeeSchedule builds a schedule from parallel threshold/fee strings as
// they come out of config.
func ParseFeeSchedule(thresholds, fees []string) (FeeSchedule, error) {
	if len(thresholds) != len(fees) {
		return FeeSchedule{}, fmt.Errorf("thresholds (%d) and fees (%d) differ in length", len(thresholds), len(fees))
	}
	tiers := make([]Tier, 0, len(thresholds))
	for i := range thresholds {
		threshold, err := decimal.NewFromString(thresholds[i])
		if err != nil {
			return FeeSchedule{}, fmt.Errorf("tier %d threshold: %w", i, err)
		}
		fee, err := decimal.NewFromString(fees[i])
		if err != nil {
			return FeeSchedule{}, fmt.Errorf("tier %d fee: %w", i, err)
		}
		tiers = append(tiers, Tier{Threshold: threshold, Fee: fee})
	}
	schedule := FeeSchedule{Tiers: tiers}
	if err := schedule.Validate(); err != nil {
		return FeeSchedule{}, err
	}
	return schedule, nil
}

// Validate enforces exactly three tiers starting at zero, strictly ascending
// thresholds and non-negative, non-increasing fees.
func (s FeeSchedule) Validate() error {
	if len(s.Tiers) != scheduleTierCount {
		return fmt.Errorf("fee schedule needs %d tiers, got %d", scheduleTierCount, len(s.Tiers))
	}
	if !s.Tiers[0].Threshold.IsZero() {
		return fmt.Errorf("first tier must start at 0, got %s", s.Tiers[0].Threshold)
	}
	for i, tier := range s.Tiers {
		if tier.Fee.IsNegative() {
			return fmt.Errorf("tier %d fee is negative", i)
		}
		if i == 0 {
			continue
		}
		prev := s.Tiers[i-1]
		if !tier.Threshold.GreaterThan(prev.Threshold) {
			return fmt.Errorf("tier %d threshold %s must exceed %s", i, tier.Threshold, prev.Threshold)
		}
		if tier.Fee.GreaterThan(prev.Fee) {
			return fmt.Errorf("tier %d fee %s exceeds previous fee %s", i, tier.Fee, prev.Fee)
		}
	}
	return nil
}

// FeeFor returns the fee of the highest tier whose threshold is <= subtotal.
func (s FeeSchedule) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	fee := decimal.Zero
	for _, tier := range s.Tiers {
		if subtotal.LessThan(tier.Threshold) {
			break
		}
		fee = tier.Fee
	}
	return fee
}
