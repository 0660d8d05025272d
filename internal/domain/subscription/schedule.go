package subscription

import (
	"strings"
	"time"
)

// Frequency is the billing cadence of a subscription.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBimonthly Frequency = "bimonthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// ParseFrequency normalizes a raw frequency string. The second return value
// reports whether the value is one of the known cadences; unknown values are
// kept as-is and NextOrderDate treats them as monthly.
func ParseFrequency(s string) (Frequency, bool) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyBimonthly, FrequencyQuarterly:
		return f, true
	}
	return f, false
}

// NextOrderDate computes the next billing date from the last order date:
// weekly +7d, biweekly +14d, monthly +1 month, bimonthly +2 months,
// quarterly +3 months. An unrecognized frequency falls back to +1 month;
// that fallback is deliberate, kept from the original billing rules rather
// than rejected as invalid input.
//
// Calendar-month offsets use time.AddDate normalization: when the anchor day
// does not exist in the target month the date rolls forward, so
// 2024-01-31 + monthly = 2024-03-02.
func NextOrderDate(lastOrderDate time.Time, frequency Frequency) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return lastOrderDate.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return lastOrderDate.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return lastOrderDate.AddDate(0, 1, 0)
	case FrequencyBimonthly:
		return lastOrderDate.AddDate(0, 2, 0)
	case FrequencyQuarterly:
		return lastOrderDate.AddDate(0, 3, 0)
	default:
		return lastOrderDate.AddDate(0, 1, 0)
	}
}
