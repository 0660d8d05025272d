package subscription

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOrderDate(t *testing.T) {
	anchor := date(2024, time.March, 15)

	cases := []struct {
		frequency Frequency
		want      time.Time
	}{
		{FrequencyWeekly, date(2024, time.March, 22)},
		{FrequencyBiweekly, date(2024, time.March, 29)},
		{FrequencyMonthly, date(2024, time.April, 15)},
		{FrequencyBimonthly, date(2024, time.May, 15)},
		{FrequencyQuarterly, date(2024, time.June, 15)},
		{Frequency("fortnightly-ish"), date(2024, time.April, 15)}, // documented +1 month fallback
	}
	for _, c := range cases {
		if got := NextOrderDate(anchor, c.frequency); !got.Equal(c.want) {
			t.Fatalf("%s: want=%s got=%s", c.frequency, c.want, got)
		}
	}
}

func TestNextOrderDateMonthRollover(t *testing.T) {
	// AddDate normalization: Jan 31 + 1 month lands on Mar 2 in a leap year.
	got := NextOrderDate(date(2024, time.January, 31), FrequencyMonthly)
	if want := date(2024, time.March, 2); !got.Equal(want) {
		t.Fatalf("monthly rollover: want=%s got=%s", want, got)
	}
}

func TestParseFrequency(t *testing.T) {
	if f, ok := ParseFrequency(" Monthly "); !ok || f != FrequencyMonthly {
		t.Fatalf("ParseFrequency monthly: got=%q ok=%v", f, ok)
	}
	if f, ok := ParseFrequency("hourly"); ok || f != Frequency("hourly") {
		t.Fatalf("unknown frequency should be kept raw: got=%q ok=%v", f, ok)
	}
}
