package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestAddBillingInterval tests advancing a timestamp by one billing interval
func TestAddBillingInterval(t *testing.T) {
	base := date(2024, 1, 31)

	tests := []struct {
		name     string
		interval int
		period   BillingPeriod
		expected time.Time
	}{
		{"one day", 1, PeriodDay, date(2024, 2, 1)},
		{"ten days", 10, PeriodDay, date(2024, 2, 10)},
		{"one week", 1, PeriodWeek, date(2024, 2, 7)},
		{"two weeks", 2, PeriodWeek, date(2024, 2, 14)},
		{"one month from jan 31 normalizes", 1, PeriodMonth, date(2024, 3, 2)},
		{"one year", 1, PeriodYear, date(2025, 1, 31)},
		{"unknown period falls back to months", 1, BillingPeriod("fortnight"), date(2024, 3, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddBillingInterval(base, tt.interval, tt.period))
		})
	}
}

// TestNextPaymentDate tests next payment calculation from the schedule anchors
func TestNextPaymentDate(t *testing.T) {
	now := date(2024, 1, 15)

	t.Run("monthly from last payment", func(t *testing.T) {
		schedule := Schedule{
			Start:       date(2023, 12, 1),
			LastPayment: date(2024, 1, 1),
		}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		assert.Equal(t, date(2024, 2, 1), next)
	})

	t.Run("running trial pins the next payment to trial end", func(t *testing.T) {
		schedule := Schedule{
			Start:    date(2024, 1, 1),
			TrialEnd: date(2024, 1, 20),
		}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		assert.Equal(t, date(2024, 1, 20), next)
	})

	t.Run("expired trial anchors the calculation", func(t *testing.T) {
		schedule := Schedule{
			Start:    date(2023, 12, 1),
			TrialEnd: date(2024, 1, 10),
		}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		assert.Equal(t, date(2024, 2, 10), next)
	})

	t.Run("start is the anchor of last resort", func(t *testing.T) {
		schedule := Schedule{Start: date(2024, 1, 1)}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		assert.Equal(t, date(2024, 2, 1), next)
	})

	t.Run("dormant subscription advances cycle by cycle into the future", func(t *testing.T) {
		schedule := Schedule{
			Start:       date(2023, 1, 1),
			LastPayment: date(2023, 10, 1),
		}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		assert.Equal(t, date(2024, 2, 1), next)
	})

	t.Run("advance is bounded for long-dormant subscriptions", func(t *testing.T) {
		schedule := Schedule{
			Start:       date(2010, 1, 1),
			LastPayment: date(2010, 6, 1),
		}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		// 30 monthly advances from the anchor, still in the past
		assert.Equal(t, date(2012, 12, 1), next)
		assert.True(t, next.Before(now))
	})

	t.Run("no payment at or past the end date", func(t *testing.T) {
		schedule := Schedule{
			Start:       date(2023, 12, 1),
			LastPayment: date(2024, 1, 1),
			End:         date(2024, 2, 1),
		}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		assert.True(t, next.IsZero())
	})

	t.Run("no payment inside the grace window before the end date", func(t *testing.T) {
		schedule := Schedule{
			Start:       date(2023, 12, 1),
			LastPayment: date(2024, 1, 1),
			End:         date(2024, 2, 1).Add(60 * time.Second),
		}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		assert.True(t, next.IsZero())
	})

	t.Run("payment just outside the grace window survives", func(t *testing.T) {
		schedule := Schedule{
			Start:       date(2023, 12, 1),
			LastPayment: date(2024, 1, 1),
			End:         date(2024, 2, 1).Add(121 * time.Second),
		}
		next := NextPaymentDate(schedule, 1, PeriodMonth, now)
		assert.Equal(t, date(2024, 2, 1), next)
	})
}

// TestTrialEndDate tests trial end derivation from completed payment counts
func TestTrialEndDate(t *testing.T) {
	now := date(2024, 1, 15)
	schedule := Schedule{Start: date(2024, 1, 1)}

	t.Run("no payments yet defaults to the first billing cycle", func(t *testing.T) {
		trialEnd := TrialEndDate(schedule, 1, PeriodMonth, 0, now)
		assert.Equal(t, date(2024, 2, 1), trialEnd)
	})

	t.Run("one payment keeps the trial", func(t *testing.T) {
		trialEnd := TrialEndDate(schedule, 1, PeriodMonth, 1, now)
		assert.False(t, trialEnd.IsZero())
	})

	t.Run("two payments consume the trial", func(t *testing.T) {
		trialEnd := TrialEndDate(schedule, 1, PeriodMonth, 2, now)
		assert.True(t, trialEnd.IsZero())
	})
}

// TestEndOfPrepaidTerm tests how far the already-paid period extends
func TestEndOfPrepaidTerm(t *testing.T) {
	now := date(2024, 1, 15)

	tests := []struct {
		name     string
		schedule Schedule
		expected time.Time
	}{
		{
			name:     "future next payment bounds the prepaid term",
			schedule: Schedule{NextPayment: date(2024, 2, 1), End: date(2024, 6, 1)},
			expected: date(2024, 2, 1),
		},
		{
			name:     "next payment exactly now still counts",
			schedule: Schedule{NextPayment: now},
			expected: now,
		},
		{
			name:     "no next payment and no end date means no remaining term",
			schedule: Schedule{},
			expected: now,
		},
		{
			name:     "past end date means no remaining term",
			schedule: Schedule{End: date(2024, 1, 1)},
			expected: now,
		},
		{
			name:     "future end date stands when no payment is scheduled",
			schedule: Schedule{NextPayment: date(2024, 1, 1), End: date(2024, 3, 1)},
			expected: date(2024, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EndOfPrepaidTerm(tt.schedule, now))
		})
	}
}
