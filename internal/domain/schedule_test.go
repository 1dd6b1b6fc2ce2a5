package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestSchedule_GetSetClear tests basic date storage round trips
func TestSchedule_GetSetClear(t *testing.T) {
	var s Schedule
	value := date(2024, 3, 15)

	for _, dateType := range ScheduleDateTypes() {
		assert.False(t, s.Has(dateType))

		s.Set(dateType, value)
		assert.True(t, s.Has(dateType))
		assert.Equal(t, value, s.Get(dateType))

		s.Clear(dateType)
		assert.False(t, s.Has(dateType))
	}
}

// TestSchedule_WithUpdates tests merging proposed changes over current values
func TestSchedule_WithUpdates(t *testing.T) {
	base := Schedule{
		Start:       date(2024, 1, 1),
		TrialEnd:    date(2024, 1, 15),
		NextPayment: date(2024, 2, 1),
	}

	t.Run("empty update set is rejected", func(t *testing.T) {
		_, _, err := base.WithUpdates(map[DateType]time.Time{})
		require.Error(t, err)
		assert.Equal(t, ErrorCodeInvalidInput, GetErrorCode(err))
	})

	t.Run("unknown date type is rejected", func(t *testing.T) {
		_, _, err := base.WithUpdates(map[DateType]time.Time{
			DateType("renewal"): date(2024, 2, 1),
		})
		require.Error(t, err)
		assert.Equal(t, ErrorCodeInvalidInput, GetErrorCode(err))
	})

	t.Run("zero start date is rejected", func(t *testing.T) {
		_, _, err := base.WithUpdates(map[DateType]time.Time{
			DateStart: {},
		})
		assert.ErrorIs(t, err, ErrStartDateNotDeletable)
	})

	t.Run("zero last payment date keeps the existing value", func(t *testing.T) {
		withLast := base
		withLast.LastPayment = date(2024, 1, 20)

		merged, cleared, err := withLast.WithUpdates(map[DateType]time.Time{
			DateLastPayment: {},
			DateNextPayment: date(2024, 2, 20),
		})
		require.NoError(t, err)
		assert.Equal(t, date(2024, 1, 20), merged.LastPayment)
		assert.Empty(t, cleared)
	})

	t.Run("zero values clear non-protected dates", func(t *testing.T) {
		merged, cleared, err := base.WithUpdates(map[DateType]time.Time{
			DateTrialEnd:    {},
			DateNextPayment: {},
		})
		require.NoError(t, err)
		assert.False(t, merged.Has(DateTrialEnd))
		assert.False(t, merged.Has(DateNextPayment))
		assert.ElementsMatch(t, []DateType{DateTrialEnd, DateNextPayment}, cleared)
	})

	t.Run("values are normalized to UTC", func(t *testing.T) {
		est := time.FixedZone("EST", -5*3600)
		merged, _, err := base.WithUpdates(map[DateType]time.Time{
			DateEnd: time.Date(2024, 6, 1, 10, 0, 0, 0, est),
		})
		require.NoError(t, err)
		assert.Equal(t, time.UTC, merged.End.Location())
		assert.Equal(t, time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC), merged.End)
	})

	t.Run("receiver is left untouched", func(t *testing.T) {
		_, _, err := base.WithUpdates(map[DateType]time.Time{
			DateNextPayment: date(2024, 3, 1),
		})
		require.NoError(t, err)
		assert.Equal(t, date(2024, 2, 1), base.NextPayment)
	})
}

// TestSchedule_Validate tests cross-field ordering rules
func TestSchedule_Validate(t *testing.T) {
	tests := []struct {
		name       string
		schedule   Schedule
		violations int
	}{
		{
			name:     "empty schedule is valid",
			schedule: Schedule{},
		},
		{
			name: "fully ordered schedule is valid",
			schedule: Schedule{
				Start:       date(2024, 1, 1),
				TrialEnd:    date(2024, 1, 15),
				NextPayment: date(2024, 2, 1),
				LastPayment: date(2024, 1, 1),
				End:         date(2024, 12, 31),
			},
		},
		{
			name: "trial end equal to next payment is allowed",
			schedule: Schedule{
				Start:       date(2024, 1, 1),
				TrialEnd:    date(2024, 2, 1),
				NextPayment: date(2024, 2, 1),
			},
		},
		{
			name: "end equal to trial end is allowed",
			schedule: Schedule{
				Start:    date(2024, 1, 1),
				TrialEnd: date(2024, 2, 1),
				End:      date(2024, 2, 1),
			},
		},
		{
			name: "trial end before start",
			schedule: Schedule{
				Start:    date(2024, 2, 1),
				TrialEnd: date(2024, 1, 1),
			},
			violations: 1,
		},
		{
			name: "end equal to start is rejected",
			schedule: Schedule{
				Start: date(2024, 1, 1),
				End:   date(2024, 1, 1),
			},
			violations: 1,
		},
		{
			name: "next payment equal to start is rejected",
			schedule: Schedule{
				Start:       date(2024, 1, 1),
				NextPayment: date(2024, 1, 1),
			},
			violations: 1,
		},
		{
			name: "end before everything reports every broken relationship",
			schedule: Schedule{
				Start:       date(2024, 3, 1),
				TrialEnd:    date(2024, 3, 15),
				NextPayment: date(2024, 4, 1),
				LastPayment: date(2024, 3, 1),
				End:         date(2024, 2, 1),
			},
			// end violates last_payment, next_payment, trial_end and start
			violations: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			if tt.violations == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, ErrorCodeDateOrderingViolation, GetErrorCode(err))
			assert.Len(t, DateOrderingViolations(err), tt.violations)
		})
	}
}

// TestProtectedDate tests which dates can never be deleted
func TestProtectedDate(t *testing.T) {
	assert.True(t, ProtectedDate(DateStart))
	assert.True(t, ProtectedDate(DateLastPayment))
	assert.False(t, ProtectedDate(DateTrialEnd))
	assert.False(t, ProtectedDate(DateNextPayment))
	assert.False(t, ProtectedDate(DateEnd))
}

// TestValidDateType tests date type recognition
func TestValidDateType(t *testing.T) {
	for _, dateType := range ScheduleDateTypes() {
		assert.True(t, ValidDateType(dateType))
	}
	assert.False(t, ValidDateType(DateType("renewal")))
	assert.False(t, ValidDateType(DateType("")))
}
