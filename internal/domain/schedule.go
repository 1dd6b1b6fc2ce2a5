package domain

import (
	"fmt"
	"time"
)

// DateType identifies one of the five interdependent lifecycle dates
type DateType string

const (
	DateStart       DateType = "start"
	DateTrialEnd    DateType = "trial_end"
	DateNextPayment DateType = "next_payment"
	DateLastPayment DateType = "last_payment"
	DateEnd         DateType = "end"
)

// scheduleDateTypes lists every date type in validation order
var scheduleDateTypes = []DateType{DateStart, DateTrialEnd, DateNextPayment, DateLastPayment, DateEnd}

// ScheduleDateTypes returns all recognized date types
func ScheduleDateTypes() []DateType {
	types := make([]DateType, len(scheduleDateTypes))
	copy(types, scheduleDateTypes)
	return types
}

// ValidDateType reports whether the given type is a recognized schedule date
func ValidDateType(dateType DateType) bool {
	for _, t := range scheduleDateTypes {
		if t == dateType {
			return true
		}
	}
	return false
}

// ProtectedDate reports whether the given date type can never be deleted, only
// updated. Deleting the last payment date would break scheduling, and a
// subscription always has a start date.
func ProtectedDate(dateType DateType) bool {
	return dateType == DateStart || dateType == DateLastPayment
}

// Schedule holds the five lifecycle dates of a subscription. All values are in
// UTC; a zero time means the date is not set.
type Schedule struct {
	Start       time.Time
	TrialEnd    time.Time
	NextPayment time.Time
	LastPayment time.Time
	End         time.Time
}

// Get returns the stored value for the given date type, or the zero time when
// the date is not set or the type is unrecognized.
func (s Schedule) Get(dateType DateType) time.Time {
	switch dateType {
	case DateStart:
		return s.Start
	case DateTrialEnd:
		return s.TrialEnd
	case DateNextPayment:
		return s.NextPayment
	case DateLastPayment:
		return s.LastPayment
	case DateEnd:
		return s.End
	}
	return time.Time{}
}

// Has returns true if the given date is set
func (s Schedule) Has(dateType DateType) bool {
	return !s.Get(dateType).IsZero()
}

// Set stores a value for the given date type
func (s *Schedule) Set(dateType DateType, value time.Time) {
	switch dateType {
	case DateStart:
		s.Start = value
	case DateTrialEnd:
		s.TrialEnd = value
	case DateNextPayment:
		s.NextPayment = value
	case DateLastPayment:
		s.LastPayment = value
	case DateEnd:
		s.End = value
	}
}

// Clear removes the given date from the schedule
func (s *Schedule) Clear(dateType DateType) {
	s.Set(dateType, time.Time{})
}

// WithUpdates builds the complete schedule that would result from applying the
// proposed changes on top of the current values. Proposed zero values clear the
// date for non-protected types; the cleared types are returned alongside the
// merged schedule. The merged schedule is not validated here, so callers can
// collect every ordering violation at once via Validate.
func (s Schedule) WithUpdates(updates map[DateType]time.Time) (Schedule, []DateType, error) {
	if len(updates) == 0 {
		return Schedule{}, nil, NewDomainError(ErrorCodeInvalidInput, "no dates given to update")
	}

	for dateType := range updates {
		if !ValidDateType(dateType) {
			return Schedule{}, nil, NewDomainError(ErrorCodeInvalidInput,
				fmt.Sprintf("%q is not a recognized subscription date type", dateType))
		}
	}

	merged := s
	var cleared []DateType

	for _, dateType := range scheduleDateTypes {
		value, proposed := updates[dateType]
		if !proposed {
			continue
		}

		if value.IsZero() {
			switch dateType {
			case DateStart:
				return Schedule{}, nil, ErrStartDateNotDeletable
			case DateLastPayment:
				// Silently keep the existing value; the last payment date is
				// derived from orders and never cleared through the schedule.
				continue
			}
			merged.Clear(dateType)
			cleared = append(cleared, dateType)
			continue
		}

		merged.Set(dateType, value.UTC())
	}

	return merged, cleared, nil
}

// Validate checks every cross-field ordering rule against the complete date
// set and returns a single error carrying all violated relationships. The
// rules are inter-field (the end date depends on next_payment, which depends
// on trial_end), so a field-by-field check would reject valid reorderings
// submitted together.
func (s Schedule) Validate() error {
	var violations []string

	mustFollow := func(dateType, other DateType, strict bool) {
		value, reference := s.Get(dateType), s.Get(other)
		if value.IsZero() || reference.IsZero() {
			return
		}
		if value.Before(reference) || (strict && value.Equal(reference)) {
			violations = append(violations, fmt.Sprintf("the %s date must occur after the %s date", dateType, other))
		}
	}

	mustFollow(DateEnd, DateLastPayment, true)
	mustFollow(DateEnd, DateNextPayment, true)
	mustFollow(DateEnd, DateTrialEnd, false)
	mustFollow(DateEnd, DateStart, true)

	mustFollow(DateNextPayment, DateTrialEnd, false)
	mustFollow(DateNextPayment, DateStart, true)

	mustFollow(DateTrialEnd, DateStart, true)

	if len(violations) > 0 {
		return NewDateOrderingError(violations)
	}
	return nil
}
