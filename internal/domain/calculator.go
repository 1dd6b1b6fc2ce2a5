package domain

import "time"

const (
	// maxCycleAdvances bounds how many billing cycles the next payment date can
	// be advanced past "now" in one calculation. Keeps the calculation from
	// spinning on pathological data while still tolerating long-dormant
	// subscriptions.
	maxCycleAdvances = 30

	// endGracePeriod is the window before the end date within which no further
	// payment is scheduled, so a renewal never lands essentially at or after
	// expiry. Inherited value; the exact duration is not load-bearing.
	endGracePeriod = 120 * time.Second
)

// AddBillingInterval advances a timestamp by one billing interval
func AddBillingInterval(t time.Time, interval int, period BillingPeriod) time.Time {
	switch period {
	case PeriodDay:
		return t.AddDate(0, 0, interval)
	case PeriodWeek:
		return t.AddDate(0, 0, interval*7)
	case PeriodMonth:
		return t.AddDate(0, interval, 0)
	case PeriodYear:
		return t.AddDate(interval, 0, 0)
	default:
		return t.AddDate(0, interval, 0)
	}
}

// NextPaymentDate calculates when the next recurring payment is due, in UTC.
// Returns the zero time when no further payment is due before the end date.
//
// While a free trial is still running, the next payment is due when the trial
// ends. Otherwise the date is one billing interval past the most recent
// meaningful anchor: the last payment if it came after the trial end, else the
// trial end if it came after the start, else the start. The result is advanced
// cycle by cycle until it lands in the future, bounded by maxCycleAdvances.
func NextPaymentDate(schedule Schedule, interval int, period BillingPeriod, now time.Time) time.Time {
	var next time.Time

	if schedule.TrialEnd.After(now) {
		next = schedule.TrialEnd
	} else {
		anchor := schedule.Start
		if schedule.LastPayment.After(schedule.TrialEnd) {
			anchor = schedule.LastPayment
		} else if schedule.TrialEnd.After(schedule.Start) {
			anchor = schedule.TrialEnd
		}

		next = AddBillingInterval(anchor, interval, period)
		for i := 1; next.Before(now) && i < maxCycleAdvances; i++ {
			next = AddBillingInterval(next, interval, period)
		}
	}

	// No payment is due when the candidate lands within the grace window of
	// the end date or beyond it.
	if !schedule.End.IsZero() && next.Add(endGracePeriod).After(schedule.End) {
		return time.Time{}
	}

	return next.UTC()
}

// TrialEndDate calculates the trial end date. Once two or more payments have
// completed the trial has been consumed and the zero time is returned; until
// then the trial defaults to the first billing cycle.
func TrialEndDate(schedule Schedule, interval int, period BillingPeriod, completedPayments int, now time.Time) time.Time {
	if completedPayments >= 2 {
		return time.Time{}
	}
	return NextPaymentDate(schedule, interval, period, now)
}

// EndOfPrepaidTerm calculates when the period the customer has already paid
// for runs out. A future next payment means the customer has paid through that
// date; with no next payment and no unexpired end date there is no prepaid
// term and the result is now; otherwise the existing end date stands.
func EndOfPrepaidTerm(schedule Schedule, now time.Time) time.Time {
	if !schedule.NextPayment.IsZero() && !schedule.NextPayment.Before(now) {
		return schedule.NextPayment
	}
	if schedule.End.IsZero() || !schedule.End.After(now) {
		return now
	}
	return schedule.End
}
