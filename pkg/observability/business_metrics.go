package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Status transition metrics
	statusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_status_transitions_total",
		Help: "Total number of subscription status transitions",
	}, []string{
		"from", // prior status
		"to",   // new status
	})

	statusTransitionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_status_transition_failures_total",
		Help: "Total number of rejected or failed status transitions",
	}, []string{
		"target", // status that could not be reached
	})

	// Payment signal metrics
	paymentSignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_payment_signals_total",
		Help: "Total payment outcome signals received from the order subsystem",
	}, []string{
		"result",  // complete, failed
		"renewal", // "true" when the signal covers a renewal order
	})

	// Renewal batch metrics
	renewalsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_renewals_processed_total",
		Help: "Total renewal orders generated by the due-renewal sweep",
	}, []string{
		"result", // success, failed
	})

	renewalBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "subscription_renewal_batch_duration_seconds",
		Help:    "Time to run one due-renewal sweep",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{
		"trigger", // cron, manual
	})

	// Schedule change metrics
	dateChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_date_changes_total",
		Help: "Total schedule date updates and deletions",
	}, []string{
		"date_type", // start, trial_end, next_payment, last_payment, end
		"action",    // updated, deleted
	})
)

// RecordStatusTransition records a completed status transition
func RecordStatusTransition(from, to string) {
	statusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordStatusTransitionFailure records a transition that was rejected or
// rolled back
func RecordStatusTransitionFailure(target string) {
	statusTransitionFailures.WithLabelValues(target).Inc()
}

// RecordPaymentSignal records a payment outcome signal
func RecordPaymentSignal(result string, renewal bool) {
	label := "false"
	if renewal {
		label = "true"
	}
	paymentSignalsTotal.WithLabelValues(result, label).Inc()
}

// RecordRenewalProcessed records the outcome of one renewal in a sweep
func RecordRenewalProcessed(result string) {
	renewalsProcessedTotal.WithLabelValues(result).Inc()
}

// RecordRenewalBatch records the duration of a due-renewal sweep
func RecordRenewalBatch(trigger string, seconds float64) {
	renewalBatchDuration.WithLabelValues(trigger).Observe(seconds)
}

// RecordDateChange records a schedule date update or deletion
func RecordDateChange(dateType, action string) {
	dateChangesTotal.WithLabelValues(dateType, action).Inc()
}
