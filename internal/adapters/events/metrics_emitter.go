package events

import (
	"github.com/kevin07696/subscription-service/internal/domain/ports"
	"github.com/kevin07696/subscription-service/pkg/observability"
)

// MetricsEmitter translates lifecycle events into Prometheus metrics
type MetricsEmitter struct{}

// NewMetricsEmitter creates a new metrics-backed event emitter
func NewMetricsEmitter() *MetricsEmitter {
	return &MetricsEmitter{}
}

// Emit records the event against the matching metric
func (e *MetricsEmitter) Emit(event string, payload map[string]interface{}) {
	switch event {
	case ports.EventStatusUpdated:
		observability.RecordStatusTransition(
			stringField(payload, "old_status"), stringField(payload, "new_status"))

	case ports.EventStatusUpdateFailed:
		observability.RecordStatusTransitionFailure(stringField(payload, "new_status"))

	case ports.EventPaymentComplete:
		observability.RecordPaymentSignal("complete", false)

	case ports.EventRenewalPaymentComplete:
		observability.RecordPaymentSignal("complete", true)

	case ports.EventPaymentFailed:
		observability.RecordPaymentSignal("failed", false)

	case ports.EventRenewalPaymentFailed:
		observability.RecordPaymentSignal("failed", true)

	case ports.EventRenewalDue:
		observability.RecordRenewalProcessed("success")

	case ports.EventDateUpdated:
		observability.RecordDateChange(stringField(payload, "date_type"), "updated")

	case ports.EventDateDeleted:
		observability.RecordDateChange(stringField(payload, "date_type"), "deleted")
	}
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return "unknown"
}
