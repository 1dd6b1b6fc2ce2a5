package ports

// Lifecycle event names emitted by the subscription service
const (
	EventStatusUpdated          = "subscription.status_updated"
	EventStatusUpdateFailed     = "subscription.status_update_failed"
	EventDateUpdated            = "subscription.date_updated"
	EventDateDeleted            = "subscription.date_deleted"
	EventPaymentComplete        = "subscription.payment_complete"
	EventRenewalPaymentComplete = "subscription.renewal_payment_complete"
	EventPaymentFailed          = "subscription.payment_failed"
	EventRenewalPaymentFailed   = "subscription.renewal_payment_failed"
	EventRenewalDue             = "subscription.renewal_due"
)

// EventEmitter notifies observers (reporting, emails) of lifecycle events.
// Emission is fire-and-forget; the core never consults a return value.
type EventEmitter interface {
	Emit(event string, payload map[string]interface{})
}
