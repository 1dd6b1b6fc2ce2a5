package domain

// endedStatuses are the states after which no further recurring payment is
// collected. Pending cancellation is included: the prepaid term is still
// running but billing has stopped.
var endedStatuses = []Status{
	StatusCancelled,
	StatusTrash,
	StatusExpired,
	StatusSwitched,
	StatusPendingCancellation,
}

func statusHasEnded(status Status) bool {
	for _, ended := range endedStatuses {
		if status == ended {
			return true
		}
	}
	return false
}

// SupportsFunc answers whether the subscription's payment method supports a
// gateway lifecycle feature.
type SupportsFunc func(GatewayFeature) bool

// CanTransitionTo reports whether a subscription in the current status may be
// moved to the target status. Gateway-gated transitions consult the supports
// callback for the relevant capability.
func CanTransitionTo(current, target Status, supports SupportsFunc) bool {
	switch target {
	case StatusPending:
		return current == StatusAutoDraft || current == StatusDraft

	case StatusActive:
		if current == StatusOnHold {
			return supports(FeatureReactivation)
		}
		return current == StatusPending || current == StatusAutoDraft || current == StatusDraft

	case StatusOnHold:
		return supports(FeatureSuspension) && (current == StatusActive || current == StatusPending)

	case StatusCancelled:
		if current == StatusPendingCancellation {
			return true
		}
		return supports(FeatureCancellation) && !statusHasEnded(current)

	case StatusPendingCancellation:
		// Only active subscriptions can become pending cancellation, because
		// the status accounts for a remaining prepaid term.
		return supports(FeatureCancellation) && current == StatusActive

	case StatusExpired:
		return current != StatusCancelled && current != StatusTrash && current != StatusSwitched

	case StatusDeleted:
		return current == StatusTrash
	}

	return false
}
