package ports

import "context"

// CustomerAccountService updates the customer's account standing as their
// subscriptions move through the lifecycle.
type CustomerAccountService interface {
	MarkActive(ctx context.Context, customerID string) error

	// MarkInactiveIfNoActiveSubscriptions deactivates the customer account
	// unless the customer still holds another active subscription.
	MarkInactiveIfNoActiveSubscriptions(ctx context.Context, customerID string) error
}
