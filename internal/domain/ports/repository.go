package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/subscription-service/internal/domain"
	"github.com/shopspring/decimal"
)

// SubscriptionRepository persists subscription records
type SubscriptionRepository interface {
	Create(ctx context.Context, tx DBTX, sub *domain.Subscription) error
	GetByID(ctx context.Context, tx DBTX, id uuid.UUID) (*domain.Subscription, error)

	// Update persists every mutable field of the subscription
	Update(ctx context.Context, tx DBTX, sub *domain.Subscription) error

	// UpdateStatus persists only the status column. Used for the compensating
	// write that restores the prior status after a failed transition.
	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status domain.Status) error

	// ListDueForPayment returns active subscriptions whose next payment date is
	// at or before asOf
	ListDueForPayment(ctx context.Context, tx DBTX, asOf time.Time, limit int32) ([]*domain.Subscription, error)

	// HasOtherActiveSubscriptions reports whether the customer holds any active
	// subscription besides the given one
	HasOtherActiveSubscriptions(ctx context.Context, tx DBTX, customerID string, excludeID uuid.UUID) (bool, error)

	// AppendNote records an audit note against the subscription
	AppendNote(ctx context.Context, tx DBTX, id uuid.UUID, note string) error
}

// OrderRepository provides the core's narrow view of the order subsystem:
// reads of initiating and renewal orders, renewal creation, and the single
// "mark paid" write.
type OrderRepository interface {
	GetByID(ctx context.Context, tx DBTX, id uuid.UUID) (*domain.Order, error)

	// ListBySubscription returns every renewal order child to the subscription,
	// most recent first
	ListBySubscription(ctx context.Context, tx DBTX, subscriptionID uuid.UUID) ([]*domain.Order, error)

	// LatestBySubscription returns the most recent renewal order, or
	// ErrOrderNotFound when the subscription has none
	LatestBySubscription(ctx context.Context, tx DBTX, subscriptionID uuid.UUID) (*domain.Order, error)

	// LatestPaidBySubscription returns the most recently paid renewal order, or
	// ErrOrderNotFound when no renewal has been paid
	LatestPaidBySubscription(ctx context.Context, tx DBTX, subscriptionID uuid.UUID) (*domain.Order, error)

	// CreateRenewal creates a pending renewal order child to the subscription
	CreateRenewal(ctx context.Context, tx DBTX, subscriptionID uuid.UUID, total decimal.Decimal) (*domain.Order, error)

	// MarkPaid records the payment timestamp on an order
	MarkPaid(ctx context.Context, tx DBTX, id uuid.UUID, paidAt time.Time) error
}
