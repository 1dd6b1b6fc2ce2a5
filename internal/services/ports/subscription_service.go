package ports

import (
	"context"
	"time"

	"github.com/kevin07696/subscription-service/internal/domain"
)

// RenewalError describes a single failure inside a renewal batch
type RenewalError struct {
	SubscriptionID string
	CustomerID     string
	Error          string
}

// RenewalBatchResult summarizes one renewal processing run
type RenewalBatchResult struct {
	Errors    []RenewalError
	Processed int
	Succeeded int
	Failed    int
}

// SubscriptionService is the entry point for lifecycle operations driven by
// external events: order payments, admin actions and scheduled cron ticks.
type SubscriptionService interface {
	UpdateStatus(ctx context.Context, subscriptionID string, target domain.Status, note string) error
	UpdateDates(ctx context.Context, subscriptionID string, updates map[domain.DateType]time.Time) error
	DeleteDate(ctx context.Context, subscriptionID string, dateType domain.DateType) error

	PaymentComplete(ctx context.Context, subscriptionID, transactionID string) error
	PaymentFailed(ctx context.Context, subscriptionID string, fallback domain.Status) error
	Cancel(ctx context.Context, subscriptionID, note string) error

	CompletedPaymentCount(ctx context.Context, subscriptionID string) (int, error)
	FailedPaymentCount(ctx context.Context, subscriptionID string) (int, error)
	RelatedOrders(ctx context.Context, subscriptionID string) ([]*domain.Order, error)
	RelatedOrderIDs(ctx context.Context, subscriptionID string) ([]string, error)

	ProcessDueRenewals(ctx context.Context, asOf time.Time, batchSize int) (*RenewalBatchResult, error)
}
