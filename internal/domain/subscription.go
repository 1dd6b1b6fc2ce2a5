package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the subscription lifecycle state
type Status string

const (
	StatusAutoDraft           Status = "auto-draft"
	StatusDraft               Status = "draft"
	StatusPending             Status = "pending"
	StatusActive              Status = "active"
	StatusOnHold              Status = "on-hold"
	StatusCancelled           Status = "cancelled"
	StatusPendingCancellation Status = "pending-cancellation"
	StatusExpired             Status = "expired"
	StatusSwitched            Status = "switched"
	StatusTrash               Status = "trash"
	StatusDeleted             Status = "deleted"
)

// BillingPeriod defines the time unit for billing intervals
type BillingPeriod string

const (
	PeriodDay   BillingPeriod = "day"
	PeriodWeek  BillingPeriod = "week"
	PeriodMonth BillingPeriod = "month"
	PeriodYear  BillingPeriod = "year"
)

// GatewayFeature identifies a lifecycle capability a payment gateway may support
type GatewayFeature string

const (
	FeatureSuspension    GatewayFeature = "subscription_suspension"
	FeatureReactivation  GatewayFeature = "subscription_reactivation"
	FeatureCancellation  GatewayFeature = "subscription_cancellation"
	FeatureDateChanges   GatewayFeature = "subscription_date_changes"
	FeatureAmountChanges GatewayFeature = "subscription_amount_changes"
)

// PaymentMethodManual marks a subscription renewed by offline/manual payment
// collection rather than an automated gateway.
const PaymentMethodManual = "manual"

// Subscription represents a recurring billing subscription
type Subscription struct {
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Schedule              Schedule
	Status                Status
	BillingPeriod         BillingPeriod
	ID                    string
	CustomerID            string
	PaymentMethod         string
	InitiatingOrderID     string
	TotalInitialPayment   decimal.Decimal
	RecurringTotal        decimal.Decimal
	BillingInterval       int
	SuspensionCount       int
	RequiresManualRenewal bool
}

// HasStatus returns true if the subscription currently has any of the given statuses
func (s *Subscription) HasStatus(statuses ...Status) bool {
	for _, status := range statuses {
		if s.Status == status {
			return true
		}
	}
	return false
}

// HasEnded returns true if the subscription has reached an ended state.
// Pending cancellation counts as ended because no further recurring payment
// will be collected, even though the prepaid term is still running.
func (s *Subscription) HasEnded() bool {
	return statusHasEnded(s.Status)
}

// IsManual returns true if the subscription is renewed through manual payment
// collection. A missing payment method is treated as manual so date and status
// edits are never blocked by an unconfigured gateway.
func (s *Subscription) IsManual() bool {
	return s.RequiresManualRenewal || s.PaymentMethod == "" || s.PaymentMethod == PaymentMethodManual
}

// HasInitiatingOrder returns true if the subscription was created from a
// purchase rather than manually by a store manager.
func (s *Subscription) HasInitiatingOrder() bool {
	return s.InitiatingOrderID != ""
}

// ValidStatus reports whether the given status is a recognized subscription status
func ValidStatus(status Status) bool {
	switch status {
	case StatusAutoDraft, StatusDraft, StatusPending, StatusActive, StatusOnHold,
		StatusCancelled, StatusPendingCancellation, StatusExpired, StatusSwitched,
		StatusTrash, StatusDeleted:
		return true
	}
	return false
}

// ValidBillingPeriod reports whether the given period is a recognized billing period
func ValidBillingPeriod(period BillingPeriod) bool {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}
