package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kevin07696/subscription-service/internal/domain"
	dports "github.com/kevin07696/subscription-service/internal/domain/ports"
	sports "github.com/kevin07696/subscription-service/internal/services/ports"
	"github.com/shopspring/decimal"
)

// DateCalculationHook lets collaborators override a computed lifecycle date
// without touching the calculator. Hooks run in registration order; each
// receives the previous result.
type DateCalculationHook func(sub *domain.Subscription, dateType domain.DateType, computed time.Time) time.Time

// MaxFailuresPolicy signals that a subscription has exceeded its allowed
// number of failed payments and must be cancelled instead of suspended.
type MaxFailuresPolicy func(sub *domain.Subscription) bool

// Service drives the subscription lifecycle: status transitions, schedule
// updates and the payment-complete/payment-failed workflows. Callers must
// serialize mutations per subscription ID; the service assumes no two
// mutations for the same subscription run concurrently.
type Service struct {
	db          dports.DBPort
	subs        dports.SubscriptionRepository
	orders      dports.OrderRepository
	gateways    dports.GatewayRegistry
	accounts    dports.CustomerAccountService
	emitter     dports.EventEmitter
	clock       dports.Clock
	logger      dports.Logger
	maxFailures MaxFailuresPolicy
	dateHooks   []DateCalculationHook
}

var _ sports.SubscriptionService = (*Service)(nil)

// NewService creates a new subscription lifecycle service
func NewService(
	db dports.DBPort,
	subs dports.SubscriptionRepository,
	orders dports.OrderRepository,
	gateways dports.GatewayRegistry,
	accounts dports.CustomerAccountService,
	emitter dports.EventEmitter,
	clock dports.Clock,
	logger dports.Logger,
) *Service {
	return &Service{
		db:       db,
		subs:     subs,
		orders:   orders,
		gateways: gateways,
		accounts: accounts,
		emitter:  emitter,
		clock:    clock,
		logger:   logger,
	}
}

// RegisterDateHook appends a calculation hook applied to every computed date
func (s *Service) RegisterDateHook(hook DateCalculationHook) {
	s.dateHooks = append(s.dateHooks, hook)
}

// SetMaxFailuresPolicy installs the external max-retries-exceeded signal
// consulted by PaymentFailed.
func (s *Service) SetMaxFailuresPolicy(policy MaxFailuresPolicy) {
	s.maxFailures = policy
}

// PaymentComplete processes a completed payment, for either the original
// purchase or a renewal. The order record has already been marked paid by the
// order subsystem; this resets the suspension tally, reactivates the customer
// and records the payment note.
func (s *Service) PaymentComplete(ctx context.Context, subscriptionID, transactionID string) error {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return err
	}

	completed, err := s.completedPaymentCount(ctx, sub, subID)
	if err != nil {
		return err
	}

	note := "Payment received."
	if sub.TotalInitialPayment.IsZero() && completed == 1 && sub.HasInitiatingOrder() {
		// Free trial with no sign-up fee: nothing was actually charged yet
		if sub.IsManual() {
			note = "Free trial commenced for subscription."
		} else {
			note = "Recurring payment authorized."
		}
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub.SuspensionCount = 0
		sub.UpdatedAt = s.clock.Now()
		if err := s.subs.Update(ctx, tx, sub); err != nil {
			return fmt.Errorf("reset suspension count: %w", err)
		}
		return s.subs.AppendNote(ctx, tx, subID, note)
	})
	if err != nil {
		s.logger.Error("payment complete failed",
			dports.String("subscription_id", subscriptionID),
			dports.Err(err))
		return err
	}

	if err := s.accounts.MarkActive(ctx, sub.CustomerID); err != nil {
		s.logger.Warn("customer activation failed",
			dports.String("subscription_id", subscriptionID),
			dports.String("customer_id", sub.CustomerID),
			dports.Err(err))
	}

	s.emitter.Emit(dports.EventPaymentComplete, map[string]interface{}{
		"subscription_id": subscriptionID,
		"transaction_id":  transactionID,
	})
	if completed >= 1 {
		s.emitter.Emit(dports.EventRenewalPaymentComplete, map[string]interface{}{
			"subscription_id": subscriptionID,
			"transaction_id":  transactionID,
		})
	}

	s.logger.Info("payment complete",
		dports.String("subscription_id", subscriptionID),
		dports.String("transaction_id", transactionID),
		dports.Int("completed_payments", completed))

	return nil
}

// PaymentFailed processes a failed payment. The subscription is suspended
// under the fallback status, or cancelled outright when the fallback is
// cancelled or the max-failures policy fires.
func (s *Service) PaymentFailed(ctx context.Context, subscriptionID string, fallback domain.Status) error {
	if fallback == "" {
		fallback = domain.StatusOnHold
	}

	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return err
	}

	if err := s.subs.AppendNote(ctx, nil, subID, "Payment failed."); err != nil {
		return err
	}

	if fallback == domain.StatusCancelled || (s.maxFailures != nil && s.maxFailures(sub)) {
		err = s.transition(ctx, sub, subID, domain.StatusCancelled,
			"Subscription cancelled: maximum number of failed payments reached.")
	} else {
		err = s.transition(ctx, sub, subID, fallback, "")
	}
	if err != nil {
		return err
	}

	s.emitter.Emit(dports.EventPaymentFailed, map[string]interface{}{
		"subscription_id": subscriptionID,
		"new_status":      string(sub.Status),
	})

	completed, err := s.completedPaymentCount(ctx, sub, subID)
	if err != nil {
		return err
	}
	if completed >= 1 {
		s.emitter.Emit(dports.EventRenewalPaymentFailed, map[string]interface{}{
			"subscription_id": subscriptionID,
		})
	}

	return nil
}

// Cancel ends the subscription. While a prepaid term remains the subscription
// is parked in pending cancellation until the term runs out; otherwise it is
// cancelled immediately.
func (s *Service) Cancel(ctx context.Context, subscriptionID, note string) error {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	prepaidEnd := s.calculateDate(sub, dateEndOfPrepaidTerm, now)

	if !sub.HasStatus(domain.StatusPendingCancellation, domain.StatusCancelled) && prepaidEnd.After(now) {
		return s.transition(ctx, sub, subID, domain.StatusPendingCancellation, note)
	}
	return s.transition(ctx, sub, subID, domain.StatusCancelled, note)
}

// CompletedPaymentCount returns the number of completed payments: renewal
// orders with a paid date, plus the initiating order when it has been paid.
func (s *Service) CompletedPaymentCount(ctx context.Context, subscriptionID string) (int, error) {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return 0, err
	}
	return s.completedPaymentCount(ctx, sub, subID)
}

// FailedPaymentCount returns the number of failed payments: failed renewal
// orders, plus the initiating order when it failed.
func (s *Service) FailedPaymentCount(ctx context.Context, subscriptionID string) (int, error) {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return 0, err
	}

	count := 0
	if initiating, err := s.initiatingOrder(ctx, sub); err != nil {
		return 0, err
	} else if initiating != nil && initiating.Status == domain.OrderStatusFailed {
		count++
	}

	renewals, err := s.orders.ListBySubscription(ctx, nil, subID)
	if err != nil {
		return 0, err
	}
	for _, order := range renewals {
		if order.Status == domain.OrderStatusFailed {
			count++
		}
	}
	return count, nil
}

// RelatedOrders returns the initiating order (if any) followed by every
// renewal order.
func (s *Service) RelatedOrders(ctx context.Context, subscriptionID string) ([]*domain.Order, error) {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	var related []*domain.Order
	initiating, err := s.initiatingOrder(ctx, sub)
	if err != nil {
		return nil, err
	}
	if initiating != nil {
		related = append(related, initiating)
	}

	renewals, err := s.orders.ListBySubscription(ctx, nil, subID)
	if err != nil {
		return nil, err
	}
	return append(related, renewals...), nil
}

// RelatedOrderIDs returns the identifiers of the related orders, initiating
// order first.
func (s *Service) RelatedOrderIDs(ctx context.Context, subscriptionID string) ([]string, error) {
	orders, err := s.RelatedOrders(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	return ids, nil
}

// NeedsPayment reports whether the subscription has an unpaid initial or
// renewal order outstanding.
func (s *Service) NeedsPayment(ctx context.Context, subscriptionID string) (bool, error) {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return false, err
	}

	if sub.HasStatus(domain.StatusPending) && sub.TotalInitialPayment.GreaterThan(decimal.Zero) {
		return true, nil
	}

	latest, err := s.orders.LatestBySubscription(ctx, nil, subID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeOrderNotFound) {
			return false, nil
		}
		return false, err
	}
	return latest.NeedsPayment(), nil
}

// TotalInitialPayment returns the amount charged at the outset of the
// subscription, zero when there was no initiating order or the first cycle
// was a free trial.
func (s *Service) TotalInitialPayment(ctx context.Context, subscriptionID string) (string, error) {
	sub, _, err := s.load(ctx, subscriptionID)
	if err != nil {
		return "", err
	}
	return sub.TotalInitialPayment.String(), nil
}

// SetRequiresManualRenewal flips the subscription between gateway-driven and
// manual renewal collection.
func (s *Service) SetRequiresManualRenewal(ctx context.Context, subscriptionID string, manual bool) error {
	sub, _, err := s.load(ctx, subscriptionID)
	if err != nil {
		return err
	}
	sub.RequiresManualRenewal = manual
	sub.UpdatedAt = s.clock.Now()
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.subs.Update(ctx, tx, sub)
	})
}

// UpdateParentOrder changes which order records the subscription's initial purchase
func (s *Service) UpdateParentOrder(ctx context.Context, subscriptionID, orderID string) error {
	sub, _, err := s.load(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return domain.WrapError(domain.ErrorCodeInvalidInput, "invalid order ID", err)
	}
	sub.InitiatingOrderID = orderID
	sub.UpdatedAt = s.clock.Now()
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.subs.Update(ctx, tx, sub)
	})
}

// ProcessDueRenewals scans active subscriptions whose next payment has come
// due, creates a renewal order for each and advances the next payment date.
// Actual payment collection is the order subsystem's job; its outcome arrives
// later through PaymentComplete or PaymentFailed. Manual-renewal subscriptions
// are placed on hold until the customer pays.
func (s *Service) ProcessDueRenewals(ctx context.Context, asOf time.Time, batchSize int) (*sports.RenewalBatchResult, error) {
	result := &sports.RenewalBatchResult{
		Errors: make([]sports.RenewalError, 0),
	}

	due, err := s.subs.ListDueForPayment(ctx, nil, asOf, int32(batchSize))
	if err != nil {
		return nil, fmt.Errorf("list subscriptions due for payment: %w", err)
	}
	result.Processed = len(due)

	s.logger.Info("processing renewal batch",
		dports.Time("as_of", asOf),
		dports.Int("count", len(due)))

	for _, sub := range due {
		if err := s.processSingleRenewal(ctx, sub); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, sports.RenewalError{
				SubscriptionID: sub.ID,
				CustomerID:     sub.CustomerID,
				Error:          err.Error(),
			})
			s.logger.Error("renewal failed for subscription",
				dports.String("subscription_id", sub.ID),
				dports.Err(err))
		} else {
			result.Succeeded++
		}
	}

	s.logger.Info("renewal batch completed",
		dports.Int("processed", result.Processed),
		dports.Int("succeeded", result.Succeeded),
		dports.Int("failed", result.Failed))

	return result, nil
}

func (s *Service) processSingleRenewal(ctx context.Context, sub *domain.Subscription) error {
	subID, err := uuid.Parse(sub.ID)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeInvalidInput, "invalid subscription ID", err)
	}
	if err := s.resolveSchedule(ctx, sub, subID); err != nil {
		return err
	}

	var order *domain.Order
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		order, err = s.orders.CreateRenewal(ctx, tx, subID, sub.RecurringTotal)
		if err != nil {
			return fmt.Errorf("create renewal order: %w", err)
		}

		// Advance the schedule so the next tick does not pick this
		// subscription up again. The calculator lands on the next future
		// cycle; a zero result means the end date has been reached.
		next := s.calculateDate(sub, domain.DateNextPayment, s.clock.Now())
		sub.Schedule.NextPayment = next
		sub.UpdatedAt = s.clock.Now()
		return s.subs.Update(ctx, tx, sub)
	})
	if err != nil {
		return err
	}

	if sub.IsManual() {
		if err := s.transition(ctx, sub, subID, domain.StatusOnHold, "Awaiting manual renewal payment."); err != nil {
			return err
		}
	}

	s.emitter.Emit(dports.EventRenewalDue, map[string]interface{}{
		"subscription_id": sub.ID,
		"order_id":        order.ID,
		"total":           sub.RecurringTotal.String(),
	})
	return nil
}

// load fetches a subscription and eagerly resolves the lazily-derived
// schedule fields.
func (s *Service) load(ctx context.Context, subscriptionID string) (*domain.Subscription, uuid.UUID, error) {
	subID, err := uuid.Parse(subscriptionID)
	if err != nil {
		return nil, uuid.Nil, domain.WrapError(domain.ErrorCodeInvalidInput, "invalid subscription ID", err)
	}

	sub, err := s.subs.GetByID(ctx, nil, subID)
	if err != nil {
		return nil, uuid.Nil, err
	}

	if err := s.resolveSchedule(ctx, sub, subID); err != nil {
		return nil, uuid.Nil, err
	}
	return sub, subID, nil
}

// resolveSchedule fills in the derived schedule fields: the start date comes
// from the record's creation time and the last payment date from the most
// recently paid renewal order, falling back to the initiating order.
func (s *Service) resolveSchedule(ctx context.Context, sub *domain.Subscription, subID uuid.UUID) error {
	if sub.Schedule.Start.IsZero() {
		sub.Schedule.Start = sub.CreatedAt.UTC()
	}

	if !sub.Schedule.LastPayment.IsZero() {
		return nil
	}

	lastPaid, err := s.orders.LatestPaidBySubscription(ctx, nil, subID)
	switch {
	case err == nil:
		sub.Schedule.LastPayment = lastPaid.PaidAt.UTC()
		return nil
	case domain.IsDomainError(err, domain.ErrorCodeOrderNotFound):
		// fall through to the initiating order
	default:
		return err
	}

	initiating, err := s.initiatingOrder(ctx, sub)
	if err != nil {
		return err
	}
	if initiating != nil && initiating.IsPaid() {
		sub.Schedule.LastPayment = initiating.PaidAt.UTC()
	}
	return nil
}

func (s *Service) initiatingOrder(ctx context.Context, sub *domain.Subscription) (*domain.Order, error) {
	if !sub.HasInitiatingOrder() {
		return nil, nil
	}
	orderID, err := uuid.Parse(sub.InitiatingOrderID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInvalidInput, "invalid initiating order ID", err)
	}
	order, err := s.orders.GetByID(ctx, nil, orderID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeOrderNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) completedPaymentCount(ctx context.Context, sub *domain.Subscription, subID uuid.UUID) (int, error) {
	count := 0

	initiating, err := s.initiatingOrder(ctx, sub)
	if err != nil {
		return 0, err
	}
	if initiating != nil && initiating.IsPaid() {
		count++
	}

	renewals, err := s.orders.ListBySubscription(ctx, nil, subID)
	if err != nil {
		return 0, err
	}
	for _, order := range renewals {
		if order.IsPaid() {
			count++
		}
	}
	return count, nil
}

// dateEndOfPrepaidTerm is a calculation-only pseudo date type; it is never
// stored on the schedule.
const dateEndOfPrepaidTerm domain.DateType = "end_of_prepaid_term"

// calculateDate computes a lifecycle date and passes the result through the
// registered hooks before returning it.
func (s *Service) calculateDate(sub *domain.Subscription, dateType domain.DateType, now time.Time) time.Time {
	var computed time.Time

	switch dateType {
	case domain.DateNextPayment:
		computed = domain.NextPaymentDate(sub.Schedule, sub.BillingInterval, sub.BillingPeriod, now)
	case dateEndOfPrepaidTerm:
		computed = domain.EndOfPrepaidTerm(sub.Schedule, now)
	}

	for _, hook := range s.dateHooks {
		computed = hook(sub, dateType, computed)
	}
	return computed
}

// CalculateTrialEnd computes the trial end date for the subscription: absent
// once the trial has been consumed by two completed payments, otherwise the
// end of the first billing cycle.
func (s *Service) CalculateTrialEnd(ctx context.Context, subscriptionID string) (time.Time, error) {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return time.Time{}, err
	}

	completed, err := s.completedPaymentCount(ctx, sub, subID)
	if err != nil {
		return time.Time{}, err
	}

	computed := domain.TrialEndDate(sub.Schedule, sub.BillingInterval, sub.BillingPeriod, completed, s.clock.Now())
	for _, hook := range s.dateHooks {
		computed = hook(sub, domain.DateTrialEnd, computed)
	}
	return computed, nil
}
