package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kevin07696/subscription-service/internal/domain"
	dports "github.com/kevin07696/subscription-service/internal/domain/ports"
)

// UpdateStatus validates and performs a status transition, applying the side
// effects tied to the target status. Either the transition fully completes
// (new status, side effects, audit note, notification) or the prior status is
// restored; no partially-applied transition is observable afterwards.
func (s *Service) UpdateStatus(ctx context.Context, subscriptionID string, target domain.Status, note string) error {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return err
	}
	return s.transition(ctx, sub, subID, target, note)
}

// CanUpdateStatus reports whether the subscription may be moved to the target
// status, consulting the payment method's capabilities for gated transitions.
func (s *Service) CanUpdateStatus(ctx context.Context, subscriptionID string, target domain.Status) (bool, error) {
	sub, _, err := s.load(ctx, subscriptionID)
	if err != nil {
		return false, err
	}
	return domain.ValidStatus(target) && domain.CanTransitionTo(sub.Status, target, s.supportsFor(sub)), nil
}

func (s *Service) transition(ctx context.Context, sub *domain.Subscription, subID uuid.UUID, target domain.Status, note string) error {
	if !domain.ValidStatus(target) {
		return domain.NewDomainError(domain.ErrorCodeInvalidTransition,
			fmt.Sprintf("%q is not a recognized subscription status", target))
	}

	current := sub.Status
	if target == current {
		return nil
	}

	if !domain.CanTransitionTo(current, target, s.supportsFor(sub)) {
		s.recordTransitionFailure(ctx, sub, subID, current, target)
		return domain.NewDomainError(domain.ErrorCodeInvalidTransition,
			fmt.Sprintf("unable to change subscription status from %q to %q", current, target))
	}

	// Side effects are applied to a draft copy so a validation failure leaves
	// the loaded subscription untouched.
	draft := *sub
	if err := s.applyTransitionEffects(&draft, target); err != nil {
		s.recordTransitionFailure(ctx, sub, subID, current, target)
		return err
	}
	draft.Status = target
	draft.UpdatedAt = s.clock.Now()

	statusNote := fmt.Sprintf("Status changed from %s to %s.", current, target)
	if note != "" {
		statusNote = note + " " + statusNote
	}

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.subs.Update(ctx, tx, &draft); err != nil {
			return fmt.Errorf("persist status transition: %w", err)
		}
		return s.subs.AppendNote(ctx, tx, subID, statusNote)
	})
	if err != nil {
		s.recordTransitionFailure(ctx, sub, subID, current, target)
		return err
	}
	*sub = draft

	if err := s.applyAccountEffects(ctx, sub, target); err != nil {
		// Compensating write: the transition must not be observable when any
		// of its steps failed.
		if rbErr := s.subs.UpdateStatus(ctx, nil, subID, current); rbErr != nil {
			s.logger.Error("status rollback failed",
				dports.String("subscription_id", sub.ID),
				dports.String("status", string(current)),
				dports.Err(rbErr))
		} else {
			sub.Status = current
		}
		s.recordTransitionFailure(ctx, sub, subID, current, target)
		return err
	}

	s.emitter.Emit(dports.EventStatusUpdated, map[string]interface{}{
		"subscription_id": sub.ID,
		"old_status":      string(current),
		"new_status":      string(target),
	})

	s.logger.Info("subscription status updated",
		dports.String("subscription_id", sub.ID),
		dports.String("old_status", string(current)),
		dports.String("new_status", string(target)))

	return nil
}

// applyTransitionEffects mutates the draft with the scheduling side effects of
// the target status. No persistence happens here.
func (s *Service) applyTransitionEffects(draft *domain.Subscription, target domain.Status) error {
	now := s.clock.Now()

	switch target {
	case domain.StatusPendingCancellation:
		end := s.calculateDate(draft, dateEndOfPrepaidTerm, now)
		// An active subscription always has an end date or next payment, but
		// guard against records that have neither.
		if end.IsZero() {
			end = now
		}
		return s.endBilling(draft, end)

	case domain.StatusActive:
		// Trial end and end dates are set when the subscription is first
		// created and do not change on reactivation. A zero result clears a
		// stale next payment: no further payment fits before the end date.
		next := s.calculateDate(draft, domain.DateNextPayment, now)
		return s.setDraftDates(draft, map[domain.DateType]time.Time{domain.DateNextPayment: next})

	case domain.StatusOnHold:
		draft.SuspensionCount++

	case domain.StatusCancelled, domain.StatusSwitched, domain.StatusExpired:
		return s.endBilling(draft, now)
	}

	return nil
}

// endBilling records when the subscription ends and clears the scheduled
// dates that can no longer happen: no payment is collected after the end, and
// a trial cannot outlive it.
func (s *Service) endBilling(draft *domain.Subscription, end time.Time) error {
	updates := map[domain.DateType]time.Time{
		domain.DateEnd:         end,
		domain.DateNextPayment: {},
	}
	if draft.Schedule.TrialEnd.After(end) {
		updates[domain.DateTrialEnd] = time.Time{}
	}
	return s.setDraftDates(draft, updates)
}

// setDraftDates merges the changes into the draft's schedule and re-validates
// the full date set.
func (s *Service) setDraftDates(draft *domain.Subscription, updates map[domain.DateType]time.Time) error {
	merged, _, err := draft.Schedule.WithUpdates(updates)
	if err != nil {
		return err
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	draft.Schedule = merged
	return nil
}

// applyAccountEffects synchronizes the customer account with the new status
func (s *Service) applyAccountEffects(ctx context.Context, sub *domain.Subscription, target domain.Status) error {
	switch target {
	case domain.StatusActive:
		return s.accounts.MarkActive(ctx, sub.CustomerID)
	case domain.StatusOnHold, domain.StatusCancelled, domain.StatusSwitched, domain.StatusExpired:
		return s.accounts.MarkInactiveIfNoActiveSubscriptions(ctx, sub.CustomerID)
	}
	return nil
}

func (s *Service) recordTransitionFailure(ctx context.Context, sub *domain.Subscription, subID uuid.UUID, current, target domain.Status) {
	note := fmt.Sprintf("Unable to change subscription status to %q.", target)
	if err := s.subs.AppendNote(ctx, nil, subID, note); err != nil {
		s.logger.Warn("failed to record transition failure note",
			dports.String("subscription_id", sub.ID),
			dports.Err(err))
	}

	s.emitter.Emit(dports.EventStatusUpdateFailed, map[string]interface{}{
		"subscription_id": sub.ID,
		"old_status":      string(current),
		"new_status":      string(target),
	})
}

func (s *Service) supportsFor(sub *domain.Subscription) domain.SupportsFunc {
	return func(feature domain.GatewayFeature) bool {
		return s.PaymentMethodSupports(sub, feature)
	}
}
