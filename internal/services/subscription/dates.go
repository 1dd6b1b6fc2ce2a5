package subscription

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kevin07696/subscription-service/internal/domain"
	dports "github.com/kevin07696/subscription-service/internal/domain/ports"
)

// UpdateDates applies a batch of schedule changes atomically. The complete
// resulting date set is validated before anything is written, so either every
// change lands or none do. A zero value clears the date for non-protected
// types. Only fields that actually change are persisted and notified.
func (s *Service) UpdateDates(ctx context.Context, subscriptionID string, updates map[domain.DateType]time.Time) error {
	sub, _, err := s.load(ctx, subscriptionID)
	if err != nil {
		return err
	}

	merged, cleared, err := sub.Schedule.WithUpdates(updates)
	if err != nil {
		return err
	}
	if err := merged.Validate(); err != nil {
		return err
	}

	var changed []domain.DateType
	for _, dateType := range domain.ScheduleDateTypes() {
		if !merged.Get(dateType).Equal(sub.Schedule.Get(dateType)) {
			changed = append(changed, dateType)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	previous := sub.Schedule
	sub.Schedule = merged
	sub.UpdatedAt = s.clock.Now()

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.subs.Update(ctx, tx, sub)
	})
	if err != nil {
		sub.Schedule = previous
		return err
	}

	clearedSet := make(map[domain.DateType]bool, len(cleared))
	for _, dateType := range cleared {
		clearedSet[dateType] = true
	}

	for _, dateType := range changed {
		if clearedSet[dateType] {
			s.emitter.Emit(dports.EventDateDeleted, map[string]interface{}{
				"subscription_id": sub.ID,
				"date_type":       string(dateType),
			})
			continue
		}
		s.emitter.Emit(dports.EventDateUpdated, map[string]interface{}{
			"subscription_id": sub.ID,
			"date_type":       string(dateType),
			"date":            sub.Schedule.Get(dateType),
		})
	}

	s.logger.Info("subscription dates updated",
		dports.String("subscription_id", sub.ID),
		dports.Int("changed", len(changed)))

	return nil
}

// DeleteDate clears a date from the schedule. The start and last payment
// dates can never be deleted, only updated.
func (s *Service) DeleteDate(ctx context.Context, subscriptionID string, dateType domain.DateType) error {
	if !domain.ValidDateType(dateType) {
		return domain.NewDomainError(domain.ErrorCodeInvalidInput,
			string(dateType)+" is not a recognized subscription date type")
	}

	switch dateType {
	case domain.DateStart:
		return domain.ErrStartDateNotDeletable
	case domain.DateLastPayment:
		return domain.ErrLastPaymentDateNotDeletable
	}

	sub, _, err := s.load(ctx, subscriptionID)
	if err != nil {
		return err
	}

	if !sub.Schedule.Has(dateType) {
		return nil
	}

	sub.Schedule.Clear(dateType)
	sub.UpdatedAt = s.clock.Now()

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.subs.Update(ctx, tx, sub)
	})
	if err != nil {
		return err
	}

	s.emitter.Emit(dports.EventDateDeleted, map[string]interface{}{
		"subscription_id": sub.ID,
		"date_type":       string(dateType),
	})
	return nil
}

// GetDate returns a schedule date, resolving the lazily-derived start and
// last payment dates first. The zero time means the date is not set.
func (s *Service) GetDate(ctx context.Context, subscriptionID string, dateType domain.DateType) (time.Time, error) {
	if !domain.ValidDateType(dateType) {
		return time.Time{}, domain.NewDomainError(domain.ErrorCodeInvalidInput,
			string(dateType)+" is not a recognized subscription date type")
	}

	sub, _, err := s.load(ctx, subscriptionID)
	if err != nil {
		return time.Time{}, err
	}
	return sub.Schedule.Get(dateType), nil
}

// CanDateBeUpdated reports whether the given date may currently be changed,
// based on the subscription's status, payment history and the payment
// method's date-change capability.
func (s *Service) CanDateBeUpdated(ctx context.Context, subscriptionID string, dateType domain.DateType) (bool, error) {
	sub, subID, err := s.load(ctx, subscriptionID)
	if err != nil {
		return false, err
	}

	switch dateType {
	case domain.DateStart:
		return sub.HasStatus(domain.StatusAutoDraft, domain.StatusPending), nil

	case domain.DateTrialEnd:
		completed, err := s.completedPaymentCount(ctx, sub, subID)
		if err != nil {
			return false, err
		}
		if completed >= 2 || sub.HasEnded() {
			return false, nil
		}
		return sub.HasStatus(domain.StatusPending) || s.PaymentMethodSupports(sub, domain.FeatureDateChanges), nil

	case domain.DateNextPayment, domain.DateEnd:
		if sub.HasEnded() {
			return false, nil
		}
		return sub.HasStatus(domain.StatusPending) || s.PaymentMethodSupports(sub, domain.FeatureDateChanges), nil

	case domain.DateLastPayment:
		return true, nil
	}

	return false, nil
}
