package postgres

import (
	"context"

	"github.com/kevin07696/subscription-service/internal/domain"
	"github.com/kevin07696/subscription-service/internal/domain/ports"
)

// CustomerAccountService maintains the customers.is_active flag based on the
// customer's subscription portfolio.
type CustomerAccountService struct {
	db     ports.DBPort
	logger ports.Logger
}

// NewCustomerAccountService creates a new customer account service
func NewCustomerAccountService(db ports.DBPort, logger ports.Logger) *CustomerAccountService {
	return &CustomerAccountService{db: db, logger: logger}
}

// MarkActive flags the customer account as holding an active subscription
func (s *CustomerAccountService) MarkActive(ctx context.Context, customerID string) error {
	_, err := s.db.GetDB().Exec(ctx, `
		UPDATE customers SET is_active = TRUE, updated_at = now() WHERE id = $1`,
		customerID)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "mark customer active", err)
	}
	return nil
}

// MarkInactiveIfNoActiveSubscriptions deactivates the customer account unless
// another active subscription still exists for the customer.
func (s *CustomerAccountService) MarkInactiveIfNoActiveSubscriptions(ctx context.Context, customerID string) error {
	tag, err := s.db.GetDB().Exec(ctx, `
		UPDATE customers SET is_active = FALSE, updated_at = now()
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE customer_id = $1 AND status = $2
		  )`,
		customerID, string(domain.StatusActive))
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "mark customer inactive", err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug("customer kept active", ports.String("customer_id", customerID))
	}
	return nil
}
