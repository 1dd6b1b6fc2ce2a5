package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/subscription-service/internal/domain"
	"github.com/kevin07696/subscription-service/internal/domain/ports"
)

// SubscriptionRepository implements ports.SubscriptionRepository with pgx
type SubscriptionRepository struct {
	db ports.DBPort
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db ports.DBPort) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) executor(tx ports.DBTX) ports.DBTX {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

const subscriptionColumns = `
	id, customer_id, payment_method, status, billing_interval, billing_period,
	requires_manual_renewal, suspension_count, total_initial_payment, recurring_total,
	initiating_order_id, start_date, trial_end_date, next_payment_date,
	last_payment_date, end_date, created_at, updated_at`

// Create inserts a new subscription record
func (r *SubscriptionRepository) Create(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	subID, err := uuid.Parse(sub.ID)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeInvalidInput, "invalid subscription ID", err)
	}

	initialPayment, err := numeric(sub.TotalInitialPayment)
	if err != nil {
		return err
	}
	recurringTotal, err := numeric(sub.RecurringTotal)
	if err != nil {
		return err
	}

	_, err = r.executor(tx).Exec(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		subID, sub.CustomerID, sub.PaymentMethod, string(sub.Status),
		sub.BillingInterval, string(sub.BillingPeriod),
		sub.RequiresManualRenewal, sub.SuspensionCount,
		initialPayment, recurringTotal,
		nullUUID(sub.InitiatingOrderID),
		timestamptz(sub.Schedule.Start), timestamptz(sub.Schedule.TrialEnd),
		timestamptz(sub.Schedule.NextPayment), timestamptz(sub.Schedule.LastPayment),
		timestamptz(sub.Schedule.End),
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "create subscription", err)
	}
	return nil
}

// GetByID retrieves a subscription by its ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, tx ports.DBTX, id uuid.UUID) (*domain.Subscription, error) {
	row := r.executor(tx).QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1`, id)

	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "get subscription by id", err)
	}
	return sub, nil
}

// Update persists every mutable field of the subscription
func (r *SubscriptionRepository) Update(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	subID, err := uuid.Parse(sub.ID)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeInvalidInput, "invalid subscription ID", err)
	}

	initialPayment, err := numeric(sub.TotalInitialPayment)
	if err != nil {
		return err
	}
	recurringTotal, err := numeric(sub.RecurringTotal)
	if err != nil {
		return err
	}

	tag, err := r.executor(tx).Exec(ctx, `
		UPDATE subscriptions SET
			payment_method = $2, status = $3, billing_interval = $4, billing_period = $5,
			requires_manual_renewal = $6, suspension_count = $7,
			total_initial_payment = $8, recurring_total = $9, initiating_order_id = $10,
			start_date = $11, trial_end_date = $12, next_payment_date = $13,
			last_payment_date = $14, end_date = $15, updated_at = $16
		WHERE id = $1`,
		subID, sub.PaymentMethod, string(sub.Status),
		sub.BillingInterval, string(sub.BillingPeriod),
		sub.RequiresManualRenewal, sub.SuspensionCount,
		initialPayment, recurringTotal,
		nullUUID(sub.InitiatingOrderID),
		timestamptz(sub.Schedule.Start), timestamptz(sub.Schedule.TrialEnd),
		timestamptz(sub.Schedule.NextPayment), timestamptz(sub.Schedule.LastPayment),
		timestamptz(sub.Schedule.End),
		sub.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "update subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

// UpdateStatus persists only the status column
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status domain.Status) error {
	tag, err := r.executor(tx).Exec(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "update subscription status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

// ListDueForPayment returns active subscriptions whose next payment date is at
// or before asOf
func (r *SubscriptionRepository) ListDueForPayment(ctx context.Context, tx ports.DBTX, asOf time.Time, limit int32) ([]*domain.Subscription, error) {
	rows, err := r.executor(tx).Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE status = $1 AND next_payment_date IS NOT NULL AND next_payment_date <= $2
		ORDER BY next_payment_date
		LIMIT $3`,
		string(domain.StatusActive), asOf, limit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "list subscriptions due for payment", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "scan subscription", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// HasOtherActiveSubscriptions reports whether the customer holds any active
// subscription besides the given one
func (r *SubscriptionRepository) HasOtherActiveSubscriptions(ctx context.Context, tx ports.DBTX, customerID string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.executor(tx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE customer_id = $1 AND status = $2 AND id <> $3
		)`,
		customerID, string(domain.StatusActive), excludeID).Scan(&exists)
	if err != nil {
		return false, domain.WrapError(domain.ErrorCodeDatabaseError, "check active subscriptions", err)
	}
	return exists, nil
}

// AppendNote records an audit note against the subscription
func (r *SubscriptionRepository) AppendNote(ctx context.Context, tx ports.DBTX, id uuid.UUID, note string) error {
	_, err := r.executor(tx).Exec(ctx, `
		INSERT INTO subscription_notes (subscription_id, note, created_at)
		VALUES ($1, $2, now())`,
		id, note)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "append subscription note", err)
	}
	return nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var (
		sub               domain.Subscription
		subID             uuid.UUID
		status, period    string
		initialPayment    pgtype.Numeric
		recurringTotal    pgtype.Numeric
		initiatingOrderID pgtype.UUID
		start, trialEnd   pgtype.Timestamptz
		nextPayment       pgtype.Timestamptz
		lastPayment, end  pgtype.Timestamptz
	)

	err := row.Scan(
		&subID, &sub.CustomerID, &sub.PaymentMethod, &status,
		&sub.BillingInterval, &period,
		&sub.RequiresManualRenewal, &sub.SuspensionCount,
		&initialPayment, &recurringTotal,
		&initiatingOrderID,
		&start, &trialEnd, &nextPayment, &lastPayment, &end,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.ID = subID.String()
	sub.Status = domain.Status(status)
	sub.BillingPeriod = domain.BillingPeriod(period)
	sub.TotalInitialPayment = fromNumeric(initialPayment)
	sub.RecurringTotal = fromNumeric(recurringTotal)
	if initiatingOrderID.Valid {
		sub.InitiatingOrderID = uuid.UUID(initiatingOrderID.Bytes).String()
	}
	sub.Schedule = domain.Schedule{
		Start:       fromTimestamptz(start),
		TrialEnd:    fromTimestamptz(trialEnd),
		NextPayment: fromTimestamptz(nextPayment),
		LastPayment: fromTimestamptz(lastPayment),
		End:         fromTimestamptz(end),
	}
	return &sub, nil
}

func nullUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{}
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}
