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
	"github.com/shopspring/decimal"
)

// OrderRepository implements ports.OrderRepository with pgx
type OrderRepository struct {
	db ports.DBPort
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db ports.DBPort) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) executor(tx ports.DBTX) ports.DBTX {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

const orderColumns = `id, subscription_id, status, total, paid_at, created_at`

// GetByID retrieves an order by its ID
func (r *OrderRepository) GetByID(ctx context.Context, tx ports.DBTX, id uuid.UUID) (*domain.Order, error) {
	row := r.executor(tx).QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1`, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "get order by id", err)
	}
	return order, nil
}

// ListBySubscription returns every renewal order child to the subscription,
// most recent first
func (r *OrderRepository) ListBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID uuid.UUID) ([]*domain.Order, error) {
	rows, err := r.executor(tx).Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE subscription_id = $1
		ORDER BY created_at DESC, id DESC`, subscriptionID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "list orders by subscription", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "scan order", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// LatestBySubscription returns the most recent renewal order, or
// ErrOrderNotFound when the subscription has none
func (r *OrderRepository) LatestBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID uuid.UUID) (*domain.Order, error) {
	row := r.executor(tx).QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE subscription_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, subscriptionID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "get latest order", err)
	}
	return order, nil
}

// LatestPaidBySubscription returns the most recently paid renewal order, or
// ErrOrderNotFound when no renewal has been paid
func (r *OrderRepository) LatestPaidBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID uuid.UUID) (*domain.Order, error) {
	row := r.executor(tx).QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE subscription_id = $1 AND paid_at IS NOT NULL
		ORDER BY paid_at DESC, id DESC
		LIMIT 1`, subscriptionID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "get latest paid order", err)
	}
	return order, nil
}

// CreateRenewal creates a pending renewal order child to the subscription
func (r *OrderRepository) CreateRenewal(ctx context.Context, tx ports.DBTX, subscriptionID uuid.UUID, total decimal.Decimal) (*domain.Order, error) {
	amount, err := numeric(total)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New()
	var createdAt time.Time
	err = r.executor(tx).QueryRow(ctx, `
		INSERT INTO orders (id, subscription_id, status, total, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING created_at`,
		orderID, subscriptionID, string(domain.OrderStatusPending), amount).Scan(&createdAt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDatabaseError, "create renewal order", err)
	}

	return &domain.Order{
		ID:             orderID.String(),
		SubscriptionID: subscriptionID.String(),
		Status:         domain.OrderStatusPending,
		Total:          total,
		CreatedAt:      createdAt.UTC(),
	}, nil
}

// MarkPaid records the payment timestamp on an order
func (r *OrderRepository) MarkPaid(ctx context.Context, tx ports.DBTX, id uuid.UUID, paidAt time.Time) error {
	tag, err := r.executor(tx).Exec(ctx, `
		UPDATE orders SET status = $2, paid_at = $3 WHERE id = $1`,
		id, string(domain.OrderStatusCompleted), paidAt.UTC())
	if err != nil {
		return domain.WrapError(domain.ErrorCodeDatabaseError, "mark order paid", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order          domain.Order
		orderID        uuid.UUID
		subscriptionID pgtype.UUID
		status         string
		total          pgtype.Numeric
		paidAt         pgtype.Timestamptz
	)

	err := row.Scan(&orderID, &subscriptionID, &status, &total, &paidAt, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	order.ID = orderID.String()
	if subscriptionID.Valid {
		order.SubscriptionID = uuid.UUID(subscriptionID.Bytes).String()
	}
	order.Status = domain.OrderStatus(status)
	order.Total = fromNumeric(total)
	order.PaidAt = fromTimestamptz(paidAt)
	return &order, nil
}
