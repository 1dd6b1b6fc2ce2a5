package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the state of an order owned by the order subsystem
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the narrow view of an order record this core needs: the initiating
// order that created a subscription, or a renewal order child to one. The
// order subsystem owns the record; the core only reads it and marks it paid.
type Order struct {
	CreatedAt      time.Time
	PaidAt         time.Time
	Status         OrderStatus
	ID             string
	SubscriptionID string
	Total          decimal.Decimal
}

// IsPaid returns true once a payment has been recorded against the order
func (o *Order) IsPaid() bool {
	return !o.PaidAt.IsZero()
}

// NeedsPayment returns true when the order is awaiting payment for a non-zero total
func (o *Order) NeedsPayment() bool {
	return (o.Status == OrderStatusPending || o.Status == OrderStatusFailed) &&
		o.Total.GreaterThan(decimal.Zero)
}
