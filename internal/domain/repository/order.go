package repository

import (
	"context"
	"time"

	"github.com/polkiloo/yemma/internal/domain/model"
)

// OrderStore describes persistence operations with orders.
// MarkPaid and MarkFailed look the order up by payment intent id and return ErrNotFound on a miss.
type OrderStore interface {
	Create(ctx context.Context, order *model.Order) error
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	MarkPaid(ctx context.Context, paymentIntentID string, paidAt time.Time) (*model.OrderTransition, error)
	MarkFailed(ctx context.Context, paymentIntentID string, failedAt time.Time, message string) (*model.OrderTransition, error)
}
