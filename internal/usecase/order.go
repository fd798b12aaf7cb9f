package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/domain/repository"
)

// OrderUseCase exposes order history.
type OrderUseCase struct {
	orders repository.OrderStore
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderStore) *OrderUseCase {
	return &OrderUseCase{orders: orders}
}

// ListByUser returns orders of the user, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, domainErrors.ErrUnauthenticated
	}
	return u.orders.ListByUser(ctx, userID)
}
