package repository

import (
	"context"

	"github.com/polkiloo/yemma/internal/domain/model"
)

// UserDirectory describes persistence operations with user profiles.
type UserDirectory interface {
	Create(ctx context.Context, email, passwordHash string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	SetStripeCustomerID(ctx context.Context, id, customerID string) error
	SetPushToken(ctx context.Context, id, token string) error
}
