package handlers

import (
	"context"

	"github.com/polkiloo/yemma/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (string, error)
}

// PaymentFacade opens payment intents.
type PaymentFacade interface {
	CreatePaymentIntent(ctx context.Context, userID string, req model.IntentRequest) (*model.IntentResult, error)
}

// WebhookFacade reconciles provider webhook deliveries.
type WebhookFacade interface {
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
}

// OrderFacade exposes order history.
type OrderFacade interface {
	Orders(ctx context.Context, userID string) ([]model.Order, error)
}

// ProfileFacade updates the current user's profile.
type ProfileFacade interface {
	UpdatePushToken(ctx context.Context, userID, token string) error
}

// CatalogFacade reads cook profiles.
type CatalogFacade interface {
	Cook(ctx context.Context, id string) (*model.Cook, error)
}

// MarketplaceFacade aggregates the full set of operations used across handlers.
type MarketplaceFacade interface {
	AuthFacade
	PaymentFacade
	WebhookFacade
	OrderFacade
	ProfileFacade
	CatalogFacade
}
