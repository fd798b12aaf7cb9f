package app

import (
	"context"

	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/usecase"
)

// MarketplaceFacade is the single entry point the transport layer talks to.
type MarketplaceFacade struct {
	auth     *usecase.AuthUseCase
	payments *usecase.PaymentUseCase
	webhooks *usecase.WebhookUseCase
	orders   *usecase.OrderUseCase
	profiles *usecase.ProfileUseCase
	catalog  *usecase.CatalogUseCase
}

func NewMarketplaceFacade(
	auth *usecase.AuthUseCase,
	payments *usecase.PaymentUseCase,
	webhooks *usecase.WebhookUseCase,
	orders *usecase.OrderUseCase,
	profiles *usecase.ProfileUseCase,
	catalog *usecase.CatalogUseCase,
) *MarketplaceFacade {
	return &MarketplaceFacade{
		auth:     auth,
		payments: payments,
		webhooks: webhooks,
		orders:   orders,
		profiles: profiles,
		catalog:  catalog,
	}
}

func (f *MarketplaceFacade) Register(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, email, password)
	return token, err
}

func (f *MarketplaceFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *MarketplaceFacade) ParseToken(token string) (string, error) {
	return f.auth.ParseToken(token)
}

func (f *MarketplaceFacade) CreatePaymentIntent(ctx context.Context, userID string, req model.IntentRequest) (*model.IntentResult, error) {
	return f.payments.CreateIntent(ctx, userID, req)
}

func (f *MarketplaceFacade) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	return f.webhooks.Handle(ctx, payload, signature)
}

func (f *MarketplaceFacade) Orders(ctx context.Context, userID string) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *MarketplaceFacade) UpdatePushToken(ctx context.Context, userID, token string) error {
	return f.profiles.UpdatePushToken(ctx, userID, token)
}

func (f *MarketplaceFacade) Cook(ctx context.Context, id string) (*model.Cook, error) {
	return f.catalog.Cook(ctx, id)
}
