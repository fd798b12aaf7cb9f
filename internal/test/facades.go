package test

import (
	"context"
	"time"

	"github.com/polkiloo/yemma/internal/domain/model"
)

// PaymentFacadeStub provides controllable behaviour for the payment endpoint.
type PaymentFacadeStub struct {
	CreateFn func(context.Context, string, model.IntentRequest) (*model.IntentResult, error)
}

// CreatePaymentIntent delegates to provided function or returns a fixed result.
func (s PaymentFacadeStub) CreatePaymentIntent(ctx context.Context, userID string, req model.IntentRequest) (*model.IntentResult, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, req)
	}
	return &model.IntentResult{
		ClientSecret:    "pi_1_secret",
		PaymentIntentID: "pi_1",
		Commission:      2.5,
		DeliveryFee:     0,
		Total:           27.5,
	}, nil
}

// WebhookFacadeStub simulates webhook handling.
type WebhookFacadeStub struct {
	HandleFn func(context.Context, []byte, string) error
}

// HandleStripeWebhook returns configured result.
func (s WebhookFacadeStub) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.HandleFn != nil {
		return s.HandleFn(ctx, payload, signature)
	}
	return nil
}

// OrderFacadeStub provides controllable behaviour for order history.
type OrderFacadeStub struct {
	OrdersFn func(context.Context, string) ([]model.Order, error)
}

// Orders returns predefined orders for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userID string) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{
		ID:              "order-1",
		UserID:          userID,
		CookID:          "cook-1",
		Amount:          25,
		Commission:      2.5,
		Total:           27.5,
		Currency:        "eur",
		PaymentIntentID: "pi_1",
		Status:          model.OrderStatusPending,
		CreatedAt:       time.Unix(0, 0).UTC(),
	}}, nil
}

// ProfileFacadeStub simulates profile updates.
type ProfileFacadeStub struct {
	UpdatePushTokenFn func(context.Context, string, string) error
}

// UpdatePushToken executes configured handler.
func (s ProfileFacadeStub) UpdatePushToken(ctx context.Context, userID, token string) error {
	if s.UpdatePushTokenFn != nil {
		return s.UpdatePushTokenFn(ctx, userID, token)
	}
	return nil
}

// CatalogFacadeStub returns cook profiles.
type CatalogFacadeStub struct {
	CookFn func(context.Context, string) (*model.Cook, error)
}

// Cook returns configured profile or a default one.
func (s CatalogFacadeStub) Cook(ctx context.Context, id string) (*model.Cook, error) {
	if s.CookFn != nil {
		return s.CookFn(ctx, id)
	}
	return &model.Cook{ID: id, Name: "Yemma Fatima", PushToken: "ExponentPushToken[cook]"}, nil
}
