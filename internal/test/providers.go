package test

import (
	"context"
	"fmt"
	"sync"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
)

// CustomerCall records CreateCustomer invocations.
type CustomerCall struct {
	Email          string
	UserID         string
	IdempotencyKey string
}

// PaymentProviderStub records provider calls and returns deterministic objects.
type PaymentProviderStub struct {
	CreateCustomerFn      func(context.Context, string, string, string) (string, error)
	CreatePaymentIntentFn func(context.Context, model.IntentParams) (*model.PaymentIntent, error)
	ParseEventFn          func([]byte, string) (*model.PaymentEvent, error)

	Customers []CustomerCall
	Intents   []model.IntentParams

	mu sync.Mutex
}

// CreateCustomer returns cus_<n> unless overridden.
func (s *PaymentProviderStub) CreateCustomer(ctx context.Context, email, userID, key string) (string, error) {
	s.mu.Lock()
	s.Customers = append(s.Customers, CustomerCall{Email: email, UserID: userID, IdempotencyKey: key})
	n := len(s.Customers)
	s.mu.Unlock()
	if s.CreateCustomerFn != nil {
		return s.CreateCustomerFn(ctx, email, userID, key)
	}
	return fmt.Sprintf("cus_%d", n), nil
}

// CreatePaymentIntent returns pi_<n> with a matching client secret unless overridden.
func (s *PaymentProviderStub) CreatePaymentIntent(ctx context.Context, params model.IntentParams) (*model.PaymentIntent, error) {
	s.mu.Lock()
	s.Intents = append(s.Intents, params)
	n := len(s.Intents)
	s.mu.Unlock()
	if s.CreatePaymentIntentFn != nil {
		return s.CreatePaymentIntentFn(ctx, params)
	}
	id := fmt.Sprintf("pi_%d", n)
	return &model.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		AmountMinor:  params.AmountMinor,
		Currency:     params.Currency,
	}, nil
}

// ParseEvent delegates to override or rejects the payload.
func (s *PaymentProviderStub) ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	if s.ParseEventFn != nil {
		return s.ParseEventFn(payload, signature)
	}
	return nil, domainErrors.ErrInvalidSignature
}

// PushNotifierStub records sent messages. Safe for concurrent use.
type PushNotifierStub struct {
	SendFn func(context.Context, model.PushMessage) error

	mu   sync.Mutex
	sent []model.PushMessage
}

// Send records the message and returns override result.
func (s *PushNotifierStub) Send(ctx context.Context, msg model.PushMessage) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	if s.SendFn != nil {
		return s.SendFn(ctx, msg)
	}
	return nil
}

// Sent returns a copy of recorded messages.
func (s *PushNotifierStub) Sent() []model.PushMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PushMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

// DeduperStub claims event ids in-memory.
type DeduperStub struct {
	ClaimFn func(context.Context, string) (bool, error)

	mu   sync.Mutex
	seen map[string]struct{}
}

// Claim returns true only the first time an id is seen.
func (s *DeduperStub) Claim(ctx context.Context, eventID string) (bool, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, eventID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[eventID]; ok {
		return false, nil
	}
	s.seen[eventID] = struct{}{}
	return true, nil
}
