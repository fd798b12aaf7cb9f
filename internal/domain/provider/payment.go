package provider

import (
	"context"

	"github.com/polkiloo/yemma/internal/domain/model"
)

// PaymentProvider abstracts the card payment processor.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email, userID, idempotencyKey string) (string, error)
	CreatePaymentIntent(ctx context.Context, params model.IntentParams) (*model.PaymentIntent, error)
	// ParseEvent verifies a signed webhook payload. Verification failures wrap ErrInvalidSignature.
	ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error)
}
