package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
)

// Options configures the Stripe provider.
type Options struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the API base, used against stripe-mock and in tests.
	APIURL string
}

// Provider talks to Stripe for customers, payment intents and webhook verification.
type Provider struct {
	customers     customer.Client
	intents       paymentintent.Client
	webhookSecret string
	logger        *slog.Logger
}

// intentPayload is the part of event.data.object reconciliation reads.
type intentPayload struct {
	ID               string            `json:"id"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// NewProvider builds a provider with its own backend so the global stripe.Key is never touched.
// Network retries are disabled: every call already carries an idempotency key chosen by the caller.
func NewProvider(opts Options, logger *slog.Logger) *Provider {
	cfg := &stripeapi.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		LeveledLogger:     newLeveledLogger(logger),
		MaxNetworkRetries: stripeapi.Int64(0),
	}
	if opts.APIURL != "" {
		cfg.URL = stripeapi.String(opts.APIURL)
	}
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, cfg)

	return &Provider{
		customers:     customer.Client{B: backend, Key: opts.SecretKey},
		intents:       paymentintent.Client{B: backend, Key: opts.SecretKey},
		webhookSecret: opts.WebhookSecret,
		logger:        logger,
	}
}

// CreateCustomer creates a Stripe customer tagged with the user id.
func (p *Provider) CreateCustomer(ctx context.Context, email, userID, idempotencyKey string) (string, error) {
	params := &stripeapi.CustomerParams{
		Email:    stripeapi.String(email),
		Metadata: map[string]string{model.MetadataUserID: userID},
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	cus, err := p.customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer: %w", err)
	}
	return cus.ID, nil
}

// CreatePaymentIntent opens a payment intent with automatic payment methods enabled.
func (p *Provider) CreatePaymentIntent(ctx context.Context, in model.IntentParams) (*model.PaymentIntent, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(in.AmountMinor),
		Currency: stripeapi.String(in.Currency),
		Metadata: in.Metadata,
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	if in.CustomerID != "" {
		params.Customer = stripeapi.String(in.CustomerID)
	}
	params.Context = ctx
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}

	pi, err := p.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	return &model.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// ParseEvent verifies the signature header and reduces the event to a PaymentEvent.
// A verified event whose payload cannot be decoded is returned together with ErrMalformedEvent.
func (p *Provider) ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	if signature == "" {
		return nil, fmt.Errorf("%w: missing signature header", domainErrors.ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrInvalidSignature, err)
	}

	out := &model.PaymentEvent{ID: event.ID, Type: model.EventType(event.Type)}
	if out.Type != model.EventPaymentSucceeded && out.Type != model.EventPaymentFailed {
		return out, nil
	}
	if event.Data == nil {
		return out, fmt.Errorf("%w: empty data", domainErrors.ErrMalformedEvent)
	}

	var pi intentPayload
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return out, fmt.Errorf("%w: %w", domainErrors.ErrMalformedEvent, err)
	}
	if pi.ID == "" {
		return out, fmt.Errorf("%w: payment intent without id", domainErrors.ErrMalformedEvent)
	}

	out.IntentID = pi.ID
	out.AmountMinor = pi.Amount
	out.Currency = pi.Currency
	out.Metadata = pi.Metadata
	if pi.LastPaymentError != nil {
		out.ErrorMessage = pi.LastPaymentError.Message
	}
	return out, nil
}
