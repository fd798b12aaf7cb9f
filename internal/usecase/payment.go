package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/domain/provider"
	"github.com/polkiloo/yemma/internal/domain/repository"
)

// PaymentOptions carries payment settings that are not collaborators.
type PaymentOptions struct {
	DefaultCurrency string
}

// PaymentUseCase prices an order, opens a provider payment intent and records a pending order.
type PaymentUseCase struct {
	users    repository.UserDirectory
	orders   repository.OrderStore
	payments provider.PaymentProvider
	currency string
	logger   *slog.Logger

	now    func() time.Time
	newKey func() string
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(users repository.UserDirectory, orders repository.OrderStore, payments provider.PaymentProvider, opts PaymentOptions, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{
		users:    users,
		orders:   orders,
		payments: payments,
		currency: opts.DefaultCurrency,
		logger:   logger,
		now:      time.Now,
		newKey:   uuid.NewString,
	}
}

// CreateIntent validates the request before any side effect, then in order resolves the
// customer, creates the intent and inserts the pending order. Completed steps are not
// rolled back when a later one fails.
func (u *PaymentUseCase) CreateIntent(ctx context.Context, userID string, req model.IntentRequest) (*model.IntentResult, error) {
	if userID == "" {
		return nil, domainErrors.ErrUnauthenticated
	}
	if err := ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	cookID := strings.TrimSpace(req.CookID)
	if cookID == "" {
		return nil, domainErrors.ErrMissingCook
	}
	currency, err := NormalizeCurrency(req.Currency, u.currency)
	if err != nil {
		return nil, err
	}
	if err := ValidateMetadata(req.Metadata); err != nil {
		return nil, err
	}

	quote := Quote(req.Amount)
	if quote.AmountMinor > maxAmountMinor {
		return nil, fmt.Errorf("%w: charge exceeds provider limit", domainErrors.ErrInvalidAmount)
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key = u.newKey()
	}
	log := u.logger.With(slog.String("user_id", userID), slog.String("yemma_id", cookID))

	customerID, err := u.resolveCustomer(ctx, userID, req.CustomerID, key)
	if err != nil {
		log.ErrorContext(ctx, "resolve payment customer failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	intent, err := u.payments.CreatePaymentIntent(ctx, model.IntentParams{
		AmountMinor:    quote.AmountMinor,
		Currency:       currency,
		CustomerID:     customerID,
		Metadata:       intentMetadata(req.Metadata, userID, cookID, quote),
		IdempotencyKey: key + "-intent",
	})
	if err != nil {
		log.ErrorContext(ctx, "create payment intent failed", slog.String("customer_id", customerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	order := &model.Order{
		UserID:          userID,
		CookID:          cookID,
		Amount:          quote.Amount,
		Commission:      quote.Commission,
		DeliveryFee:     quote.DeliveryFee,
		Total:           quote.Total,
		Currency:        currency,
		PaymentIntentID: intent.ID,
		Status:          model.OrderStatusPending,
		CreatedAt:       u.now(),
	}
	err = u.orders.Create(ctx, order)
	switch {
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		// Same idempotency key replayed: the provider returned the intent recorded by the first call.
		log.InfoContext(ctx, "payment intent replayed, order already recorded", slog.String("payment_intent_id", intent.ID))
		return intentResult(intent, quote), nil
	case err != nil:
		log.ErrorContext(ctx, "insert order failed", slog.String("payment_intent_id", intent.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("insert order: %w", err)
	}

	log.InfoContext(ctx, "payment intent created",
		slog.String("payment_intent_id", intent.ID),
		slog.String("order_id", order.ID),
		slog.Int64("amount_minor", quote.AmountMinor),
		slog.String("currency", currency),
	)

	return intentResult(intent, quote), nil
}

func intentResult(intent *model.PaymentIntent, quote model.Quote) *model.IntentResult {
	return &model.IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Commission:      quote.Commission,
		DeliveryFee:     quote.DeliveryFee,
		Total:           quote.Total,
	}
}

func (u *PaymentUseCase) resolveCustomer(ctx context.Context, userID, requested, key string) (string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested, nil
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	customerID, err := u.payments.CreateCustomer(ctx, user.Email, userID, key+"-customer")
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	if err := u.users.SetStripeCustomerID(ctx, userID, customerID); err != nil {
		return "", fmt.Errorf("persist customer %s: %w", customerID, err)
	}
	return customerID, nil
}

func intentMetadata(client map[string]string, userID, cookID string, quote model.Quote) map[string]string {
	md := make(map[string]string, len(client)+5)
	for k, v := range client {
		md[k] = v
	}
	md[model.MetadataUserID] = userID
	md[model.MetadataCookID] = cookID
	md[model.MetadataOriginalAmount] = formatAmount(quote.Amount)
	md[model.MetadataCommission] = formatAmount(quote.Commission)
	md[model.MetadataDeliveryFee] = formatAmount(quote.DeliveryFee)
	return md
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
