package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/domain/provider"
	"github.com/polkiloo/yemma/internal/domain/repository"
)

const (
	newOrderTitle       = "Nouvelle commande ! 🎉"
	newOrderBody        = "Vous avez reçu une commande de %s€"
	orderConfirmedTitle = "Commande confirmée ! ✅"
	orderConfirmedBody  = "Votre paiement a été accepté. La Yemma prépare votre commande."
)

// WebhookUseCase reconciles verified payment provider events into order state and notifications.
type WebhookUseCase struct {
	payments provider.PaymentProvider
	orders   repository.OrderStore
	users    repository.UserDirectory
	cooks    repository.CookDirectory
	notifier provider.PushNotifier
	deduper  provider.EventDeduper
	logger   *slog.Logger

	now func() time.Time
}

// NewWebhookUseCase constructs WebhookUseCase.
func NewWebhookUseCase(
	payments provider.PaymentProvider,
	orders repository.OrderStore,
	users repository.UserDirectory,
	cooks repository.CookDirectory,
	notifier provider.PushNotifier,
	deduper provider.EventDeduper,
	logger *slog.Logger,
) *WebhookUseCase {
	return &WebhookUseCase{
		payments: payments,
		orders:   orders,
		users:    users,
		cooks:    cooks,
		notifier: notifier,
		deduper:  deduper,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle verifies and reconciles a single webhook delivery.
// The returned error is always a verification failure. Once an event is verified every
// later problem is logged and swallowed so the delivery is acknowledged.
func (u *WebhookUseCase) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := u.payments.ParseEvent(payload, signature)
	if event == nil {
		if err == nil {
			err = domainErrors.ErrMalformedEvent
		}
		if !errors.Is(err, domainErrors.ErrInvalidSignature) {
			err = fmt.Errorf("%w: %w", domainErrors.ErrInvalidSignature, err)
		}
		u.logger.WarnContext(ctx, "webhook verification failed", slog.String("error", err.Error()))
		return err
	}

	log := u.logger.With(slog.String("event_id", event.ID), slog.String("event_type", string(event.Type)))
	if err != nil {
		log.WarnContext(ctx, "webhook event could not be decoded", slog.String("error", err.Error()))
		return nil
	}

	switch event.Type {
	case model.EventPaymentSucceeded, model.EventPaymentFailed:
	default:
		log.DebugContext(ctx, "webhook event ignored")
		return nil
	}

	if !u.claim(ctx, log, event.ID) {
		return nil
	}

	log = log.With(slog.String("payment_intent_id", event.IntentID))
	if event.Type == model.EventPaymentSucceeded {
		u.paymentSucceeded(ctx, log, event)
	} else {
		u.paymentFailed(ctx, log, event)
	}
	return nil
}

func (u *WebhookUseCase) claim(ctx context.Context, log *slog.Logger, eventID string) bool {
	fresh, err := u.deduper.Claim(ctx, eventID)
	if err != nil {
		log.WarnContext(ctx, "webhook dedupe unavailable, processing anyway", slog.String("error", err.Error()))
		return true
	}
	if !fresh {
		log.InfoContext(ctx, "duplicate webhook delivery skipped")
	}
	return fresh
}

func (u *WebhookUseCase) paymentSucceeded(ctx context.Context, log *slog.Logger, event *model.PaymentEvent) {
	var orderID string

	transition, err := u.orders.MarkPaid(ctx, event.IntentID, u.now())
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		log.InfoContext(ctx, "no order for payment intent")
	case err != nil:
		log.ErrorContext(ctx, "mark order paid failed", slog.String("error", err.Error()))
	default:
		orderID = transition.Order.ID
		if !transition.Changed() {
			log.InfoContext(ctx, "order already paid, notifications skipped", slog.String("order_id", orderID))
			return
		}
		log.InfoContext(ctx, "order paid", slog.String("order_id", orderID), slog.String("previous_status", string(transition.Previous)))
	}

	if cookID := event.Metadata[model.MetadataCookID]; cookID != "" {
		u.notifyCook(ctx, log, cookID, orderID, event.AmountMinor)
	}
	if userID := event.Metadata[model.MetadataUserID]; userID != "" {
		u.notifyCustomer(ctx, log, userID, orderID)
	}
}

func (u *WebhookUseCase) paymentFailed(ctx context.Context, log *slog.Logger, event *model.PaymentEvent) {
	transition, err := u.orders.MarkFailed(ctx, event.IntentID, u.now(), event.ErrorMessage)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		log.InfoContext(ctx, "no order for payment intent")
	case err != nil:
		log.ErrorContext(ctx, "mark order failed failed", slog.String("error", err.Error()))
	default:
		log.InfoContext(ctx, "order payment failed",
			slog.String("order_id", transition.Order.ID),
			slog.String("reason", event.ErrorMessage),
		)
	}
}

func (u *WebhookUseCase) notifyCook(ctx context.Context, log *slog.Logger, cookID, orderID string, amountMinor int64) {
	cook, err := u.cooks.GetByID(ctx, cookID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			log.WarnContext(ctx, "load cook for notification failed", slog.String("yemma_id", cookID), slog.String("error", err.Error()))
		}
		return
	}
	if cook.PushToken == "" {
		return
	}
	u.send(ctx, log, "cook", model.PushMessage{
		To:    cook.PushToken,
		Title: newOrderTitle,
		Body:  fmt.Sprintf(newOrderBody, strconv.FormatFloat(float64(amountMinor)/100, 'f', -1, 64)),
		Data:  map[string]string{"type": model.NotificationNewOrder, "orderId": orderID},
	})
}

func (u *WebhookUseCase) notifyCustomer(ctx context.Context, log *slog.Logger, userID, orderID string) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			log.WarnContext(ctx, "load user for notification failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		return
	}
	if user.PushToken == "" {
		return
	}
	u.send(ctx, log, "customer", model.PushMessage{
		To:    user.PushToken,
		Title: orderConfirmedTitle,
		Body:  orderConfirmedBody,
		Data:  map[string]string{"type": model.NotificationOrderConfirmed, "orderId": orderID},
	})
}

// send is a failure boundary: nothing a notifier does can abort reconciliation.
func (u *WebhookUseCase) send(ctx context.Context, log *slog.Logger, recipient string, msg model.PushMessage) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "push notification panicked", slog.String("recipient", recipient), slog.Any("panic", r))
		}
	}()
	if err := u.notifier.Send(ctx, msg); err != nil {
		log.WarnContext(ctx, "push notification failed", slog.String("recipient", recipient), slog.String("error", err.Error()))
	}
}
