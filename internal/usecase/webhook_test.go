package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
	testhelpers "github.com/polkiloo/yemma/internal/test"
)

type webhookFixture struct {
	users    *testhelpers.UserDirectoryStub
	cooks    *testhelpers.CookDirectoryStub
	orders   *testhelpers.OrderStoreStub
	payments *testhelpers.PaymentProviderStub
	notifier *testhelpers.PushNotifierStub
	deduper  *testhelpers.DeduperStub
	uc       *WebhookUseCase
	now      time.Time
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	f := &webhookFixture{
		users:    testhelpers.NewUserDirectoryStub(),
		cooks:    &testhelpers.CookDirectoryStub{Cooks: map[string]*model.Cook{"cook-1": {ID: "cook-1", Name: "Fatima", PushToken: "ExponentPushToken[cook]"}}},
		orders:   testhelpers.NewOrderStoreStub(),
		payments: &testhelpers.PaymentProviderStub{},
		notifier: &testhelpers.PushNotifierStub{},
		deduper:  &testhelpers.DeduperStub{},
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.users.Put(&model.User{ID: "user-1", Email: "alice@example.com", PushToken: "ExponentPushToken[user]"})
	if err := f.orders.Create(context.Background(), &model.Order{UserID: "user-1", CookID: "cook-1", PaymentIntentID: "pi_1", Status: model.OrderStatusPending}); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	f.uc = NewWebhookUseCase(f.payments, f.orders, f.users, f.cooks, f.notifier, f.deduper, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	f.uc.now = func() time.Time { return f.now }
	return f
}

func (f *webhookFixture) deliver(events ...*model.PaymentEvent) {
	queue := events
	f.payments.ParseEventFn = func([]byte, string) (*model.PaymentEvent, error) {
		e := queue[0]
		queue = queue[1:]
		return e, nil
	}
}

func succeeded(id, intent string) *model.PaymentEvent {
	return &model.PaymentEvent{
		ID:          id,
		Type:        model.EventPaymentSucceeded,
		IntentID:    intent,
		AmountMinor: 2750,
		Currency:    "eur",
		Metadata:    map[string]string{model.MetadataUserID: "user-1", model.MetadataCookID: "cook-1"},
	}
}

func TestWebhookUseCaseRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	err := f.uc.Handle(context.Background(), []byte(`{}`), "t=1,v1=bad")
	if !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
	if order, _ := f.orders.Get("pi_1"); order.Status != model.OrderStatusPending {
		t.Fatalf("order must stay pending, got %s", order.Status)
	}
	if len(f.notifier.Sent()) != 0 {
		t.Fatal("expected no notifications")
	}
}

func TestWebhookUseCaseWrapsVerificationErrors(t *testing.T) {
	f := newWebhookFixture(t)
	f.payments.ParseEventFn = func([]byte, string) (*model.PaymentEvent, error) {
		return nil, errors.New("timestamp outside tolerance")
	}
	if err := f.uc.Handle(context.Background(), nil, ""); !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func TestWebhookUseCasePaymentSucceeded(t *testing.T) {
	f := newWebhookFixture(t)
	f.deliver(succeeded("evt_1", "pi_1"))

	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, _ := f.orders.Get("pi_1")
	if order.Status != model.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
	if order.PaidAt == nil || !order.PaidAt.Equal(f.now) {
		t.Fatalf("expected paid at %v, got %v", f.now, order.PaidAt)
	}

	sent := f.notifier.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(sent))
	}
	cook, customer := sent[0], sent[1]
	if cook.To != "ExponentPushToken[cook]" || cook.Title != "Nouvelle commande ! 🎉" {
		t.Fatalf("unexpected cook notification %+v", cook)
	}
	if cook.Body != "Vous avez reçu une commande de 27.5€" {
		t.Fatalf("unexpected cook body %q", cook.Body)
	}
	if cook.Data["type"] != model.NotificationNewOrder || cook.Data["orderId"] != order.ID {
		t.Fatalf("unexpected cook data %+v", cook.Data)
	}
	if customer.To != "ExponentPushToken[user]" || customer.Title != "Commande confirmée ! ✅" {
		t.Fatalf("unexpected customer notification %+v", customer)
	}
	if customer.Data["type"] != model.NotificationOrderConfirmed {
		t.Fatalf("unexpected customer data %+v", customer.Data)
	}
}

func TestWebhookUseCaseDuplicateDeliverySkipped(t *testing.T) {
	f := newWebhookFixture(t)
	f.deliver(succeeded("evt_1", "pi_1"), succeeded("evt_1", "pi_1"))

	for i := 0; i < 2; i++ {
		if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i, err)
		}
	}
	if got := len(f.notifier.Sent()); got != 2 {
		t.Fatalf("expected notifications once, got %d messages", got)
	}
}

func TestWebhookUseCaseReplayWithNewEventIDDoesNotRenotify(t *testing.T) {
	f := newWebhookFixture(t)
	f.deliver(succeeded("evt_1", "pi_1"), succeeded("evt_2", "pi_1"))

	for i := 0; i < 2; i++ {
		if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i, err)
		}
	}
	if got := len(f.notifier.Sent()); got != 2 {
		t.Fatalf("expected notifications once, got %d messages", got)
	}
	if order, _ := f.orders.Get("pi_1"); order.Status != model.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
}

func TestWebhookUseCaseDeduperUnavailable(t *testing.T) {
	f := newWebhookFixture(t)
	f.deduper.ClaimFn = func(context.Context, string) (bool, error) { return false, errors.New("redis down") }
	f.deliver(succeeded("evt_1", "pi_1"))

	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order, _ := f.orders.Get("pi_1"); order.Status != model.OrderStatusPaid {
		t.Fatalf("expected processing to continue, got %s", order.Status)
	}
}

func TestWebhookUseCaseUnknownIntentStillNotifies(t *testing.T) {
	f := newWebhookFixture(t)
	f.deliver(succeeded("evt_1", "pi_unknown"))

	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sent := f.notifier.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(sent))
	}
	if sent[0].Data["orderId"] != "" {
		t.Fatalf("expected empty order id, got %q", sent[0].Data["orderId"])
	}
}

func TestWebhookUseCaseStoreFailureIsAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)
	f.orders.MarkPaidFn = func(context.Context, string, time.Time) (*model.OrderTransition, error) {
		return nil, errors.New("db down")
	}
	f.deliver(succeeded("evt_1", "pi_1"))

	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("expected ack despite store failure, got %v", err)
	}
}

func TestWebhookUseCaseNotificationFailuresSwallowed(t *testing.T) {
	f := newWebhookFixture(t)
	calls := 0
	f.notifier.SendFn = func(context.Context, model.PushMessage) error {
		calls++
		if calls == 1 {
			return errors.New("expo unavailable")
		}
		panic("boom")
	}
	f.deliver(succeeded("evt_1", "pi_1"))

	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected both recipients to be attempted, got %d", calls)
	}
	if order, _ := f.orders.Get("pi_1"); order.Status != model.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
}

func TestWebhookUseCaseMissingRecipientsSkipped(t *testing.T) {
	f := newWebhookFixture(t)
	f.users.Put(&model.User{ID: "user-1", Email: "alice@example.com"})
	event := succeeded("evt_1", "pi_1")
	event.Metadata[model.MetadataCookID] = "cook-unknown"
	f.deliver(event)

	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(f.notifier.Sent()); got != 0 {
		t.Fatalf("expected no notifications, got %d", got)
	}
}

func TestWebhookUseCasePaymentFailed(t *testing.T) {
	f := newWebhookFixture(t)
	f.deliver(&model.PaymentEvent{
		ID:           "evt_2",
		Type:         model.EventPaymentFailed,
		IntentID:     "pi_1",
		ErrorMessage: "Your card was declined.",
	})

	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order, _ := f.orders.Get("pi_1")
	if order.Status != model.OrderStatusFailed || order.ErrorMessage != "Your card was declined." {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.FailedAt == nil || !order.FailedAt.Equal(f.now) {
		t.Fatalf("expected failed at %v, got %v", f.now, order.FailedAt)
	}
	if len(f.notifier.Sent()) != 0 {
		t.Fatal("failed payments must not notify")
	}
}

func TestWebhookUseCaseIgnoresOtherEvents(t *testing.T) {
	f := newWebhookFixture(t)
	f.deduper.ClaimFn = func(context.Context, string) (bool, error) {
		t.Fatal("ignored events must not be claimed")
		return false, nil
	}
	f.deliver(&model.PaymentEvent{ID: "evt_3", Type: "charge.refunded", IntentID: "pi_1"})

	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order, _ := f.orders.Get("pi_1"); order.Status != model.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
}

func TestWebhookUseCaseMalformedVerifiedEventAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)
	f.payments.ParseEventFn = func([]byte, string) (*model.PaymentEvent, error) {
		return &model.PaymentEvent{ID: "evt_4", Type: model.EventPaymentSucceeded}, domainErrors.ErrMalformedEvent
	}
	if err := f.uc.Handle(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("expected ack, got %v", err)
	}
	if len(f.notifier.Sent()) != 0 {
		t.Fatal("expected no notifications")
	}
}
