package stripe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/domain/model"
)

const testWebhookSecret = "whsec_test"

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type recordedRequest struct {
	path   string
	auth   string
	key    string
	values map[string]string
}

type fakeStripe struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	values := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		values[k] = r.PostForm.Get(k)
	}
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		path:   r.URL.Path,
		auth:   r.Header.Get("Authorization"),
		key:    r.Header.Get("Idempotency-Key"),
		values: values,
	})
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeStripe) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("expected a request to reach stripe")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeStripe) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestProvider(t *testing.T, fake *fakeStripe) *Provider {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewProvider(Options{SecretKey: "sk_test_123", WebhookSecret: testWebhookSecret, APIURL: srv.URL}, testLogger())
}

func TestCreateCustomer(t *testing.T) {
	fake := &fakeStripe{body: `{"id":"cus_123","object":"customer"}`}
	p := newTestProvider(t, fake)

	id, err := p.CreateCustomer(context.Background(), "alice@example.com", "user-1", "key-customer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "cus_123" {
		t.Fatalf("unexpected customer id %q", id)
	}

	req := fake.last(t)
	if req.path != "/v1/customers" {
		t.Fatalf("unexpected path %q", req.path)
	}
	if req.auth != "Bearer sk_test_123" {
		t.Fatalf("unexpected authorization %q", req.auth)
	}
	if req.key != "key-customer" {
		t.Fatalf("unexpected idempotency key %q", req.key)
	}
	if req.values["email"] != "alice@example.com" || req.values["metadata[userId]"] != "user-1" {
		t.Fatalf("unexpected form %+v", req.values)
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	fake := &fakeStripe{body: `{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc","amount":2750,"currency":"eur"}`}
	p := newTestProvider(t, fake)

	pi, err := p.CreatePaymentIntent(context.Background(), model.IntentParams{
		AmountMinor:    2750,
		Currency:       "eur",
		CustomerID:     "cus_123",
		Metadata:       map[string]string{"userId": "user-1", "yemmaId": "cook-1"},
		IdempotencyKey: "key-intent",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pi.ID != "pi_123" || pi.ClientSecret != "pi_123_secret_abc" || pi.AmountMinor != 2750 || pi.Currency != "eur" {
		t.Fatalf("unexpected intent %+v", pi)
	}

	req := fake.last(t)
	if req.path != "/v1/payment_intents" {
		t.Fatalf("unexpected path %q", req.path)
	}
	want := map[string]string{
		"amount":                             "2750",
		"currency":                           "eur",
		"customer":                           "cus_123",
		"metadata[userId]":                   "user-1",
		"metadata[yemmaId]":                  "cook-1",
		"automatic_payment_methods[enabled]": "true",
	}
	for k, v := range want {
		if req.values[k] != v {
			t.Fatalf("form %s: expected %q, got %q", k, v, req.values[k])
		}
	}
	if req.key != "key-intent" {
		t.Fatalf("unexpected idempotency key %q", req.key)
	}
}

func TestCreatePaymentIntentProviderError(t *testing.T) {
	fake := &fakeStripe{
		status: http.StatusPaymentRequired,
		body:   `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`,
	}
	p := newTestProvider(t, fake)

	_, err := p.CreatePaymentIntent(context.Background(), model.IntentParams{AmountMinor: 100, Currency: "eur"})
	if err == nil {
		t.Fatal("expected error")
	}
	var stripeErr *stripeapi.Error
	if !errors.As(err, &stripeErr) {
		t.Fatalf("expected stripe error, got %T %v", err, err)
	}
	if stripeErr.Code != stripeapi.ErrorCodeCardDeclined {
		t.Fatalf("unexpected code %q", stripeErr.Code)
	}
	if n := fake.count(); n != 1 {
		t.Fatalf("expected no retries, got %d requests", n)
	}
}

func sign(t *testing.T, payload string, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Header
}

func TestParseEventSucceeded(t *testing.T) {
	p := NewProvider(Options{WebhookSecret: testWebhookSecret}, testLogger())
	payload := `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","amount":2750,"currency":"eur","metadata":{"userId":"user-1","yemmaId":"cook-1"}}}}`

	event, err := p.ParseEvent([]byte(payload), sign(t, payload, testWebhookSecret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ID != "evt_1" || event.Type != model.EventPaymentSucceeded || event.IntentID != "pi_1" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.AmountMinor != 2750 || event.Currency != "eur" {
		t.Fatalf("unexpected amount %+v", event)
	}
	if event.Metadata["yemmaId"] != "cook-1" || event.Metadata["userId"] != "user-1" {
		t.Fatalf("unexpected metadata %+v", event.Metadata)
	}
}

func TestParseEventFailed(t *testing.T) {
	p := NewProvider(Options{WebhookSecret: testWebhookSecret}, testLogger())
	payload := `{"id":"evt_2","object":"event","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2","object":"payment_intent","amount":500,"currency":"eur","last_payment_error":{"message":"Your card was declined."}}}}`

	event, err := p.ParseEvent([]byte(payload), sign(t, payload, testWebhookSecret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Type != model.EventPaymentFailed || event.ErrorMessage != "Your card was declined." {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestParseEventOtherTypePassesThrough(t *testing.T) {
	p := NewProvider(Options{WebhookSecret: testWebhookSecret}, testLogger())
	payload := `{"id":"evt_3","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`

	event, err := p.ParseEvent([]byte(payload), sign(t, payload, testWebhookSecret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Type != "charge.refunded" || event.IntentID != "" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestParseEventRejectsBadSignatures(t *testing.T) {
	p := NewProvider(Options{WebhookSecret: testWebhookSecret}, testLogger())
	payload := `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`

	cases := map[string]string{
		"missing":      "",
		"garbage":      "t=1,v1=deadbeef",
		"wrong secret": sign(t, payload, "whsec_other"),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			event, err := p.ParseEvent([]byte(payload), header)
			if !errors.Is(err, domainErrors.ErrInvalidSignature) {
				t.Fatalf("expected invalid signature, got %v", err)
			}
			if event != nil {
				t.Fatalf("expected no event, got %+v", event)
			}
		})
	}

	tampered := sign(t, payload, testWebhookSecret)
	if _, err := p.ParseEvent([]byte(payload+" "), tampered); !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected tampered payload to be rejected, got %v", err)
	}
}

func TestParseEventMalformedIntent(t *testing.T) {
	p := NewProvider(Options{WebhookSecret: testWebhookSecret}, testLogger())
	payload := `{"id":"evt_4","object":"event","type":"payment_intent.succeeded","data":{"object":{"object":"payment_intent","amount":100}}}`

	event, err := p.ParseEvent([]byte(payload), sign(t, payload, testWebhookSecret))
	if !errors.Is(err, domainErrors.ErrMalformedEvent) {
		t.Fatalf("expected malformed event, got %v", err)
	}
	if event == nil || event.ID != "evt_4" {
		t.Fatalf("expected verified event header to be returned, got %+v", event)
	}
}

func TestLeveledLoggerRespectsLevel(t *testing.T) {
	var mu sync.Mutex
	var levels []slog.Level
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				mu.Lock()
				levels = append(levels, a.Value.Any().(slog.Level))
				mu.Unlock()
			}
			return a
		},
	})
	l := newLeveledLogger(slog.New(handler))
	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	mu.Lock()
	defer mu.Unlock()
	if len(levels) != 3 {
		t.Fatalf("expected debug to be filtered, got %v", levels)
	}
	if levels[0] != slog.LevelInfo || levels[2] != slog.LevelError {
		t.Fatalf("unexpected levels %v", levels)
	}
}
