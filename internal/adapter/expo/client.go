package expo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	exposdk "github.com/oliveroneill/exponent-server-sdk-golang/sdk"

	"github.com/polkiloo/yemma/internal/domain/model"
)

const (
	sendPath          = "/push/send"
	defaultRetryAfter = 5 * time.Second
)

// ErrDeviceNotRegistered indicates the push token is no longer valid.
var ErrDeviceNotRegistered = errors.New("device not registered")

// TooManyRequestsError represents rate limiting signal from the push service.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// HTTPClient sends push messages through the Expo push API.
type HTTPClient struct {
	host        string
	apiURL      string
	accessToken string
	timeout     time.Duration
	transport   http.RoundTripper
	logger      *slog.Logger
}

// NewHTTPClient creates push client with default timeout.
// endpoint is the full send URL, e.g. https://exp.host/--/api/v2/push/send.
func NewHTTPClient(endpoint, accessToken string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse expo url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("expo url must be absolute")
	}
	return &HTTPClient{
		host:        parsed.Scheme + "://" + parsed.Host,
		apiURL:      strings.TrimSuffix(parsed.Path, sendPath),
		accessToken: accessToken,
		timeout:     10 * time.Second,
		transport:   http.DefaultTransport,
		logger:      logger,
	}, nil
}

// Send delivers a single message and checks its push ticket.
func (c *HTTPClient) Send(ctx context.Context, msg model.PushMessage) error {
	token, err := exposdk.NewExponentPushToken(msg.To)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceNotRegistered, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.pushClient(ctx).Publish(&exposdk.PushMessage{
		To:    []exposdk.ExponentPushToken{token},
		Title: msg.Title,
		Body:  msg.Body,
		Data:  msg.Data,
		Sound: "default",
	})
	if err != nil {
		return err
	}

	if err := resp.ValidateResponse(); err != nil {
		var (
			unregistered *exposdk.DeviceNotRegisteredError
			rateExceeded *exposdk.MessageRateExceededError
		)
		switch {
		case errors.As(err, &unregistered):
			return fmt.Errorf("%w: %s", ErrDeviceNotRegistered, resp.Message)
		case errors.As(err, &rateExceeded):
			return TooManyRequestsError{RetryAfter: defaultRetryAfter}
		default:
			return fmt.Errorf("push ticket %s: %w", resp.Status, err)
		}
	}
	return nil
}

// pushClient binds the sdk client to ctx, the sdk builds its requests without one.
func (c *HTTPClient) pushClient(ctx context.Context) *exposdk.PushClient {
	return exposdk.NewPushClient(&exposdk.ClientConfig{
		Host:        c.host,
		APIURL:      c.apiURL,
		AccessToken: c.accessToken,
		HTTPClient:  &http.Client{Transport: &statusTransport{ctx: ctx, base: c.transport, logger: c.logger}},
	})
}

// statusTransport maps non-2xx answers to typed errors before the sdk sees them.
type statusTransport struct {
	ctx    context.Context
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		t.logger.ErrorContext(t.ctx, "expo push request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("expo error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return defaultRetryAfter
}
