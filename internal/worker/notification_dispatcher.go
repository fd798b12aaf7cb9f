package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/yemma/internal/adapter/expo"
	"github.com/polkiloo/yemma/internal/domain/model"
	"github.com/polkiloo/yemma/internal/domain/provider"
)

// ErrQueueFull is returned when a message cannot be queued without blocking.
var ErrQueueFull = errors.New("notification queue full")

// NotificationDispatcher queues push messages and delivers them from a fixed worker pool.
// Delivery is best-effort: failed sends are logged and never retried.
type NotificationDispatcher struct {
	sender  provider.PushNotifier
	workers int
	timeout time.Duration
	logger  *slog.Logger

	jobs   chan model.PushMessage
	drain  chan struct{}
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewNotificationDispatcher constructs the dispatcher worker pool.
func NewNotificationDispatcher(sender provider.PushNotifier, workers, queueSize int, timeout time.Duration, logger *slog.Logger) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &NotificationDispatcher{
		sender:  sender,
		workers: workers,
		timeout: timeout,
		logger:  logger,
		jobs:    make(chan model.PushMessage, queueSize),
	}
}

// Send enqueues msg and returns immediately.
func (d *NotificationDispatcher) Send(ctx context.Context, msg model.PushMessage) error {
	select {
	case d.jobs <- msg:
		return nil
	default:
		d.logger.WarnContext(ctx, "notification queue full, message dropped", slog.String("type", msg.Data["type"]))
		return ErrQueueFull
	}
}

// Start launches the workers. They outlive ctx cancellation and stop only on Stop.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.drain = make(chan struct{})

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx, d.drain)
	}
}

// Stop lets the workers empty the queue until ctx is done, then cancels in-flight
// sends and waits for the workers. Whatever is still queued is dropped.
func (d *NotificationDispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	cancel, drain := d.cancel, d.drain
	d.cancel, d.drain = nil, nil
	d.mu.Unlock()

	if cancel != nil {
		close(drain)

		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			d.logger.Warn("notification drain interrupted", slog.String("error", ctx.Err().Error()))
		}
		cancel()
		<-done
	}

	if pending := len(d.jobs); pending > 0 {
		d.logger.Warn("notification dispatcher stopped with pending messages", slog.Int("dropped", pending))
	}
}

func (d *NotificationDispatcher) worker(ctx context.Context, drain <-chan struct{}) {
	defer d.wg.Done()
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.jobs:
			d.deliver(ctx, msg)
		case <-drain:
			d.flush(ctx)
			return
		}
	}
}

func (d *NotificationDispatcher) flush(ctx context.Context) {
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.jobs:
			d.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, msg model.PushMessage) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.sender.Send(sendCtx, msg)
	if err == nil {
		return
	}

	log := d.logger.With(slog.String("type", msg.Data["type"]), slog.String("order_id", msg.Data["orderId"]))
	var limited expo.TooManyRequestsError
	switch {
	case errors.As(err, &limited):
		log.Warn("push service rate limited, message dropped", slog.Duration("retry_after", limited.RetryAfter))
	case errors.Is(err, expo.ErrDeviceNotRegistered):
		log.Info("push token no longer registered")
	default:
		log.Warn("push delivery failed", slog.String("error", err.Error()))
	}
}
