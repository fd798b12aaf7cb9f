package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/yemma/internal/adapter/expo"
	"github.com/polkiloo/yemma/internal/config"
	"github.com/polkiloo/yemma/internal/domain/provider"
)

// Module provides the dispatcher and exposes it as the application PushNotifier.
var Module = fx.Options(
	fx.Provide(newNotificationDispatcher),
	fx.Provide(func(d *NotificationDispatcher) provider.PushNotifier { return d }),
)

type dispatcherParams struct {
	fx.In

	Client *expo.HTTPClient
	Config *config.Config
	Logger *slog.Logger
}

func newNotificationDispatcher(p dispatcherParams) *NotificationDispatcher {
	return NewNotificationDispatcher(
		p.Client,
		p.Config.NotifyWorkers,
		p.Config.NotifyQueueSize,
		p.Config.NotifyTimeout,
		p.Logger,
	)
}
