package dedupe

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/yemma/internal/config"
	"github.com/polkiloo/yemma/internal/domain/provider"
)

// Module exposes the webhook event deduper to fx graph.
var Module = fx.Provide(newDeduper)

type deduperParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newDeduper(p deduperParams) provider.EventDeduper {
	if p.Config.RedisAddress == "" {
		p.Logger.Info("redis address not set, webhook dedupe relies on order status only")
		return NopDeduper{}
	}

	d := NewRedisDeduper(redis.NewClient(&redis.Options{
		Addr:     p.Config.RedisAddress,
		Password: p.Config.RedisPassword,
	}), p.Config.WebhookDedupeTTL)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := d.client.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis unreachable, webhook dedupe will fail open", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return d.Close()
		},
	})
	return d
}
