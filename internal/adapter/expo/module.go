package expo

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/yemma/internal/config"
)

// Module exposes the push client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*HTTPClient, error) {
	return NewHTTPClient(p.Config.ExpoPushURL, p.Config.ExpoAccessToken, p.Logger)
}
