package stripe

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/yemma/internal/config"
	"github.com/polkiloo/yemma/internal/domain/provider"
)

// Module exposes the Stripe payment provider to fx graph.
var Module = fx.Provide(newPaymentProvider)

type providerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPaymentProvider(p providerParams) provider.PaymentProvider {
	return NewProvider(Options{
		SecretKey:     p.Config.StripeSecretKey,
		WebhookSecret: p.Config.StripeWebhookSecret,
		APIURL:        p.Config.StripeAPIURL,
	}, p.Logger)
}
