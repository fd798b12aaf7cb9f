package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/yemma/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newPaymentOptions,
	NewAuthUseCase,
	NewPaymentUseCase,
	NewWebhookUseCase,
	NewOrderUseCase,
	NewProfileUseCase,
	NewCatalogUseCase,
)

func newPaymentOptions(cfg *config.Config) PaymentOptions {
	return PaymentOptions{DefaultCurrency: cfg.Currency}
}
