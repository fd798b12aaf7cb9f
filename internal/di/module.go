package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/yemma/internal/adapter/dedupe"
	"github.com/polkiloo/yemma/internal/adapter/expo"
	"github.com/polkiloo/yemma/internal/adapter/stripe"
	"github.com/polkiloo/yemma/internal/app"
	"github.com/polkiloo/yemma/internal/config"
	"github.com/polkiloo/yemma/internal/logger"
	"github.com/polkiloo/yemma/internal/pkg/auth"
	"github.com/polkiloo/yemma/internal/server/http/router"
	"github.com/polkiloo/yemma/internal/storage"
	"github.com/polkiloo/yemma/internal/usecase"
	"github.com/polkiloo/yemma/internal/worker"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		storage.Module,
		stripe.Module,
		expo.Module,
		dedupe.Module,
		worker.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
