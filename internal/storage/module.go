package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/yemma/internal/config"
	"github.com/polkiloo/yemma/internal/domain/repository"
	"github.com/polkiloo/yemma/internal/storage/firestore"
	"github.com/polkiloo/yemma/internal/storage/postgres"
)

// Module wires the configured storage driver and its repositories.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.UserDirectory { return f.Users() },
		func(f repository.Factory) repository.CookDirectory { return f.Cooks() },
		func(f repository.Factory) repository.OrderStore { return f.Orders() },
	),
)

type backend interface {
	repository.Factory
	Close() error
}

var (
	openPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (backend, error) {
		st, err := postgres.New(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	openFirestore = func(ctx context.Context, projectID string, logger *slog.Logger) (backend, error) {
		st, err := firestore.New(ctx, projectID, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
)

type factoryParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newFactory(p factoryParams) (repository.Factory, error) {
	var (
		b   backend
		err error
	)
	switch p.Config.StorageDriver {
	case config.StoragePostgres, "":
		b, err = openPostgres(p.Ctx, p.Config.DatabaseURI, p.Logger)
	case config.StorageFirestore:
		b, err = openFirestore(p.Ctx, p.Config.FirestoreProjectID, p.Logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", p.Config.StorageDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", p.Config.StorageDriver, err)
	}

	p.Logger.Info("storage ready", slog.String("driver", p.Config.StorageDriver))
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return b.Close()
		},
	})
	return b, nil
}
