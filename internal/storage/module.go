package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderservice/internal/config"
	"github.com/polkiloo/orderservice/internal/domain/repository"
	"github.com/polkiloo/orderservice/internal/storage/memory"
	"github.com/polkiloo/orderservice/internal/storage/postgres"
)

// Module provides the order repository selected by STORAGE_DRIVER.
var Module = fx.Provide(newRepositories)

type params struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

type repositories struct {
	fx.Out

	Orders repository.OrderRepository
	Health repository.HealthChecker
}

func newRepositories(p params) (repositories, error) {
	if p.Config.StorageDriver == config.StorageDriverMemory {
		p.Logger.Info("using in-memory order storage")
		s := memory.New()
		return repositories{Orders: s, Health: s}, nil
	}

	s, err := postgres.Provide(postgres.Params{
		Ctx:       p.Ctx,
		Lifecycle: p.Lifecycle,
		Config:    p.Config,
		Logger:    p.Logger,
	})
	if err != nil {
		return repositories{}, err
	}
	p.Logger.Info("using postgres order storage")
	return repositories{Orders: s.Orders(), Health: s}, nil
}
