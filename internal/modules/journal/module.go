package journal

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"signal_engine/internal/modules/config"
	"signal_engine/internal/modules/journal/service"
	"signal_engine/pkg/db"
)

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*service.Journal, error) {
				if cfg.DB == "" {
					// без DSN решения просто не журналируются
					return service.NewJournal(nil), nil
				}

				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				if err := poolMaster.Ping(ctx); err != nil {
					return nil, err
				}

				return service.NewJournal(db.NewPgTxManager(poolMaster)), nil
			},
		),
	)
}
