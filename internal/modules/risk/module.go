package risk

import (
	"go.uber.org/fx"

	"signal_engine/internal/modules/config"
	"signal_engine/internal/modules/risk/service"
)

func Module() fx.Option {
	return fx.Module("risk",
		fx.Provide(
			func(cfg *config.Config) (*service.Manager, error) {
				return service.NewManager(cfg.Risk)
			},
		),
	)
}
