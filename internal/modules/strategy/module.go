package strategy

import (
	"go.uber.org/fx"

	"signal_engine/internal/modules/strategy/service"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			service.NewAggregatorFromConfig, // *service.Aggregator
		),
	)
}
