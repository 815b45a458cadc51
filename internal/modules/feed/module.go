package feed

import (
	"context"

	"go.uber.org/fx"

	"signal_engine/internal/modules/feed/service"
)

func newCandlesChan() chan service.OutCandle {
	return make(chan service.OutCandle, 4096)
}
func asRecvOnlyCandles(ch chan service.OutCandle) <-chan service.OutCandle { return ch }

func Module() fx.Option {
	return fx.Module("feed",
		fx.Provide(
			newCandlesChan,
			asRecvOnlyCandles,
			service.NewClient,
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, out chan service.OutCandle, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					c.Start(ctx, out)
					return nil
				},
			})
		}),
	)
}
