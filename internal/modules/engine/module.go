package engine

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"

	"signal_engine/internal/models"
	"signal_engine/internal/modules/config"
	"signal_engine/internal/modules/engine/service"
	feedsvc "signal_engine/internal/modules/feed/service"
	healthsvc "signal_engine/internal/modules/health/service"
	journalsvc "signal_engine/internal/modules/journal/service"
	risksvc "signal_engine/internal/modules/risk/service"
	strategysvc "signal_engine/internal/modules/strategy/service"
	"signal_engine/internal/notify"
	"signal_engine/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			func(cfg *config.Config, agg *strategysvc.Aggregator, risk *risksvc.Manager) *service.Orchestrator {
				return service.New(cfg.Engine.BufferCapacity, agg, risk)
			},
		),

		fx.Invoke(func(
			lc fx.Lifecycle,
			o *service.Orchestrator,
			candles <-chan feedsvc.OutCandle,
			j *journalsvc.Journal,
			n notify.Notifier,
			state *healthsvc.State,
			ctx context.Context,
		) {
			o.Subscribe(func(sig models.TradingSignal, order models.Order) {
				if n != nil {
					n.Sendf("order #%d %s %s qty=%.6f @ %.6f sl=%.6f tp=%.6f",
						order.ID, order.Side, order.Instrument,
						order.Quantity, order.Price, order.StopLoss, order.TakeProfit)
				}
				j.RecordDecision(ctx, sig, order)
			})

			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						logger.Info("engine loop started")
						for {
							select {
							case <-ctx.Done():
								logger.Info("engine loop stopped")
								return
							case c, ok := <-candles:
								if !ok {
									logger.Info("engine: candle channel closed")
									return
								}
								state.SetReady(true)
								handleCandle(o, c)
							}
						}
					}()
					return nil
				},
			})
		}),
	)
}

func handleCandle(o *service.Orchestrator, c feedsvc.OutCandle) {
	span := opentracing.StartSpan("engine.on_candle")
	span.SetTag("instrument", c.Instrument)
	defer span.Finish()

	o.OnCandle(c.Instrument, c.Candle)
}
