package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"signal_engine/internal/modules/config"
	"signal_engine/internal/modules/engine"
	"signal_engine/internal/modules/feed"
	"signal_engine/internal/modules/health"
	"signal_engine/internal/modules/journal"
	"signal_engine/internal/modules/risk"
	"signal_engine/internal/modules/strategy"
	"signal_engine/internal/notify"
	"signal_engine/pkg/logger"
	"signal_engine/pkg/tracing"
)

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),

		// логгер и трейсер поднимаем до остальных Invoke,
		// конструкторы модулей уже пишут в лог
		fx.Invoke(func(cfg *config.Config) error {
			logger.SetServiceName(cfg.Service.Name)
			if err := logger.Init(cfg.Service.LogLevel); err != nil {
				return err
			}

			if cfg.Jaeger.Host != "" {
				tracing.SetServiceName(cfg.Service.Name)
				if _, _, err := tracing.InitTracer(tracing.Config{
					Host: cfg.Jaeger.Host,
					Port: cfg.Jaeger.Port,
				}); err != nil {
					logger.Error("tracing init: %v", err)
				}
			}
			return nil
		}),

		strategy.Module(),
		risk.Module(),
		engine.Module(),
		feed.Module(),
		journal.Module(),
		notify.Module(),
		health.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
