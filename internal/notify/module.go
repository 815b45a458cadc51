package notify

import (
	"go.uber.org/fx"

	"signal_engine/internal/modules/config"
	"signal_engine/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config) (Notifier, error) {
				if cfg.Telegram.Token == "" {
					return NewStdout(), nil
				}
				tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
				if err != nil {
					logger.Error("notify: telegram init failed, falling back to stdout: %v", err)
					return NewStdout(), nil
				}
				return tg, nil
			},
		),
	)
}
