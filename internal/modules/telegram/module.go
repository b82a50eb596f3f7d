package telegram

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"copy_bot/internal/modules/config"
	"copy_bot/internal/notify"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger) notify.Notifier {
				if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
					return notify.Noop{}
				}
				t, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
				if err != nil {
					// нотификации не стоят рестарта бота
					log.Warn("telegram init failed, notifications disabled", zap.Error(err))
					return notify.Noop{}
				}
				return t
			},
		),
	)
}
