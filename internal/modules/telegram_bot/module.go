package telegram

import (
	"context"

	"lnmarkets_bot/internal/modules/config"
	lnsvc "lnmarkets_bot/internal/modules/lnmarkets_client/service"
	"lnmarkets_bot/internal/notify"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			func(cfg *config.Config, ln *lnsvc.Client) (notify.Notifier, error) {
				return notify.NewFromConfig(cfg, ln)
			},
		),
		// Запуск long-polling через Lifecycle, только для реального бота.
		fx.Invoke(
			func(lc fx.Lifecycle, n notify.Notifier) {
				t, ok := n.(*notify.Telegram)
				if !ok {
					return
				}
				var cancel context.CancelFunc
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						runCtx, cc := context.WithCancel(context.Background())
						cancel = cc
						return t.Start(runCtx)
					},
					OnStop: func(_ context.Context) error {
						cancel()
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
