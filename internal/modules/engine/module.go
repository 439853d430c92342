package engine

import (
	"lnmarkets_bot/internal/modules/config"
	"lnmarkets_bot/internal/modules/engine/service"
	journalsvc "lnmarkets_bot/internal/modules/journal/service"
	lnsvc "lnmarkets_bot/internal/modules/lnmarkets_client/service"
	"lnmarkets_bot/internal/notify"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			func(c *lnsvc.Client, w *config.Watcher, n notify.Notifier, j *journalsvc.Journal) *service.Engine {
				return service.New(c, w, n, j)
			},
		),
	)
}
