package lnmarkets_websocket

import (
	"context"

	"go.uber.org/fx"

	"lnmarkets_bot/internal/modules/config"
	healthsvc "lnmarkets_bot/internal/modules/health/service"
	"lnmarkets_bot/internal/modules/lnmarkets_websocket/service"
	queuesvc "lnmarkets_bot/internal/modules/pricequeue/service"
)

func Module() fx.Option {
	return fx.Module("lnmarkets_websocket",
		fx.Provide(
			func(cfg *config.Config, q *queuesvc.Queue, st *healthsvc.State) *service.Client {
				return service.NewClient(cfg, q, st)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client) {
			var cancel context.CancelFunc
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					runCtx, cc := context.WithCancel(context.Background())
					cancel = cc
					go c.Run(runCtx)
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
