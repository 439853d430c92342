package pricequeue

import (
	"context"
	"time"

	"go.uber.org/fx"

	"lnmarkets_bot/internal/modules/config"
	enginesvc "lnmarkets_bot/internal/modules/engine/service"
	healthsvc "lnmarkets_bot/internal/modules/health/service"
	"lnmarkets_bot/internal/modules/pricequeue/service"
)

const shutdownGrace = 5 * time.Second

func Module() fx.Option {
	return fx.Module("pricequeue",
		fx.Provide(
			func(e *enginesvc.Engine, w *config.Watcher, st *healthsvc.State) *service.Queue {
				return service.New(e, w, st)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, q *service.Queue) {
			var cancel context.CancelFunc
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					runCtx, c := context.WithCancel(context.Background())
					cancel = c
					go q.Run(runCtx)
					return nil
				},
				OnStop: func(_ context.Context) error {
					q.Close()
					cancel()
					q.WaitDone(shutdownGrace)
					return nil
				},
			})
		}),
	)
}
