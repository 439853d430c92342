package main

import (
	"context"
	"log"

	"lnmarkets_bot/internal/modules/config"
	"lnmarkets_bot/internal/modules/engine"
	"lnmarkets_bot/internal/modules/health"
	"lnmarkets_bot/internal/modules/journal"
	lnclient "lnmarkets_bot/internal/modules/lnmarkets_client"
	lnws "lnmarkets_bot/internal/modules/lnmarkets_websocket"
	"lnmarkets_bot/internal/modules/postgres"
	"lnmarkets_bot/internal/modules/pricequeue"
	telegram "lnmarkets_bot/internal/modules/telegram_bot"
	"lnmarkets_bot/pkg/logger"
	"lnmarkets_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("lnmarkets_bot")
	tracing.SetServiceName("lnmarkets_bot")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		journal.Module(),
		lnclient.Module(),
		engine.Module(),
		pricequeue.Module(),
		lnws.Module(),
		telegram.Module(),
		health.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					closer()
					return nil
				},
			})
			return nil
		}),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
