package lnmarkets_client

import (
	"lnmarkets_bot/internal/modules/lnmarkets_client/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("lnmarkets_client",
		fx.Provide(
			service.NewClient,
		),
	)
}
