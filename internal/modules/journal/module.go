package journal

import (
	"lnmarkets_bot/internal/modules/journal/service"
	"lnmarkets_bot/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			func(m *db.PgTxManager) *service.Journal {
				return service.NewJournal(m)
			},
		),
	)
}
