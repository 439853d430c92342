package postgres

import (
	"context"

	"lnmarkets_bot/internal/modules/config"
	"lnmarkets_bot/pkg/db"
	"lnmarkets_bot/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Module отдаёт пул постгреса. Без DSN возвращаем nil —
// журнал решений тогда просто выключен.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					logger.Warn("db_dsn is not set, decision journal disabled")
					return nil, nil
				}

				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, errors.Wrap(err, "failed to create poolMaster")
				}

				if err = poolMaster.Ping(ctx); err != nil {
					return nil, errors.Wrap(err, "failed to ping postgres")
				}

				return db.NewPgTxManager(poolMaster), nil
			},
		),
	)
}
