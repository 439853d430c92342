package service

import (
	"context"

	"lnmarkets_bot/pkg/db"
	"lnmarkets_bot/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const insertSQL = `
INSERT INTO decision_log (cycle_id, action, detail)
VALUES ($1, $2, $3)`

// Journal пишет протокол решений в постгрес. Best-effort:
// запись не должна влиять на торговый цикл, ошибки только в лог.
type Journal struct {
	db *db.PgTxManager
}

func NewJournal(m *db.PgTxManager) *Journal {
	return &Journal{db: m}
}

func (j *Journal) Record(ctx context.Context, cycleID, action, detail string) {
	if j == nil || j.db == nil {
		return
	}

	err := j.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, insertSQL, cycleID, action, detail)
		return err
	})
	if err != nil {
		logger.Error("%v", errors.Wrap(err, "journal.Record"))
	}
}
