package service

import (
	"context"

	"lnmarkets_bot/internal/calc"
	"lnmarkets_bot/internal/models"
	"lnmarkets_bot/internal/modules/config"
	healthsvc "lnmarkets_bot/internal/modules/health/service"
	"lnmarkets_bot/pkg/logger"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

// ExchangeClient — граница, через которую движок разговаривает с биржей.
// Любая ошибка трактуется как "этой попытки не было", ретраев нет.
type ExchangeClient interface {
	GetAccount(ctx context.Context) (models.Account, error)
	GetRunningPositions(ctx context.Context) ([]models.Position, error)
	GetOpenOrders(ctx context.Context) ([]models.Position, error)
	AddMargin(ctx context.Context, positionID string, amount models.Satoshi) error
	SwapUSDToBTC(ctx context.Context, amount models.Dollar) error
	CancelOrder(ctx context.Context, orderID string) error
	PlaceLimitBuy(ctx context.Context, price, exitPrice models.Dollar, leverage int, quantity models.Dollar) error
}

// SnapshotProvider отдаёт актуальный конфиг-снапшот (читается раз на цикл).
type SnapshotProvider interface {
	Snapshot() *config.Snapshot
}

type Notifier interface {
	Sendf(format string, args ...any)
}

// Journal — best-effort протокол решений; ошибки записи только логируются.
type Journal interface {
	Record(ctx context.Context, cycleID, action, detail string)
}

// Engine — двухфазный движок решений. Один вызов HandlePriceUpdate —
// один полный независимый цикл над свежим снапшотом счёта.
type Engine struct {
	client  ExchangeClient
	cfg     SnapshotProvider
	n       Notifier
	journal Journal
}

func New(client ExchangeClient, cfg SnapshotProvider, n Notifier, journal Journal) *Engine {
	return &Engine{
		client:  client,
		cfg:     cfg,
		n:       n,
		journal: journal,
	}
}

// cycle — локальная бухгалтерия одного цикла. Живёт от тика до возврата,
// следующий цикл начинает с чистого снапшота биржи.
type cycle struct {
	id   string
	tick models.PriceTick
	snap *config.Snapshot

	account      models.Account
	localBalance models.Satoshi
	syntheticUSD models.Dollar
	oneUSDInSats models.Satoshi

	running []models.Position

	totalAddedUSD  models.Dollar
	totalAddedSats models.Satoshi
}

// HandlePriceUpdate — один цикл: pause-гейт, свежий счёт, фаза A (маржа),
// фаза B (сетка). ValidationError из calc — баг, цикл прерывается;
// ошибки биржи локальны для вызова.
func (e *Engine) HandlePriceUpdate(ctx context.Context, tick models.PriceTick) error {
	snap := e.cfg.Snapshot()
	if snap.Paused {
		return nil
	}

	span := opentracing.GlobalTracer().StartSpan("decision_cycle")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	cy := &cycle{
		id:   uuid.NewString(),
		tick: tick,
		snap: snap,
	}
	span.SetTag("cycle_id", cy.id)
	span.SetTag("price", tick.LastPrice.String())

	account, err := e.client.GetAccount(ctx)
	if err != nil {
		logger.Error("cycle %s: get account: %v", cy.id, err)
		return nil
	}
	healthsvc.SetBalanceSats(int64(account.Balance))
	if account.Balance == 0 {
		logger.Warn("cycle %s: zero balance, skip", cy.id)
		e.notifyf("⚠️ Баланс 0 sats, торговля стоит")
		return nil
	}

	cy.account = account
	cy.localBalance = account.Balance
	cy.syntheticUSD = account.SyntheticUSD
	cy.oneUSDInSats = models.SatoshiFromFloat(models.SatsPerBTC / tick.LastPrice.Float64())

	if err := e.runMarginPhase(ctx, cy); err != nil {
		if calc.IsValidation(err) {
			logger.Error("BUG cycle %s: margin phase validation: %v", cy.id, err)
			return err
		}
		logger.Error("cycle %s: margin phase: %v", cy.id, err)
		return nil
	}

	if err := e.runTradePhase(ctx, cy); err != nil {
		if calc.IsValidation(err) {
			logger.Error("BUG cycle %s: trade phase validation: %v", cy.id, err)
			return err
		}
		logger.Error("cycle %s: trade phase: %v", cy.id, err)
		return nil
	}

	return nil
}

func (e *Engine) notifyf(format string, args ...any) {
	if e.n != nil {
		e.n.Sendf(format, args...)
	}
}

func (e *Engine) record(ctx context.Context, cycleID, action, detail string) {
	if e.journal != nil {
		e.journal.Record(ctx, cycleID, action, detail)
	}
}
