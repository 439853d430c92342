package service

import (
	"context"
	"sync/atomic"
	"time"

	"lnmarkets_bot/internal/models"
	"lnmarkets_bot/internal/modules/config"
	healthsvc "lnmarkets_bot/internal/modules/health/service"
	"lnmarkets_bot/pkg/logger"
)

// Handler — движок решений. Вызов ожидается до конца: циклы не
// перекрываются никогда.
type Handler interface {
	HandlePriceUpdate(ctx context.Context, tick models.PriceTick) error
}

type SnapshotProvider interface {
	Snapshot() *config.Snapshot
}

const queueCapacity = 4096

// Queue превращает бурный поток тиков в сериализованный поток
// decision-циклов: дедуп, отсев устаревших, rate limit. Один фоновый
// консьюмер, продьюсеры только аппендят.
type Queue struct {
	handler Handler
	cfg     SnapshotProvider
	state   *healthsvc.State

	ticks  chan models.PriceTick
	closed atomic.Bool
	done   chan struct{}

	// трогает только консьюмер, локов не нужно
	lastPrice    models.Dollar
	hasLast      bool
	lastDispatch time.Time

	now func() time.Time
}

func New(handler Handler, cfg SnapshotProvider, state *healthsvc.State) *Queue {
	return &Queue{
		handler: handler,
		cfg:     cfg,
		state:   state,
		ticks:   make(chan models.PriceTick, queueCapacity),
		done:    make(chan struct{}),
		now:     time.Now,
	}
}

// Submit — неблокирующая постановка тика. После начала shutdown
// тики молча отбрасываются.
func (q *Queue) Submit(tick models.PriceTick) {
	if q.closed.Load() {
		return
	}
	healthsvc.IncTickReceived()
	select {
	case q.ticks <- tick:
	default:
		healthsvc.IncTickDropped("overflow")
	}
}

// Close запрещает новые Submit. Сам цикл гасится отменой контекста Run.
func (q *Queue) Close() {
	q.closed.Store(true)
}

// WaitDone ждёт завершения in-flight цикла не дольше grace.
func (q *Queue) WaitDone(grace time.Duration) {
	select {
	case <-q.done:
	case <-time.After(grace):
		logger.Warn("price queue: grace period expired, abandoning in-flight cycle")
	}
}

// Run — единственный консьюмер. Фильтры отбрасывают тик и идут дальше,
// ошибкой это не считается.
func (q *Queue) Run(ctx context.Context) {
	defer close(q.done)

	if q.state != nil {
		q.state.SetReady(true)
		defer q.state.SetReady(false)
	}

	for {
		var tick models.PriceTick
		select {
		case <-ctx.Done():
			return
		case tick = <-q.ticks:
		}

		snap := q.cfg.Snapshot()

		// 1. дубль последней успешно отправленной цены
		if q.hasLast && tick.LastPrice == q.lastPrice {
			healthsvc.IncTickDropped("duplicate")
			continue
		}
		if ctx.Err() != nil {
			return
		}

		// 2. устаревшее сообщение
		if q.now().Sub(tick.Time) >= snap.MessageTimeout {
			healthsvc.IncTickDropped("stale")
			continue
		}
		if ctx.Err() != nil {
			return
		}

		// 3. rate limit между decision-циклами
		if !q.lastDispatch.IsZero() && q.now().Sub(q.lastDispatch) < snap.MinCallInterval {
			healthsvc.IncTickDropped("rate_limited")
			continue
		}

		if q.state != nil {
			q.state.TouchTick(tick.Time)
		}

		if err := q.handler.HandlePriceUpdate(ctx, tick); err != nil {
			// ошибка цикла не валит очередь
			logger.Error("decision cycle @ %s: %v", tick.LastPrice, err)
		}
		healthsvc.IncCycle()
		if q.state != nil {
			q.state.MarkCycle(tick.LastPrice)
		}

		// обновляем только после возврата цикла
		q.lastPrice = tick.LastPrice
		q.hasLast = true
		q.lastDispatch = q.now()
	}
}
