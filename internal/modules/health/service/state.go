package service

import (
	"sync/atomic"
	"time"

	"lnmarkets_bot/internal/models"
)

// State — атомарный снимок живости бота: очередь крутится, фид подключён,
// когда был последний тик и последний завершённый decision-цикл.
type State struct {
	startedAt time.Time

	ready       atomic.Bool // консьюмер очереди запущен
	wsConnected atomic.Bool

	lastTickUnixMs atomic.Int64 // время последнего принятого тика фида
	lastCycleUnix  atomic.Int64 // время последнего завершённого цикла
	lastPriceCents atomic.Int64 // цена, на которой цикл отработал
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnixMs.Store(t.UnixMilli()) }
func (s *State) LastTick() time.Time {
	ms := s.lastTickUnixMs.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// MarkCycle фиксирует завершённый decision-цикл и его цену.
func (s *State) MarkCycle(price models.Dollar) {
	s.lastCycleUnix.Store(time.Now().Unix())
	s.lastPriceCents.Store(price.Cents())
}

func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) LastPrice() models.Dollar {
	return models.DollarFromCents(s.lastPriceCents.Load())
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
