package models

import "time"

type Side string

const (
	Buy  Side = "b"
	Sell Side = "s"
)

type TradeState string

const (
	StateOpen     TradeState = "open"    // лимитка ждёт исполнения
	StateRunning  TradeState = "running" // позиция в рынке
	StateClosed   TradeState = "closed"
	StateCanceled TradeState = "canceled"
)

// PriceTick — одно сообщение фида. Создаётся транспортом, неизменяемо.
type PriceTick struct {
	Time          time.Time
	LastPrice     Dollar
	TickDirection string
}

// Account — снапшот счёта на бирже. Движок держит локально
// мутируемую копию в пределах одного цикла.
type Account struct {
	Balance      Satoshi // on-chain sats balance
	SyntheticUSD Dollar  // synthetic USD balance
	FeeTier      int     // 0..3
}

// Position — running-позиция или pending-ордер на LN Markets.
// Владеет им биржа, движок меняет его только через API.
type Position struct {
	ID                string
	Side              Side
	EntryPrice        Dollar
	Quantity          Dollar // USD notional
	Leverage          int
	Margin            Satoshi
	MaintenanceMargin Satoshi
	PL                Satoshi
	LiquidationPrice  Dollar
	OpeningFee        Satoshi
	ClosingFee        Satoshi
	State             TradeState
}

// LossPercent = pl / margin * 100. Отрицательное значение — убыток.
func (p Position) LossPercent() float64 {
	if p.Margin == 0 {
		return 0
	}
	return float64(p.PL) / float64(p.Margin) * 100
}
