// Метрики бота, отдаются на /metrics в текстовом формате Prometheus:
//   • bot_ticks_received_total            — тиков принято от фида
//   • bot_ticks_dropped_total{reason}     — отфильтровано (duplicate|stale|rate_limited|overflow)
//   • bot_cycles_total                    — полных decision-циклов
//   • bot_margin_calls_total{result}      — margin call'ов (ok|error)
//   • bot_swaps_total{result}             — свопов USD→BTC (ok|error)
//   • bot_orders_canceled_total           — снятых лимиток
//   • bot_orders_placed_total{result}     — поставленных лимиток (ok|error)
//   • bot_balance_sats                    — последний известный баланс (gauge)

package service

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxTicksReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ticks_received_total",
			Help: "Price ticks received from the feed",
		},
	)

	mtxTicksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_ticks_dropped_total",
			Help: "Price ticks dropped by queue filters",
		},
		[]string{"reason"}, // duplicate|stale|rate_limited|overflow
	)

	mtxCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Completed decision cycles",
		},
	)

	mtxMarginCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_margin_calls_total",
			Help: "Margin calls by result",
		},
		[]string{"result"},
	)

	mtxSwaps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_swaps_total",
			Help: "USD to BTC swaps by result",
		},
		[]string{"result"},
	)

	mtxCancels = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_orders_canceled_total",
			Help: "Open orders canceled",
		},
	)

	mtxOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_placed_total",
			Help: "Limit orders placed by result",
		},
		[]string{"result"},
	)

	mtxBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_balance_sats",
			Help: "Last known account balance in sats",
		},
	)
)

func init() {
	prometheus.MustRegister(mtxTicksReceived, mtxTicksDropped, mtxCycles)
	prometheus.MustRegister(mtxMarginCalls, mtxSwaps, mtxCancels, mtxOrders)
	prometheus.MustRegister(mtxBalance)
}

func IncTickReceived()            { mtxTicksReceived.Inc() }
func IncTickDropped(reason string) { mtxTicksDropped.WithLabelValues(reason).Inc() }
func IncCycle()                   { mtxCycles.Inc() }
func IncMarginCall(result string) { mtxMarginCalls.WithLabelValues(result).Inc() }
func IncSwap(result string)       { mtxSwaps.WithLabelValues(result).Inc() }
func IncCancel()                  { mtxCancels.Inc() }
func IncOrderPlaced(result string) { mtxOrders.WithLabelValues(result).Inc() }
func SetBalanceSats(v int64)      { mtxBalance.Set(float64(v)) }
