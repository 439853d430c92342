package calc

import (
	"math"

	"lnmarkets_bot/internal/models"
)

const (
	searchMaxIterations = 100
	searchToleranceSats = 0.01
)

// ExitPriceForTargetNetPL — бисекция по цене выхода, при которой
// net_pl = pl − opening_fee − closing_fee попадает в target.
//
// Интервал: buy → [entry, 2·entry], sell → [0.5·entry, 1.5·entry].
// Направление половинения опирается на монотонность net P&L по цене выхода
// (растёт для buy, убывает для sell) — перепроверить при изменении
// формул комиссии или маржи.
func ExitPriceForTargetNetPL(
	quantity, entry models.Dollar,
	leverage int,
	feeRate float64,
	target models.Satoshi,
	side models.Side,
) (models.Dollar, error) {
	if err := validateTradeInputs(quantity, entry); err != nil {
		return 0, err
	}
	if leverage <= 0 {
		return 0, validationf("leverage must be positive, got %d", leverage)
	}
	if feeRate < 0 {
		return 0, validationf("fee rate must be non-negative, got %v", feeRate)
	}

	var (
		q = quantity.Float64()
		e = entry.Float64()
	)

	netAt := func(exit float64) float64 {
		return plFloat(q, e, exit, side) - feeFloat(q, e, feeRate) - feeFloat(q, exit, feeRate)
	}

	var lo, hi float64
	if side == models.Buy {
		lo, hi = e, 2*e
	} else {
		lo, hi = 0.5*e, 1.5*e
	}

	tgt := float64(target)
	mid := (lo + hi) / 2
	for i := 0; i < searchMaxIterations; i++ {
		mid = (lo + hi) / 2
		diff := netAt(mid) - tgt
		if math.Abs(diff) <= searchToleranceSats {
			break
		}
		// buy: net растёт с ценой; sell: падает
		if (side == models.Buy) == (diff < 0) {
			lo = mid
		} else {
			hi = mid
		}
	}

	return models.DollarFromCents(int64(math.Round(mid * 100))), nil
}
