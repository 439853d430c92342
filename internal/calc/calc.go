// Package calc — чистая финансовая математика: P&L, маржа, ликвидация,
// комиссии. Никакого I/O, все функции детерминированы.
package calc

import (
	"errors"
	"fmt"
	"math"

	"lnmarkets_bot/internal/models"
)

// ValidationError — некорректный финансовый вход (баг вызывающего кода,
// в нормальном режиме не возникает).
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a calc validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FeeRate возвращает ставку комиссии по fee tier биржи.
// Неизвестный tier считаем худшим случаем — комиссию в расчёте
// профит-таргета занижать нельзя.
func FeeRate(tier int) float64 {
	switch tier {
	case 1:
		return 0.0008
	case 2:
		return 0.0007
	case 3:
		return 0.0006
	default: // tier 0 и всё неизвестное
		return 0.001
	}
}

func validateTradeInputs(quantity, price models.Dollar) error {
	if quantity <= 0 {
		return validationf("quantity must be positive, got %s", quantity)
	}
	if price <= 0 {
		return validationf("price must be positive, got %s", price)
	}
	return nil
}

// PLSats — P&L позиции в сатоши:
// quantity * (1/entry − 1/current) * 1e8, для sell со знаком минус.
func PLSats(quantity, entry, current models.Dollar, side models.Side) (models.Satoshi, error) {
	if err := validateTradeInputs(quantity, entry); err != nil {
		return 0, err
	}
	if current <= 0 {
		return 0, validationf("current price must be positive, got %s", current)
	}
	return models.SatoshiFromFloat(plFloat(quantity.Float64(), entry.Float64(), current.Float64(), side)), nil
}

func plFloat(quantity, entry, current float64, side models.Side) float64 {
	pl := quantity * (1/entry - 1/current) * models.SatsPerBTC
	if side == models.Sell {
		pl = -pl
	}
	return pl
}

// LiquidationPrice — обратная формула цены:
// 1/entry ± margin/(quantity·1e8), плюс для buy, минус для sell.
func LiquidationPrice(entry, quantity models.Dollar, margin models.Satoshi, side models.Side) (models.Dollar, error) {
	if err := validateTradeInputs(quantity, entry); err != nil {
		return 0, err
	}
	if margin <= 0 {
		return 0, validationf("margin must be positive, got %s", margin)
	}

	inv := 1 / entry.Float64()
	delta := float64(margin) / (quantity.Float64() * models.SatsPerBTC)
	if side == models.Buy {
		inv += delta
	} else {
		inv -= delta
	}
	if inv <= 0 {
		// маржа больше, чем умещается на ценовой оси
		return 0, validationf("degenerate liquidation: inverse price %v <= 0", inv)
	}
	return models.DollarFromCents(int64(math.Round(100 / inv))), nil
}

// FeeSats — комиссия: floor((quantity/price) · rate · 1e8).
func FeeSats(quantity, price models.Dollar, rate float64) (models.Satoshi, error) {
	if err := validateTradeInputs(quantity, price); err != nil {
		return 0, err
	}
	if rate < 0 {
		return 0, validationf("fee rate must be non-negative, got %v", rate)
	}
	return models.Satoshi(int64(feeFloat(quantity.Float64(), price.Float64(), rate))), nil
}

func feeFloat(quantity, price, rate float64) float64 {
	return math.Floor(quantity / price * rate * models.SatsPerBTC)
}

// NewTrade синтезирует полную запись позиции: маржу, maintenance margin (5%),
// P&L, комиссии на входе/выходе и цену ликвидации. Используется и для
// реальных интентов, и для гипотетических сделок внутри поиска exit price.
func NewTrade(
	quantity, entry models.Dollar,
	leverage int,
	side models.Side,
	current models.Dollar,
	state models.TradeState,
	feeRate float64,
) (models.Position, error) {
	if err := validateTradeInputs(quantity, entry); err != nil {
		return models.Position{}, err
	}
	if leverage <= 0 {
		return models.Position{}, validationf("leverage must be positive, got %d", leverage)
	}

	margin := models.Satoshi(int64(math.Floor(
		quantity.Float64() / float64(leverage) * models.SatsPerBTC / entry.Float64(),
	)))

	pl, err := PLSats(quantity, entry, current, side)
	if err != nil {
		return models.Position{}, err
	}
	openFee, err := FeeSats(quantity, entry, feeRate)
	if err != nil {
		return models.Position{}, err
	}
	closeFee, err := FeeSats(quantity, current, feeRate)
	if err != nil {
		return models.Position{}, err
	}
	liq, err := LiquidationPrice(entry, quantity, margin, side)
	if err != nil {
		return models.Position{}, err
	}

	return models.Position{
		Side:              side,
		EntryPrice:        entry,
		Quantity:          quantity,
		Leverage:          leverage,
		Margin:            margin,
		MaintenanceMargin: margin * 5 / 100,
		PL:                pl,
		LiquidationPrice:  liq,
		OpeningFee:        openFee,
		ClosingFee:        closeFee,
		State:             state,
	}, nil
}
