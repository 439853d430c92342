package models

import (
	"fmt"
	"math"
)

// Satoshi — нативная единица маржи и P&L, 1e-8 BTC.
// Целые int64, никаких float в бухгалтерии.
type Satoshi int64

// Dollar — цена/нотционал в USD с ровно двумя знаками после запятой,
// хранится в центах. Satoshi и Dollar никогда не взаимозаменяемы:
// только явные конверсии на границах.
type Dollar int64

const dollarScale = 100

// SatsPerBTC — сатоши в одном биткоине.
const SatsPerBTC = 100_000_000

// NewDollarFromFloat parses an external float (API, config) into cents.
// Rejects anything finer than 2 decimal digits instead of rounding it away.
func NewDollarFromFloat(v float64) (Dollar, error) {
	cents := math.Round(v * dollarScale)
	if math.Abs(v*dollarScale-cents) > 1e-6 {
		return 0, fmt.Errorf("dollar amount %v has more than 2 decimal digits", v)
	}
	if cents > math.MaxInt64 || cents < math.MinInt64 {
		return 0, fmt.Errorf("dollar amount %v out of range", v)
	}
	return Dollar(int64(cents)), nil
}

// MustDollar — для конфигов и тестов, где значение заведомо валидно.
func MustDollar(v float64) Dollar {
	d, err := NewDollarFromFloat(v)
	if err != nil {
		panic(err)
	}
	return d
}

// DollarFromFloatRounded rounds to the nearest cent. For feed prices,
// where sub-cent noise is expected and must not stall the stream;
// amounts from config/API go through NewDollarFromFloat.
func DollarFromFloatRounded(v float64) Dollar {
	return Dollar(int64(math.Round(v * dollarScale)))
}

// DollarFromCents wraps a raw cents value.
func DollarFromCents(cents int64) Dollar { return Dollar(cents) }

// DollarFromUSD wraps a whole-dollar value.
func DollarFromUSD(usd int64) Dollar { return Dollar(usd * dollarScale) }

func (d Dollar) Cents() int64    { return int64(d) }
func (d Dollar) Float64() float64 { return float64(d) / dollarScale }

func (d Dollar) IsZero() bool     { return d == 0 }
func (d Dollar) IsPositive() bool { return d > 0 }

// GridFloor квантует цену вниз к ближайшей границе сетки:
// floor(price/factor)*factor. Целочисленно, без дрейфа.
func (d Dollar) GridFloor(factor Dollar) Dollar {
	if factor <= 0 || d < 0 {
		return d
	}
	return d / factor * factor
}

// RoundUpToHalf rounds up to the nearest $0.50 (exchange price increment).
func (d Dollar) RoundUpToHalf() Dollar {
	const half = 50 // cents
	if d >= 0 {
		return (d + half - 1) / half * half
	}
	return d / half * half
}

// MulSatoshi — floor(sats · usd), точная целочисленная версия
// floor(one_usd_in_sats * add_margin_usd).
func (d Dollar) MulSatoshi(s Satoshi) Satoshi {
	return Satoshi(int64(s) * int64(d) / dollarScale)
}

func (d Dollar) String() string {
	c := int64(d)
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/dollarScale, c%dollarScale)
}

func (s Satoshi) String() string { return fmt.Sprintf("%d sat", int64(s)) }

// SatoshiFromFloat rounds a float sats value coming from a formula.
// Boundary-only helper, the engine itself stays integer.
func SatoshiFromFloat(v float64) Satoshi {
	return Satoshi(int64(math.Round(v)))
}
