package service

import (
	"context"
	"fmt"
	"math"

	"lnmarkets_bot/internal/models"
	healthsvc "lnmarkets_bot/internal/modules/health/service"
	"lnmarkets_bot/pkg/logger"
)

// runMarginPhase — фаза A: margin call по каждой убыточной позиции (FIFO),
// затем один swap USD→BTC на всю долитую сумму. Ошибка по одной позиции
// не останавливает остальные; откатов нет — margin call необратим.
func (e *Engine) runMarginPhase(ctx context.Context, cy *cycle) error {
	positions, err := e.client.GetRunningPositions(ctx)
	if err != nil {
		// без списка позиций цикл продолжать нельзя
		return fmt.Errorf("get running positions: %w", err)
	}
	cy.running = positions

	snap := cy.snap
	for _, p := range positions {
		if p.Leverage <= 1 || p.Margin <= 0 {
			continue
		}
		if p.LossPercent() > snap.MaxLossPercent {
			continue
		}

		callAmount := snap.AddMarginUSD.MulSatoshi(cy.oneUSDInSats)

		// сколько маржи позиция вообще может принять
		headroom := models.Satoshi(int64(math.Floor(
			models.SatsPerBTC/p.EntryPrice.Float64()*p.Quantity.Float64(),
		))) - p.Margin
		if headroom <= 0 {
			logger.Warn("cycle %s: position %s has no margin headroom, skip", cy.id, p.ID)
			continue
		}
		if callAmount > headroom {
			logger.Warn("cycle %s: margin call %s clamped %s -> %s", cy.id, p.ID, callAmount, headroom)
			callAmount = headroom
		}

		if callAmount > cy.localBalance {
			// частично не доливаем
			logger.Warn("cycle %s: insufficient balance %s for margin call %s (%s), skip",
				cy.id, cy.localBalance, p.ID, callAmount)
			continue
		}

		if err := e.client.AddMargin(ctx, p.ID, callAmount); err != nil {
			logger.Error("cycle %s: add margin %s: %v", cy.id, p.ID, err)
			healthsvc.IncMarginCall("error")
			continue
		}

		cy.localBalance -= callAmount
		cy.totalAddedSats += callAmount
		cy.totalAddedUSD += models.DollarFromCents(int64(callAmount) * 100 / int64(cy.oneUSDInSats))

		healthsvc.IncMarginCall("ok")
		logger.Info("cycle %s: margin call %s: +%s (loss %.1f%%)", cy.id, p.ID, callAmount, p.LossPercent())
		e.record(ctx, cy.id, "margin_call", fmt.Sprintf("position=%s amount=%s", p.ID, callAmount))
		e.notifyf("🛟 Margin call: +%s в позицию %s (убыток %.1f%%)", callAmount, p.ID, p.LossPercent())
	}

	if cy.totalAddedUSD > 0 && cy.syntheticUSD >= cy.totalAddedUSD {
		if err := e.client.SwapUSDToBTC(ctx, cy.totalAddedUSD); err != nil {
			// маржа уже долита, откатывать нечего
			logger.Error("cycle %s: swap %s USD failed: %v", cy.id, cy.totalAddedUSD, err)
			healthsvc.IncSwap("error")
		} else {
			cy.localBalance += cy.totalAddedSats
			cy.syntheticUSD -= cy.totalAddedUSD
			healthsvc.IncSwap("ok")
			logger.Info("cycle %s: swapped %s USD -> %s", cy.id, cy.totalAddedUSD, cy.totalAddedSats)
			e.record(ctx, cy.id, "swap", fmt.Sprintf("usd=%s sats=%s", cy.totalAddedUSD, cy.totalAddedSats))
		}
	}

	return nil
}
