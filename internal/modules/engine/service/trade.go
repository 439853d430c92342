package service

import (
	"context"
	"fmt"
	"math"

	"lnmarkets_bot/internal/calc"
	"lnmarkets_bot/internal/models"
	healthsvc "lnmarkets_bot/internal/modules/health/service"
	"lnmarkets_bot/pkg/logger"
)

// runTradePhase — фаза B: одна лимитка на квантованную цену сетки.
// На каждой ячейке сетки максимум одна running-позиция и одна лимитка.
func (e *Engine) runTradePhase(ctx context.Context, cy *cycle) error {
	snap := cy.snap
	gridPrice := cy.tick.LastPrice.GridFloor(snap.Factor)

	if len(cy.running) >= snap.MaxRunningTrades {
		return nil
	}
	for _, p := range cy.running {
		if p.EntryPrice.GridFloor(snap.Factor) == gridPrice {
			return nil // ячейка занята позицией
		}
	}

	var reserved models.Satoshi
	for _, p := range cy.running {
		reserved += p.Margin + p.MaintenanceMargin
	}
	available := cy.localBalance - reserved
	if available <= cy.oneUSDInSats {
		logger.Info("cycle %s: no free margin (available %s)", cy.id, available)
		return nil
	}

	open, err := e.client.GetOpenOrders(ctx)
	if err != nil {
		return fmt.Errorf("get open orders: %w", err)
	}
	for _, o := range open {
		if o.EntryPrice.GridFloor(snap.Factor) == gridPrice {
			return nil // ячейка занята лимиткой
		}
	}

	var exitPrice models.Dollar
	if snap.TargetNetPLSats == nil {
		exitPrice = gridPrice + snap.TakeprofitUSD
	} else {
		px, err := calc.ExitPriceForTargetNetPL(
			snap.QuantityUSD,
			gridPrice,
			snap.Leverage,
			calc.FeeRate(cy.account.FeeTier),
			*snap.TargetNetPLSats,
			models.Buy,
		)
		if err != nil {
			return err
		}
		// шаг цены биржи $0.5, округляем только вверх
		exitPrice = px.RoundUpToHalf()
	}

	if exitPrice >= snap.MaxTakeprofitPrice {
		logger.Info("cycle %s: exit %s above max takeprofit %s, skip", cy.id, exitPrice, snap.MaxTakeprofitPrice)
		return nil
	}

	requiredMargin := models.Satoshi(int64(math.Ceil(
		models.SatsPerBTC / gridPrice.Float64() * snap.QuantityUSD.Float64() / float64(snap.Leverage),
	)))
	if requiredMargin > available {
		logger.Info("cycle %s: required margin %s > available %s, skip", cy.id, requiredMargin, available)
		return nil
	}

	// чистим старые лимитки; неудачный cancel не блокирует постановку
	for _, o := range open {
		if err := e.client.CancelOrder(ctx, o.ID); err != nil {
			logger.Error("cycle %s: cancel %s: %v", cy.id, o.ID, err)
			continue
		}
		healthsvc.IncCancel()
	}

	if err := e.client.PlaceLimitBuy(ctx, gridPrice, exitPrice, snap.Leverage, snap.QuantityUSD); err != nil {
		logger.Error("cycle %s: place limit buy @ %s: %v", cy.id, gridPrice, err)
		healthsvc.IncOrderPlaced("error")
		return nil
	}

	healthsvc.IncOrderPlaced("ok")
	logger.Info("cycle %s: limit buy @ %s, tp %s, lev %dx, qty %s",
		cy.id, gridPrice, exitPrice, snap.Leverage, snap.QuantityUSD)
	e.record(ctx, cy.id, "place_order",
		fmt.Sprintf("price=%s exit=%s leverage=%d quantity=%s", gridPrice, exitPrice, snap.Leverage, snap.QuantityUSD))
	e.notifyf("📌 Лимитка BUY @ %s | TP %s | lev %dx | qty $%s", gridPrice, exitPrice, snap.Leverage, snap.QuantityUSD)

	return nil
}
