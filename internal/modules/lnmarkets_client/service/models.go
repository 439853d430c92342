package service

import (
	"fmt"

	"lnmarkets_bot/internal/models"
)

type userResponse struct {
	UID                 string  `json:"uid"`
	Balance             int64   `json:"balance"` // sats
	SyntheticUSDBalance float64 `json:"synthetic_usd_balance"`
	FeeTier             int     `json:"fee_tier"`
}

type futuresTradeResponse struct {
	ID                string  `json:"id"`
	Side              string  `json:"side"` // "b"/"s"
	Price             float64 `json:"price"`
	EntryPrice        float64 `json:"entry_price"`
	Quantity          float64 `json:"quantity"`
	Leverage          int     `json:"leverage"`
	Margin            int64   `json:"margin"`
	MaintenanceMargin int64   `json:"maintenance_margin"`
	PL                int64   `json:"pl"`
	Liquidation       float64 `json:"liquidation"`
	OpeningFee        int64   `json:"opening_fee"`
	ClosingFee        int64   `json:"closing_fee"`
	Open              bool    `json:"open"`
	Running           bool    `json:"running"`
	Canceled          bool    `json:"canceled"`
	Closed            bool    `json:"closed"`
}

func (r futuresTradeResponse) toPosition() (models.Position, error) {
	// у pending-ордера entry_price ещё нулевой, берём лимитную цену
	rawEntry := r.EntryPrice
	if rawEntry == 0 {
		rawEntry = r.Price
	}
	entry, err := models.NewDollarFromFloat(rawEntry)
	if err != nil {
		return models.Position{}, fmt.Errorf("trade %s entry_price: %w", r.ID, err)
	}
	quantity, err := models.NewDollarFromFloat(r.Quantity)
	if err != nil {
		return models.Position{}, fmt.Errorf("trade %s quantity: %w", r.ID, err)
	}
	liq, err := models.NewDollarFromFloat(r.Liquidation)
	if err != nil {
		return models.Position{}, fmt.Errorf("trade %s liquidation: %w", r.ID, err)
	}

	state := models.StateClosed
	switch {
	case r.Running:
		state = models.StateRunning
	case r.Open:
		state = models.StateOpen
	case r.Canceled:
		state = models.StateCanceled
	}

	return models.Position{
		ID:                r.ID,
		Side:              models.Side(r.Side),
		EntryPrice:        entry,
		Quantity:          quantity,
		Leverage:          r.Leverage,
		Margin:            models.Satoshi(r.Margin),
		MaintenanceMargin: models.Satoshi(r.MaintenanceMargin),
		PL:                models.Satoshi(r.PL),
		LiquidationPrice:  liq,
		OpeningFee:        models.Satoshi(r.OpeningFee),
		ClosingFee:        models.Satoshi(r.ClosingFee),
		State:             state,
	}, nil
}
