package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lnmarkets_bot/internal/models"
)

func (c *Client) GetAccount(ctx context.Context) (models.Account, error) {
	data, err := c.doSigned(ctx, http.MethodGet, "/v2/user", "")
	if err != nil {
		return models.Account{}, fmt.Errorf("GetAccount: %w", err)
	}

	var r userResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return models.Account{}, fmt.Errorf("GetAccount decode: %w; body=%s", err, string(data))
	}

	synthetic, err := models.NewDollarFromFloat(r.SyntheticUSDBalance)
	if err != nil {
		return models.Account{}, fmt.Errorf("GetAccount synthetic_usd_balance: %w", err)
	}

	return models.Account{
		Balance:      models.Satoshi(r.Balance),
		SyntheticUSD: synthetic,
		FeeTier:      r.FeeTier,
	}, nil
}
