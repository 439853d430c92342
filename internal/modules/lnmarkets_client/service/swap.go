package service

import (
	"context"
	"fmt"
	"net/http"

	"lnmarkets_bot/internal/models"

	"github.com/bytedance/sonic"
)

// SwapUSDToBTC конвертирует synthetic USD обратно в sats-баланс.
func (c *Client) SwapUSDToBTC(ctx context.Context, amount models.Dollar) error {
	if amount <= 0 {
		return fmt.Errorf("SwapUSDToBTC: amount <= 0")
	}

	body := map[string]any{
		"in_asset":  "USD",
		"out_asset": "BTC",
		"in_amount": amount.Float64(),
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("SwapUSDToBTC marshal: %w", err)
	}

	if _, err := c.doSigned(ctx, http.MethodPost, "/v2/swap", string(payload)); err != nil {
		return fmt.Errorf("SwapUSDToBTC %s: %w", amount, err)
	}
	return nil
}
