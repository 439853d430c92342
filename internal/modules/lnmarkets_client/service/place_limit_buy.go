package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lnmarkets_bot/internal/models"

	"github.com/bytedance/sonic"
)

// PlaceLimitBuy ставит лимитный buy с takeprofit на бирже.
func (c *Client) PlaceLimitBuy(
	ctx context.Context,
	price, exitPrice models.Dollar,
	leverage int,
	quantity models.Dollar,
) error {
	if price <= 0 || exitPrice <= 0 {
		return fmt.Errorf("PlaceLimitBuy: price/exitPrice <= 0")
	}
	if leverage <= 0 {
		return fmt.Errorf("PlaceLimitBuy: leverage <= 0")
	}
	if quantity <= 0 {
		return fmt.Errorf("PlaceLimitBuy: quantity <= 0")
	}

	body := map[string]any{
		"type":       "l",
		"side":       "b",
		"price":      price.Float64(),
		"takeprofit": exitPrice.Float64(),
		"leverage":   leverage,
		"quantity":   quantity.Float64(),
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("PlaceLimitBuy marshal: %w", err)
	}

	data, err := c.doSigned(ctx, http.MethodPost, "/v2/futures", string(payload))
	if err != nil {
		return fmt.Errorf("PlaceLimitBuy @ %s: %w", price, err)
	}

	var r futuresTradeResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("PlaceLimitBuy decode: %w; body=%s", err, string(data))
	}
	if r.ID == "" {
		return fmt.Errorf("PlaceLimitBuy: empty trade id RAW=%s", string(data))
	}
	return nil
}
