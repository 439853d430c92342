package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"lnmarkets_bot/internal/models"
)

// GetRunningPositions — позиции в рынке.
func (c *Client) GetRunningPositions(ctx context.Context) ([]models.Position, error) {
	return c.getTrades(ctx, "running")
}

// GetOpenOrders — лимитки, ждущие исполнения.
func (c *Client) GetOpenOrders(ctx context.Context) ([]models.Position, error) {
	return c.getTrades(ctx, "open")
}

func (c *Client) getTrades(ctx context.Context, tradeType string) ([]models.Position, error) {
	data, err := c.doSigned(ctx, http.MethodGet, "/v2/futures", "type="+tradeType)
	if err != nil {
		return nil, fmt.Errorf("getTrades %s: %w", tradeType, err)
	}

	var rs []futuresTradeResponse
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("getTrades %s decode: %w; body=%s", tradeType, err, string(data))
	}

	positions := make([]models.Position, 0, len(rs))
	for _, r := range rs {
		p, err := r.toPosition()
		if err != nil {
			return nil, fmt.Errorf("getTrades %s: %w", tradeType, err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}
