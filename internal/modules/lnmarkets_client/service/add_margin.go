package service

import (
	"context"
	"fmt"
	"net/http"

	"lnmarkets_bot/internal/models"

	"github.com/bytedance/sonic"
)

// AddMargin — margin call: долить amount сатоши в позицию.
// Необратимая операция на стороне биржи.
func (c *Client) AddMargin(ctx context.Context, positionID string, amount models.Satoshi) error {
	if amount <= 0 {
		return fmt.Errorf("AddMargin: amount <= 0")
	}

	body := map[string]any{
		"id":     positionID,
		"amount": int64(amount),
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("AddMargin marshal: %w", err)
	}

	if _, err := c.doSigned(ctx, http.MethodPost, "/v2/futures/add-margin", string(payload)); err != nil {
		return fmt.Errorf("AddMargin %s: %w", positionID, err)
	}
	return nil
}
