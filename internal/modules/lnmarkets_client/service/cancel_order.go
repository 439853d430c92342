package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

// CancelOrder снимает pending-лимитку.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	body := map[string]string{"id": orderID}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return fmt.Errorf("CancelOrder marshal: %w", err)
	}

	if _, err := c.doSigned(ctx, http.MethodPost, "/v2/futures/cancel", string(payload)); err != nil {
		return fmt.Errorf("CancelOrder %s: %w", orderID, err)
	}
	return nil
}
