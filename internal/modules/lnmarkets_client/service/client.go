package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"lnmarkets_bot/internal/modules/config"
)

// Client — подписанный REST-клиент LN Markets v2.
// Подпись: base64(hmac-sha256(secret, timestamp+method+path+params)).
type Client struct {
	cfg *config.Config

	http    *http.Client
	baseURL string

	apiKey     string
	apiSecret  string
	passphrase string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		http:       &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.LNMarkets.RestURL,
		apiKey:     cfg.LNMarkets.Key,
		apiSecret:  cfg.LNMarkets.Secret,
		passphrase: cfg.LNMarkets.Passphrase,
	}
}

func (c *Client) sign(ts, method, path, params string) string {
	msg := ts + method + path + params
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// doSigned собирает запрос, подписывает и возвращает тело ответа.
// params: для GET/DELETE — query string без "?", для POST — JSON body.
func (c *Client) doSigned(ctx context.Context, method, path, params string) ([]byte, error) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	sign := c.sign(ts, method, path, params)

	url := c.baseURL + path
	var body io.Reader
	if method == http.MethodGet || method == http.MethodDelete {
		if params != "" {
			url += "?" + params
		}
	} else {
		body = bytes.NewReader([]byte(params))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("LNM-ACCESS-KEY", c.apiKey)
	req.Header.Set("LNM-ACCESS-PASSPHRASE", c.passphrase)
	req.Header.Set("LNM-ACCESS-SIGNATURE", sign)
	req.Header.Set("LNM-ACCESS-TIMESTAMP", ts)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
