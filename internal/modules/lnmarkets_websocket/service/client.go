package service

import (
	"context"
	"time"

	"lnmarkets_bot/internal/models"
	"lnmarkets_bot/internal/modules/config"
	healthsvc "lnmarkets_bot/internal/modules/health/service"
	"lnmarkets_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const lastPriceChannel = "futures:btc_usd:last-price"

// Sink — куда складываем тики (очередь цен).
type Sink interface {
	Submit(tick models.PriceTick)
}

// Client — WebSocket-фид LN Markets: подписка на last-price,
// реконнект с паузой в секунду, keepalive ping.
type Client struct {
	cfg   *config.Config
	sink  Sink
	state *healthsvc.State

	wsDialer *websocket.Dialer
}

func NewClient(cfg *config.Config, sink Sink, state *healthsvc.State) *Client {
	return &Client{
		cfg:      cfg,
		sink:     sink,
		state:    state,
		wsDialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string   `json:"jsonrpc"`
	ID      string   `json:"id"`
	Method  string   `json:"method"`
	Params  []string `json:"params"`
}

type rpcFrame struct {
	Method string `json:"method"`
	Params struct {
		LastPrice         float64 `json:"lastPrice"`
		LastTickDirection string  `json:"lastTickDirection"`
		Time              int64   `json:"time"` // unix ms
	} `json:"params"`
}

// Run крутит connect/subscribe/read до отмены контекста.
func (c *Client) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		logger.Info("[WS] connect %s", c.cfg.LNMarkets.WSURL)
		conn, _, err := c.wsDialer.DialContext(ctx, c.cfg.LNMarkets.WSURL, nil)
		if err != nil {
			logger.Error("[WS] dial: %v", err)
			time.Sleep(time.Second)
			continue
		}

		sub := rpcRequest{
			JSONRPC: "2.0",
			ID:      "1",
			Method:  "v1/public/subscribe",
			Params:  []string{lastPriceChannel},
		}
		if err := conn.WriteJSON(sub); err != nil {
			logger.Error("[WS] subscribe: %v", err)
			_ = conn.Close()
			continue
		}

		c.state.SetWSConnected(true)

		// keepalive, иначе сервер рвёт тихое соединение
		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}()

		c.readLoop(ctx, conn)
		close(stopPing)
		c.state.SetWSConnected(false)

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(time.Second)
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("[WS] read: %v", err)
			}
			return
		}

		var frame rpcFrame
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue // ответы на subscribe и прочий шум
		}
		if frame.Method != "v1/public/"+lastPriceChannel {
			continue
		}

		// фид может прислать цену с суб-центовым хвостом, округляем
		price := models.DollarFromFloatRounded(frame.Params.LastPrice)
		if price <= 0 {
			logger.Warn("[WS] bad price %v", frame.Params.LastPrice)
			continue
		}

		c.sink.Submit(models.PriceTick{
			Time:          time.UnixMilli(frame.Params.Time),
			LastPrice:     price,
			TickDirection: frame.Params.LastTickDirection,
		})
	}
}
