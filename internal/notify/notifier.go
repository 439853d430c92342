package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"lnmarkets_bot/internal/modules/config"
	lnsvc "lnmarkets_bot/internal/modules/lnmarkets_client/service"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Telegram — пассивный нотифайер + обработка команд /positions и /balance.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	ln     *lnsvc.Client
}

func NewTelegram(token string, chatID int64, ln *lnsvc.Client) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
		ln:     ln,
	}, nil
}

// NewFromConfig: без токена возвращаем Stdout, бот остаётся рабочим.
func NewFromConfig(cfg *config.Config, ln *lnsvc.Client) (Notifier, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return NewStdout(), nil
	}
	return NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, ln)
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	_, _ = t.bot.Send(tgbot.NewMessage(t.chatID, msg))
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// /positions — вывод запущенных позиций с LN Markets
func (t *Telegram) handlePositions(ctx context.Context) {
	if t.ln == nil {
		t.Send("❗️ Клиент LN Markets не инициализирован")
		return
	}
	positions, err := t.ln.GetRunningPositions(ctx)
	if err != nil {
		t.Sendf("❗️ Ошибка получения позиций: %v", err)
		return
	}
	if len(positions) == 0 {
		t.Send("📭 Запущенных позиций нет")
		return
	}

	var b strings.Builder
	b.WriteString("📊 Запущенные позиции:\n")
	for _, p := range positions {
		side := "LONG"
		if p.Side == "s" {
			side = "SHORT"
		}
		fmt.Fprintf(&b, "- %s [%s] qty=%s @ %s lev=%dx margin=%d sat pl=%d sat\n",
			p.ID, side, p.Quantity, p.EntryPrice, p.Leverage, p.Margin, p.PL)
	}
	t.Send(b.String())
}

// /balance — баланс аккаунта
func (t *Telegram) handleBalance(ctx context.Context) {
	if t.ln == nil {
		t.Send("❗️ Клиент LN Markets не инициализирован")
		return
	}
	acc, err := t.ln.GetAccount(ctx)
	if err != nil {
		t.Sendf("❗️ Ошибка получения баланса: %v", err)
		return
	}
	t.Sendf("💰 Баланс: %d sat, синтетика: %s, fee tier %d",
		acc.Balance, acc.SyntheticUSD, acc.FeeTier)
}

// Start: long-polling для команд.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message == nil || upd.Message.Chat == nil ||
					upd.Message.Chat.ID != t.chatID || !upd.Message.IsCommand() {
					continue
				}
				switch upd.Message.Command() {
				case "positions":
					go t.handlePositions(ctx)
				case "balance":
					go t.handleBalance(ctx)
				}
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}

// Stdout — заглушка, всё пишет в лог.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { log.Println(msg) }
func (s *Stdout) Sendf(format string, args ...any) { log.Printf(format, args...) }
