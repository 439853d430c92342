package config

import (
	"sync/atomic"
	"time"

	"lnmarkets_bot/internal/models"
	"lnmarkets_bot/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Snapshot — неизменяемый снимок торговых параметров. Движок читает его
// один раз в начале цикла; редактирование файла не трогает цикл в полёте.
type Snapshot struct {
	Paused bool

	QuantityUSD        models.Dollar
	Leverage           int
	TakeprofitUSD      models.Dollar
	MaxTakeprofitPrice models.Dollar
	MaxRunningTrades   int
	Factor             models.Dollar // размер ячейки сетки
	AddMarginUSD       models.Dollar
	MaxLossPercent     float64 // <= 0, порог margin call

	MinCallInterval time.Duration
	MessageTimeout  time.Duration

	// nil — обычный takeprofit; иначе fee-aware поиск exit price.
	TargetNetPLSats *models.Satoshi
}

// Watcher держит актуальный Snapshot в атомарной ячейке и перечитывает
// trading-файл по fsnotify-событию от viper.
type Watcher struct {
	v   *viper.Viper
	cur atomic.Pointer[Snapshot]
}

func NewWatcher(cfg *Config) (*Watcher, error) {
	v := viper.New()
	v.SetConfigFile(cfg.TradingConfigFile)
	v.SetConfigType("yaml")

	v.SetDefault("paused", false)
	v.SetDefault("quantity_usd", 100.0)
	v.SetDefault("leverage", 10)
	v.SetDefault("takeprofit_usd", 2000.0)
	v.SetDefault("max_takeprofit_price", 1000000.0)
	v.SetDefault("max_running_trades", 10)
	v.SetDefault("factor_usd", 1000.0)
	v.SetDefault("add_margin_usd", 10.0)
	v.SetDefault("max_loss_percent", -50.0)
	v.SetDefault("min_call_interval", "30s")
	v.SetDefault("message_timeout", "60s")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read trading config")
	}

	w := &Watcher{v: v}
	snap, err := buildSnapshot(v)
	if err != nil {
		return nil, errors.Wrap(err, "parse trading config")
	}
	w.cur.Store(snap)

	v.OnConfigChange(func(e fsnotify.Event) {
		fresh, err := buildSnapshot(v)
		if err != nil {
			// плохую правку игнорируем, работаем на старом снапшоте
			logger.Error("trading config reload rejected: %v", err)
			return
		}
		w.cur.Store(fresh)
		logger.Info("trading config reloaded: %s", e.Name)
	})
	v.WatchConfig()

	return w, nil
}

// Snapshot возвращает текущий снимок. Никогда не nil после NewWatcher.
func (w *Watcher) Snapshot() *Snapshot {
	return w.cur.Load()
}

func buildSnapshot(v *viper.Viper) (*Snapshot, error) {
	quantity, err := models.NewDollarFromFloat(v.GetFloat64("quantity_usd"))
	if err != nil {
		return nil, errors.Wrap(err, "quantity_usd")
	}
	takeprofit, err := models.NewDollarFromFloat(v.GetFloat64("takeprofit_usd"))
	if err != nil {
		return nil, errors.Wrap(err, "takeprofit_usd")
	}
	maxTP, err := models.NewDollarFromFloat(v.GetFloat64("max_takeprofit_price"))
	if err != nil {
		return nil, errors.Wrap(err, "max_takeprofit_price")
	}
	factor, err := models.NewDollarFromFloat(v.GetFloat64("factor_usd"))
	if err != nil {
		return nil, errors.Wrap(err, "factor_usd")
	}
	addMargin, err := models.NewDollarFromFloat(v.GetFloat64("add_margin_usd"))
	if err != nil {
		return nil, errors.Wrap(err, "add_margin_usd")
	}

	snap := &Snapshot{
		Paused:             v.GetBool("paused"),
		QuantityUSD:        quantity,
		Leverage:           v.GetInt("leverage"),
		TakeprofitUSD:      takeprofit,
		MaxTakeprofitPrice: maxTP,
		MaxRunningTrades:   v.GetInt("max_running_trades"),
		Factor:             factor,
		AddMarginUSD:       addMargin,
		MaxLossPercent:     v.GetFloat64("max_loss_percent"),
		MinCallInterval:    v.GetDuration("min_call_interval"),
		MessageTimeout:     v.GetDuration("message_timeout"),
	}

	if v.IsSet("target_net_pl_sats") {
		target := models.Satoshi(v.GetInt64("target_net_pl_sats"))
		snap.TargetNetPLSats = &target
	}

	if snap.QuantityUSD <= 0 {
		return nil, errors.New("quantity_usd must be positive")
	}
	if snap.Leverage <= 0 {
		return nil, errors.New("leverage must be positive")
	}
	if snap.Factor <= 0 {
		return nil, errors.New("factor_usd must be positive")
	}
	if snap.AddMarginUSD <= 0 {
		return nil, errors.New("add_margin_usd must be positive")
	}
	if snap.MaxLossPercent > 0 {
		return nil, errors.New("max_loss_percent must be <= 0")
	}
	if snap.MinCallInterval <= 0 || snap.MessageTimeout <= 0 {
		return nil, errors.New("min_call_interval and message_timeout must be positive")
	}

	return snap, nil
}
