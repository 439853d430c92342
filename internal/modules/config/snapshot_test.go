package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lnmarkets_bot/internal/models"
	"lnmarkets_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func writeTradingFile(t *testing.T, content string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trading.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg := &Config{TradingConfigFile: path}
	return cfg
}

func TestWatcher_ReadsTradingConfig(t *testing.T) {
	cfg := writeTradingFile(t, `
paused: false
quantity_usd: 250
leverage: 20
takeprofit_usd: 1500
max_takeprofit_price: 80000
max_running_trades: 5
factor_usd: 500
add_margin_usd: 25
max_loss_percent: -40
min_call_interval: 10s
message_timeout: 45s
`)

	w, err := NewWatcher(cfg)
	require.NoError(t, err)

	snap := w.Snapshot()
	require.NotNil(t, snap)
	assert.False(t, snap.Paused)
	assert.Equal(t, models.DollarFromUSD(250), snap.QuantityUSD)
	assert.Equal(t, 20, snap.Leverage)
	assert.Equal(t, models.DollarFromUSD(1500), snap.TakeprofitUSD)
	assert.Equal(t, models.DollarFromUSD(80000), snap.MaxTakeprofitPrice)
	assert.Equal(t, 5, snap.MaxRunningTrades)
	assert.Equal(t, models.DollarFromUSD(500), snap.Factor)
	assert.Equal(t, models.DollarFromUSD(25), snap.AddMarginUSD)
	assert.Equal(t, -40.0, snap.MaxLossPercent)
	assert.Equal(t, 10*time.Second, snap.MinCallInterval)
	assert.Equal(t, 45*time.Second, snap.MessageTimeout)
	assert.Nil(t, snap.TargetNetPLSats, "fee-aware search off by default")
}

func TestWatcher_Defaults(t *testing.T) {
	cfg := writeTradingFile(t, "paused: true\n")

	w, err := NewWatcher(cfg)
	require.NoError(t, err)

	snap := w.Snapshot()
	assert.True(t, snap.Paused)
	assert.Equal(t, models.DollarFromUSD(100), snap.QuantityUSD)
	assert.Equal(t, 10, snap.Leverage)
	assert.Equal(t, models.DollarFromUSD(1000), snap.Factor)
	assert.Equal(t, 30*time.Second, snap.MinCallInterval)
}

func TestWatcher_TargetNetPL(t *testing.T) {
	cfg := writeTradingFile(t, "target_net_pl_sats: 1000\n")

	w, err := NewWatcher(cfg)
	require.NoError(t, err)

	snap := w.Snapshot()
	require.NotNil(t, snap.TargetNetPLSats)
	assert.Equal(t, models.Satoshi(1000), *snap.TargetNetPLSats)
}

func TestWatcher_RejectsBadValues(t *testing.T) {
	for name, content := range map[string]string{
		"zero quantity":      "quantity_usd: 0\n",
		"negative factor":    "factor_usd: -100\n",
		"zero add margin":    "add_margin_usd: 0\n",
		"zero leverage":      "leverage: 0\n",
		"positive loss":      "max_loss_percent: 10\n",
		"too many decimals":  "quantity_usd: 10.001\n",
		"zero call interval": "min_call_interval: 0s\n",
	} {
		t.Run(name, func(t *testing.T) {
			cfg := writeTradingFile(t, content)
			_, err := NewWatcher(cfg)
			assert.Error(t, err)
		})
	}
}
