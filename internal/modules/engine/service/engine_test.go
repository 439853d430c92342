package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lnmarkets_bot/internal/models"
	"lnmarkets_bot/internal/modules/config"
	"lnmarkets_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type marginCall struct {
	positionID string
	amount     models.Satoshi
}

type placedOrder struct {
	price    models.Dollar
	exit     models.Dollar
	leverage int
	quantity models.Dollar
}

// fakeExchange пишет все вызовы, ответы настраиваются полями.
type fakeExchange struct {
	account    models.Account
	accountErr error
	running    []models.Position
	runningErr error
	open       []models.Position
	openErr    error

	addMarginErr error
	swapErr      error
	placeErr     error
	cancelErr    error

	accountCalls int
	marginCalls  []marginCall
	swaps        []models.Dollar
	cancels      []string
	placed       []placedOrder
}

func (f *fakeExchange) GetAccount(_ context.Context) (models.Account, error) {
	f.accountCalls++
	return f.account, f.accountErr
}

func (f *fakeExchange) GetRunningPositions(_ context.Context) ([]models.Position, error) {
	return f.running, f.runningErr
}

func (f *fakeExchange) GetOpenOrders(_ context.Context) ([]models.Position, error) {
	return f.open, f.openErr
}

func (f *fakeExchange) AddMargin(_ context.Context, positionID string, amount models.Satoshi) error {
	if f.addMarginErr != nil {
		return f.addMarginErr
	}
	f.marginCalls = append(f.marginCalls, marginCall{positionID, amount})
	return nil
}

func (f *fakeExchange) SwapUSDToBTC(_ context.Context, amount models.Dollar) error {
	if f.swapErr != nil {
		return f.swapErr
	}
	f.swaps = append(f.swaps, amount)
	return nil
}

func (f *fakeExchange) CancelOrder(_ context.Context, orderID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancels = append(f.cancels, orderID)
	return nil
}

func (f *fakeExchange) PlaceLimitBuy(_ context.Context, price, exitPrice models.Dollar, leverage int, quantity models.Dollar) error {
	if f.placeErr != nil {
		return f.placeErr
	}
	f.placed = append(f.placed, placedOrder{price, exitPrice, leverage, quantity})
	return nil
}

type fixedSnapshot struct {
	s *config.Snapshot
}

func (f fixedSnapshot) Snapshot() *config.Snapshot { return f.s }

func baseSnapshot() *config.Snapshot {
	return &config.Snapshot{
		QuantityUSD:        models.DollarFromUSD(100),
		Leverage:           10,
		TakeprofitUSD:      models.DollarFromUSD(2000),
		MaxTakeprofitPrice: models.DollarFromUSD(1_000_000),
		MaxRunningTrades:   10,
		Factor:             models.DollarFromUSD(1000),
		AddMarginUSD:       models.DollarFromUSD(10),
		MaxLossPercent:     -50,
		MinCallInterval:    30 * time.Second,
		MessageTimeout:     time.Minute,
	}
}

func tickAt(usd int64) models.PriceTick {
	return models.PriceTick{
		Time:      time.Now(),
		LastPrice: models.DollarFromUSD(usd),
	}
}

func healthyAccount() models.Account {
	return models.Account{
		Balance:      1_000_000,
		SyntheticUSD: models.DollarFromUSD(500),
		FeeTier:      0,
	}
}

func TestHandlePriceUpdate_Paused(t *testing.T) {
	snap := baseSnapshot()
	snap.Paused = true
	ex := &fakeExchange{account: healthyAccount()}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Zero(t, ex.accountCalls, "paused cycle must not touch the exchange")
}

func TestHandlePriceUpdate_ZeroBalance(t *testing.T) {
	ex := &fakeExchange{account: models.Account{Balance: 0}}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Equal(t, 1, ex.accountCalls)
	assert.Empty(t, ex.marginCalls)
	assert.Empty(t, ex.placed)
}

func TestHandlePriceUpdate_AccountError(t *testing.T) {
	ex := &fakeExchange{accountErr: errors.New("boom")}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	// ошибка биржи локальна: цикл просто заканчивается
	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Empty(t, ex.placed)
}

func TestMarginPhase_CallAndSwap(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxRunningTrades = 1 // фаза B в этом тесте не интересна

	ex := &fakeExchange{
		account: healthyAccount(),
		running: []models.Position{{
			ID:         "pos-1",
			Side:       models.Buy,
			EntryPrice: models.DollarFromUSD(49000),
			Quantity:   models.DollarFromUSD(100),
			Leverage:   10,
			Margin:     1000,
			PL:         -600, // -60%
			State:      models.StateRunning,
		}},
	}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))

	// $10 по курсу 2000 sat/$ = 20000 sats
	require.Len(t, ex.marginCalls, 1)
	assert.Equal(t, "pos-1", ex.marginCalls[0].positionID)
	assert.Equal(t, models.Satoshi(20000), ex.marginCalls[0].amount)

	// один swap на всю долитую сумму
	require.Len(t, ex.swaps, 1)
	assert.Equal(t, models.DollarFromUSD(10), ex.swaps[0])

	assert.Empty(t, ex.placed)
}

func TestMarginPhase_SkipsHealthyAndLowLeverage(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxRunningTrades = 1

	ex := &fakeExchange{
		account: healthyAccount(),
		running: []models.Position{
			{ID: "healthy", EntryPrice: models.DollarFromUSD(49000), Quantity: models.DollarFromUSD(100),
				Leverage: 10, Margin: 1000, PL: -400}, // -40% > -50%
			{ID: "lev1", EntryPrice: models.DollarFromUSD(49000), Quantity: models.DollarFromUSD(100),
				Leverage: 1, Margin: 1000, PL: -900},
		},
	}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Empty(t, ex.marginCalls)
	assert.Empty(t, ex.swaps)
}

func TestMarginPhase_ClampsToHeadroom(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxRunningTrades = 1

	// максимум маржи floor(1e8/50000*100) = 200000, уже залито 199990
	ex := &fakeExchange{
		account: healthyAccount(),
		running: []models.Position{{
			ID:         "pos-full",
			EntryPrice: models.DollarFromUSD(50000),
			Quantity:   models.DollarFromUSD(100),
			Leverage:   10,
			Margin:     199990,
			PL:         -100000, // ~-50.003%
		}},
	}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	require.Len(t, ex.marginCalls, 1)
	assert.Equal(t, models.Satoshi(10), ex.marginCalls[0].amount)
}

func TestMarginPhase_NoHeadroomSkips(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxRunningTrades = 1

	ex := &fakeExchange{
		account: healthyAccount(),
		running: []models.Position{{
			ID:         "pos-max",
			EntryPrice: models.DollarFromUSD(50000),
			Quantity:   models.DollarFromUSD(100),
			Leverage:   10,
			Margin:     200000,
			PL:         -150000,
		}},
	}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Empty(t, ex.marginCalls)
}

func TestMarginPhase_InsufficientBalanceSkips(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxRunningTrades = 1

	ex := &fakeExchange{
		account: models.Account{Balance: 10_000, SyntheticUSD: models.DollarFromUSD(500)},
		running: []models.Position{{
			ID:         "pos-1",
			EntryPrice: models.DollarFromUSD(49000),
			Quantity:   models.DollarFromUSD(100),
			Leverage:   10,
			Margin:     1000,
			PL:         -600,
		}},
	}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	// нужен call на 20000 sats, на балансе 10000 — частично не доливаем
	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Empty(t, ex.marginCalls)
	assert.Empty(t, ex.swaps)
}

func TestMarginPhase_SwapNeedsSyntheticBalance(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxRunningTrades = 1

	ex := &fakeExchange{
		account: models.Account{Balance: 1_000_000, SyntheticUSD: models.DollarFromUSD(5)},
		running: []models.Position{{
			ID:         "pos-1",
			EntryPrice: models.DollarFromUSD(49000),
			Quantity:   models.DollarFromUSD(100),
			Leverage:   10,
			Margin:     1000,
			PL:         -600,
		}},
	}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	require.Len(t, ex.marginCalls, 1)
	// синтетики $5 < $10, swap не делаем
	assert.Empty(t, ex.swaps)
}

func TestMarginPhase_PositionsErrorAbortsCycle(t *testing.T) {
	ex := &fakeExchange{
		account:    healthyAccount(),
		runningErr: errors.New("api down"),
	}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Empty(t, ex.placed, "trade phase must not run without the positions list")
}

func TestTradePhase_PlacesLimitBuy(t *testing.T) {
	ex := &fakeExchange{account: healthyAccount()}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50750)))

	require.Len(t, ex.placed, 1)
	got := ex.placed[0]
	assert.Equal(t, models.DollarFromUSD(50000), got.price, "entry is the quantized grid price")
	assert.Equal(t, models.DollarFromUSD(52000), got.exit)
	assert.Equal(t, 10, got.leverage)
	assert.Equal(t, models.DollarFromUSD(100), got.quantity)
}

func TestTradePhase_SlotTakenByRunningPosition(t *testing.T) {
	ex := &fakeExchange{
		account: healthyAccount(),
		running: []models.Position{{
			ID:         "pos-1",
			EntryPrice: models.DollarFromUSD(50400), // та же ячейка 50000
			Quantity:   models.DollarFromUSD(100),
			Leverage:   10,
			Margin:     20000,
			PL:         0,
		}},
	}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50750)))
	assert.Empty(t, ex.placed)
}

func TestTradePhase_SlotTakenByOpenOrder(t *testing.T) {
	ex := &fakeExchange{
		account: healthyAccount(),
		open: []models.Position{{
			ID:         "order-1",
			EntryPrice: models.DollarFromUSD(50999),
			State:      models.StateOpen,
		}},
	}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50750)))
	assert.Empty(t, ex.placed)
	assert.Empty(t, ex.cancels, "occupied slot means the order stays")
}

func TestTradePhase_CancelsStaleOrders(t *testing.T) {
	ex := &fakeExchange{
		account: healthyAccount(),
		open: []models.Position{{
			ID:         "order-old",
			EntryPrice: models.DollarFromUSD(47000),
			State:      models.StateOpen,
		}},
	}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50750)))
	assert.Equal(t, []string{"order-old"}, ex.cancels)
	require.Len(t, ex.placed, 1)
	assert.Equal(t, models.DollarFromUSD(50000), ex.placed[0].price)
}

func TestTradePhase_NoFreeMargin(t *testing.T) {
	// available 1500 <= 2000 sats (стоимость $1)
	ex := &fakeExchange{account: models.Account{Balance: 1500}}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Empty(t, ex.placed)
}

func TestTradePhase_RequiredMarginGate(t *testing.T) {
	// нужно ceil(1e8/50000*100/10) = 20000 sats, свободно 10000
	ex := &fakeExchange{account: models.Account{Balance: 10_000}}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Empty(t, ex.placed)
}

func TestTradePhase_MaxTakeprofitGate(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxTakeprofitPrice = models.DollarFromUSD(52000)

	ex := &fakeExchange{account: healthyAccount()}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50750)))
	assert.Empty(t, ex.placed)
}

func TestTradePhase_FeeAwareExit(t *testing.T) {
	target := models.Satoshi(0)
	snap := baseSnapshot()
	snap.TargetNetPLSats = &target

	ex := &fakeExchange{account: healthyAccount()}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))

	// breakeven с комиссиями tier 0: ~50099.95, шаг биржи $0.5 вверх
	require.Len(t, ex.placed, 1)
	assert.Equal(t, models.DollarFromUSD(50100), ex.placed[0].exit)
}

func TestTradePhase_PlaceErrorIsLocal(t *testing.T) {
	ex := &fakeExchange{
		account:  healthyAccount(),
		placeErr: errors.New("rejected"),
	}
	eng := New(ex, fixedSnapshot{baseSnapshot()}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50000)))
	assert.Empty(t, ex.placed)
}

func TestTradePhase_MaxRunningTrades(t *testing.T) {
	snap := baseSnapshot()
	snap.MaxRunningTrades = 2

	running := []models.Position{
		{ID: "a", EntryPrice: models.DollarFromUSD(48000), Quantity: models.DollarFromUSD(100), Leverage: 10, Margin: 20000, PL: 0},
		{ID: "b", EntryPrice: models.DollarFromUSD(49000), Quantity: models.DollarFromUSD(100), Leverage: 10, Margin: 20000, PL: 0},
	}
	ex := &fakeExchange{account: healthyAccount(), running: running}
	eng := New(ex, fixedSnapshot{snap}, nil, nil)

	require.NoError(t, eng.HandlePriceUpdate(context.Background(), tickAt(50750)))
	assert.Empty(t, ex.placed)
}
