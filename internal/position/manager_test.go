package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/internal/signal"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

func testExitConfig() config.ExitConfig {
	return config.ExitConfig{
		StopLossPercent:   0.005,
		TakeProfitPercent: 0.01,
		MaxHoldMinutes:    30,
	}
}

func newTestManager(exitCfg config.ExitConfig) *Manager {
	gen := signal.NewGenerator(config.EntryConfig{}, 30,
		time.Duration(exitCfg.MaxHoldMinutes)*time.Minute)
	return NewManager("BTCUSD", exitCfg, gen)
}

func barAt(t time.Time, low, high, close float64) types.OHLCV {
	return types.OHLCV{Low: low, High: high, Close: close, Open: close, Volume: 1000, Timestamp: t}
}

func TestManager_OpenComputesStopAndTarget(t *testing.T) {
	m := newTestManager(testExitConfig())
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	intent, err := m.Open(barAt(now, 99, 101, 100), 0.99, now)
	require.NoError(t, err)

	assert.Equal(t, 0.99, intent.SizeFraction)
	assert.Equal(t, types.DirectionLong, intent.Direction)

	pos := m.Position()
	require.NotNil(t, pos)
	assert.Equal(t, types.StatusOpen, pos.Status)
	assert.InDelta(t, 99.5, pos.StopPrice, 1e-9)
	assert.InDelta(t, 101.0, pos.TakeProfitPrice, 1e-9)
}

// TestManager_SinglePositionInvariant verifies the double-entry contract
// violation.
func TestManager_SinglePositionInvariant(t *testing.T) {
	m := newTestManager(testExitConfig())
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := m.Open(barAt(now, 99, 101, 100), 0.5, now)
	require.NoError(t, err)

	_, err = m.Open(barAt(now.Add(5*time.Minute), 99, 101, 100), 0.5, now.Add(5*time.Minute))
	assert.Error(t, err)
}

func TestManager_StopLossRoundTrip(t *testing.T) {
	m := newTestManager(testExitConfig())
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	var closed []ClosedTrade
	m.SetTradeClosedCallback(func(trade ClosedTrade) { closed = append(closed, trade) })

	_, err := m.Open(barAt(now, 99.8, 100.2, 100), 0.99, now)
	require.NoError(t, err)

	// Bar breaches the 99.5 stop
	intent := m.OnBar(barAt(now.Add(5*time.Minute), 99.3, 100.1, 99.4), now.Add(5*time.Minute))
	require.NotNil(t, intent)
	assert.Equal(t, types.ExitStopLoss, intent.Reason)
	assert.Equal(t, types.StatusClosing, m.Position().Status)

	// While Closing, further bars do not emit more intents
	again := m.OnBar(barAt(now.Add(10*time.Minute), 99.0, 99.6, 99.2), now.Add(10*time.Minute))
	assert.Nil(t, again)

	// Exit fill confirms: trade archived, manager flat, callback fired
	m.OnFill(types.Fill{Price: 99.45, Timestamp: now.Add(10 * time.Minute), IsClose: true, Reason: types.ExitStopLoss})
	assert.False(t, m.HasPosition())
	assert.Nil(t, m.Position())

	require.Len(t, closed, 1)
	assert.Equal(t, types.ExitStopLoss, closed[0].Reason)
	assert.InDelta(t, (99.45-100.0)/100.0, closed[0].ReturnPct, 1e-9)
	require.Len(t, m.Archive(), 1)
}

func TestManager_EntryFillReconcilesPrices(t *testing.T) {
	m := newTestManager(testExitConfig())
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := m.Open(barAt(now, 99.8, 100.2, 100), 0.99, now)
	require.NoError(t, err)

	// Filled with slippage above the optimistic close
	m.OnFill(types.Fill{Price: 100.2, Timestamp: now.Add(time.Second)})

	pos := m.Position()
	assert.InDelta(t, 100.2, pos.EntryPrice, 1e-9)
	assert.InDelta(t, 100.2*0.995, pos.InitialStopPrice, 1e-9)
	assert.InDelta(t, 100.2*1.01, pos.TakeProfitPrice, 1e-9)
}

// TestManager_TrailingStopOnlyRatchetsUp feeds a rising-then-falling path
// and asserts the stop price is non-decreasing for the whole open lifetime.
func TestManager_TrailingStopOnlyRatchetsUp(t *testing.T) {
	exitCfg := testExitConfig()
	exitCfg.TakeProfitPercent = 0.5 // keep the target out of the way
	exitCfg.TrailingEnabled = true
	exitCfg.TrailPercent = 0.01

	m := newTestManager(exitCfg)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := m.Open(barAt(now, 99.8, 100.0, 100), 0.99, now)
	require.NoError(t, err)

	path := []struct{ low, high, close float64 }{
		{99.9, 100.4, 100.3},
		{100.2, 100.9, 100.8},
		{100.7, 101.4, 101.2}, // peak
		{100.9, 101.2, 101.0},
		{100.8, 101.0, 100.9},
	}

	lastStop := m.Position().StopPrice
	for i, p := range path {
		ts := now.Add(time.Duration(i+1) * 5 * time.Minute)
		intent := m.OnBar(barAt(ts, p.low, p.high, p.close), ts)
		require.Nil(t, intent, "unexpected exit at bar %d", i)

		stop := m.Position().StopPrice
		assert.GreaterOrEqual(t, stop, lastStop, "stop retreated at bar %d", i)
		lastStop = stop
	}

	// Highest high 101.4 ratchets the stop to 101.4*(1-0.01)
	assert.InDelta(t, 101.4*0.99, lastStop, 1e-9)
}

func TestManager_ForceCloseWhileOpen(t *testing.T) {
	m := newTestManager(testExitConfig())
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := m.Open(barAt(now, 99.8, 100.2, 100), 0.99, now)
	require.NoError(t, err)

	intent := m.ForceClose(now.Add(5 * time.Minute))
	require.NotNil(t, intent)
	assert.Equal(t, types.ExitForceLiquidation, intent.Reason)
	assert.Equal(t, types.StatusClosing, m.Position().Status)

	// Already Closing: a second force close is a no-op
	assert.Nil(t, m.ForceClose(now.Add(10*time.Minute)))
}

func TestManager_TimeExitAfterMaxHold(t *testing.T) {
	m := newTestManager(testExitConfig())
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := m.Open(barAt(now, 99.8, 100.2, 100), 0.99, now)
	require.NoError(t, err)

	quiet := func(ts time.Time) types.OHLCV { return barAt(ts, 99.9, 100.3, 100.1) }

	intent := m.OnBar(quiet(now.Add(25*time.Minute)), now.Add(25*time.Minute))
	assert.Nil(t, intent, "no exit before the hold limit")

	intent = m.OnBar(quiet(now.Add(30*time.Minute)), now.Add(30*time.Minute))
	require.NotNil(t, intent)
	assert.Equal(t, types.ExitTimeLimit, intent.Reason)
}
