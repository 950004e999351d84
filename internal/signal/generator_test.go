package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/internal/indicators"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

func allConditions() config.EntryConfig {
	return config.EntryConfig{PriceAboveEMA: true, RSIOversold: true, OBVRising: true}
}

func readySnapshot() indicators.Snapshot {
	return indicators.Snapshot{
		Ready:     true,
		EMA:       100.0,
		RSI:       25.0,
		OBVRising: true,
	}
}

func openPosition() *types.Position {
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &types.Position{
		Symbol:           "BTCUSD",
		EntryPrice:       100.0,
		EntryTime:        entry,
		Size:             0.99,
		StopPrice:        99.5,
		InitialStopPrice: 99.5,
		TakeProfitPrice:  101.0,
		Status:           types.StatusOpen,
	}
}

func TestEvaluateEntry_AllConditionsMet(t *testing.T) {
	g := NewGenerator(allConditions(), 30, 30*time.Minute)

	bar := types.OHLCV{Close: 101.0}
	assert.True(t, g.EvaluateEntry(readySnapshot(), bar))
}

func TestEvaluateEntry_NeverBeforeWarmup(t *testing.T) {
	g := NewGenerator(allConditions(), 30, 30*time.Minute)

	snap := readySnapshot()
	snap.Ready = false

	// Raw conditions all hold, warmup gating must still veto the entry
	assert.False(t, g.EvaluateEntry(snap, types.OHLCV{Close: 101.0}))
}

func TestEvaluateEntry_EachConditionVetoes(t *testing.T) {
	g := NewGenerator(allConditions(), 30, 30*time.Minute)

	belowEMA := readySnapshot()
	assert.False(t, g.EvaluateEntry(belowEMA, types.OHLCV{Close: 99.0}))

	notOversold := readySnapshot()
	notOversold.RSI = 45.0
	assert.False(t, g.EvaluateEntry(notOversold, types.OHLCV{Close: 101.0}))

	obvFlat := readySnapshot()
	obvFlat.OBVRising = false
	assert.False(t, g.EvaluateEntry(obvFlat, types.OHLCV{Close: 101.0}))
}

func TestEvaluateEntry_DisabledConditionsIgnored(t *testing.T) {
	g := NewGenerator(config.EntryConfig{PriceAboveEMA: true}, 30, 30*time.Minute)

	snap := readySnapshot()
	snap.RSI = 80.0
	snap.OBVRising = false

	assert.True(t, g.EvaluateEntry(snap, types.OHLCV{Close: 101.0}))
}

// TestEvaluateExit_StopLossPrecedence covers the gap-bar case: a single
// bar whose low breaches the stop and whose high breaches the target must
// report stop-loss, never take-profit.
func TestEvaluateExit_StopLossPrecedence(t *testing.T) {
	g := NewGenerator(allConditions(), 30, 30*time.Minute)
	pos := openPosition()

	gapBar := types.OHLCV{Low: 99.0, High: 102.0, Close: 100.5}
	reason, ok := g.EvaluateExit(pos, gapBar, pos.EntryTime.Add(5*time.Minute))

	assert.True(t, ok)
	assert.Equal(t, types.ExitStopLoss, reason)
}

func TestEvaluateExit_TakeProfit(t *testing.T) {
	g := NewGenerator(allConditions(), 30, 30*time.Minute)
	pos := openPosition()

	bar := types.OHLCV{Low: 100.2, High: 101.5, Close: 101.2}
	reason, ok := g.EvaluateExit(pos, bar, pos.EntryTime.Add(5*time.Minute))

	assert.True(t, ok)
	assert.Equal(t, types.ExitTakeProfit, reason)
}

func TestEvaluateExit_TrailingStopAfterRatchet(t *testing.T) {
	g := NewGenerator(allConditions(), 30, 30*time.Minute)
	pos := openPosition()
	pos.TrailingEnabled = true
	pos.TrailAnchor = 100.8
	pos.StopPrice = 100.3 // ratcheted above the initial 99.5

	bar := types.OHLCV{Low: 100.1, High: 100.6, Close: 100.2}
	reason, ok := g.EvaluateExit(pos, bar, pos.EntryTime.Add(5*time.Minute))

	assert.True(t, ok)
	assert.Equal(t, types.ExitTrailingStop, reason)
}

// TestEvaluateExit_TimeLimitBoundary verifies the time exit fires on the
// first bar at or past the hold limit and not one bar before.
func TestEvaluateExit_TimeLimitBoundary(t *testing.T) {
	g := NewGenerator(allConditions(), 30, 30*time.Minute)
	pos := openPosition()

	quietBar := types.OHLCV{Low: 100.2, High: 100.8, Close: 100.5}

	_, ok := g.EvaluateExit(pos, quietBar, pos.EntryTime.Add(25*time.Minute))
	assert.False(t, ok)

	reason, ok := g.EvaluateExit(pos, quietBar, pos.EntryTime.Add(30*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, types.ExitTimeLimit, reason)
}

func TestEvaluateExit_NoPositionNoExit(t *testing.T) {
	g := NewGenerator(allConditions(), 30, 30*time.Minute)

	_, ok := g.EvaluateExit(nil, types.OHLCV{Low: 1, High: 2}, time.Now())
	assert.False(t, ok)

	closed := openPosition()
	closed.Status = types.StatusClosed
	_, ok = g.EvaluateExit(closed, types.OHLCV{Low: 1, High: 2}, time.Now())
	assert.False(t, ok)
}
