package signal

import (
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/internal/indicators"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Generator evaluates entry and exit conditions against the indicator
// snapshot and the current bar. It holds no mutable state of its own.
type Generator struct {
	entry       config.EntryConfig
	oversold    float64
	maxHold     time.Duration
}

// NewGenerator creates a signal generator from the frozen configuration
func NewGenerator(entry config.EntryConfig, oversold float64, maxHold time.Duration) *Generator {
	return &Generator{
		entry:    entry,
		oversold: oversold,
		maxHold:  maxHold,
	}
}

// EvaluateEntry returns true iff every enabled entry condition holds:
// close above EMA, RSI below the oversold threshold, OBV rising. Nothing
// fires before the indicator engine finishes warmup.
func (g *Generator) EvaluateEntry(snap indicators.Snapshot, bar types.OHLCV) bool {
	if !snap.Ready {
		return false
	}

	if g.entry.PriceAboveEMA && !(bar.Close > snap.EMA) {
		return false
	}
	if g.entry.RSIOversold && !(snap.RSI < g.oversold) {
		return false
	}
	if g.entry.OBVRising && !snap.OBVRising {
		return false
	}

	return true
}

// EvaluateExit checks the exit rules in fixed priority order and returns
// the first that matches. Stop-loss outranks take-profit: a gap bar can
// qualify for both, and the stop is the conservative read.
func (g *Generator) EvaluateExit(pos *types.Position, bar types.OHLCV, now time.Time) (types.ExitReason, bool) {
	if pos == nil || pos.Status != types.StatusOpen {
		return 0, false
	}

	// 1. Stop-loss breach at the entry-time stop level
	if bar.Low <= pos.InitialStopPrice {
		return types.ExitStopLoss, true
	}

	// 2. Take-profit breach
	if bar.High >= pos.TakeProfitPrice {
		return types.ExitTakeProfit, true
	}

	// 3. Trailing stop breach: the ratcheted stop sits above the initial
	// stop once price has advanced, so this only fires after a ratchet
	if pos.TrailingEnabled && bar.Low <= pos.StopPrice {
		return types.ExitTrailingStop, true
	}

	// 4. Time-based exit: wall-clock elapsed time, measured across gaps
	if now.Sub(pos.EntryTime) >= g.maxHold {
		return types.ExitTimeLimit, true
	}

	return 0, false
}
