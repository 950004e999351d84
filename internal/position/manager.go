package position

import (
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	engerrors "github.com/ducminhle1904/btc-intraday-bot/internal/errors"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// ExitEvaluator checks the exit rules for the open position on each bar.
// The signal generator implements it.
type ExitEvaluator interface {
	EvaluateExit(pos *types.Position, bar types.OHLCV, now time.Time) (types.ExitReason, bool)
}

// ClosedTrade is one completed round trip, archived when the exit fill
// confirms.
type ClosedTrade struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Size       float64 // fraction of capital
	ReturnPct  float64 // fractional return on the position
	Reason     types.ExitReason
}

// Manager owns the state machine for the single open position:
// None -> Open -> Closing -> Closed -> (archived) None.
// Opening while a position exists is a contract violation.
type Manager struct {
	symbol  string
	exitCfg config.ExitConfig

	evaluator ExitEvaluator

	position *types.Position
	archive  []ClosedTrade

	onTradeClosed func(trade ClosedTrade)
}

// NewManager creates a lifecycle manager with no position
func NewManager(symbol string, exitCfg config.ExitConfig, evaluator ExitEvaluator) *Manager {
	return &Manager{
		symbol:    symbol,
		exitCfg:   exitCfg,
		evaluator: evaluator,
	}
}

// SetTradeClosedCallback registers the callback fired when an exit fill
// confirms and the trade is archived. The orchestrator routes it to the
// risk governor.
func (m *Manager) SetTradeClosedCallback(fn func(trade ClosedTrade)) {
	m.onTradeClosed = fn
}

// HasPosition reports whether a position currently exists (Open or Closing)
func (m *Manager) HasPosition() bool {
	return m.position != nil &&
		(m.position.Status == types.StatusOpen || m.position.Status == types.StatusClosing)
}

// Position returns the current position, nil when flat
func (m *Manager) Position() *types.Position {
	return m.position
}

// Archive returns the completed trades of this session in close order
func (m *Manager) Archive() []ClosedTrade {
	return m.archive
}

// Open transitions None -> Open at the bar close price, optimistically;
// the entry fill reconciles the actual price. Stop and target derive from
// the entry price.
func (m *Manager) Open(bar types.OHLCV, size float64, now time.Time) (types.OpenOrderIntent, error) {
	if m.HasPosition() {
		return types.OpenOrderIntent{}, engerrors.NewContractViolation("position", "Open",
			"a position already exists; the engine is single-position")
	}

	entryPrice := bar.Close
	stop := entryPrice * (1 - m.exitCfg.StopLossPercent)

	m.position = &types.Position{
		Symbol:           m.symbol,
		Direction:        types.DirectionLong,
		EntryPrice:       entryPrice,
		EntryTime:        now,
		Size:             size,
		StopPrice:        stop,
		InitialStopPrice: stop,
		TakeProfitPrice:  entryPrice * (1 + m.exitCfg.TakeProfitPercent),
		TrailingEnabled:  m.exitCfg.TrailingEnabled,
		Status:           types.StatusOpen,
	}
	if m.exitCfg.TrailingEnabled {
		m.position.TrailAnchor = bar.High
	}

	return types.OpenOrderIntent{
		Symbol:       m.symbol,
		Direction:    types.DirectionLong,
		SizeFraction: size,
		Timestamp:    now,
	}, nil
}

// AbortOpen rolls back an optimistic open whose order submission was
// rejected, returning the manager to flat. The orchestrator calls it
// before any fill can arrive.
func (m *Manager) AbortOpen() {
	if m.position != nil && m.position.Status == types.StatusOpen {
		m.position = nil
	}
}

// OnBar drives the open position through one bar: ratchet the trailing
// stop, then evaluate the exit rules. A match transitions Open -> Closing
// and returns the close intent with the triggering reason attached.
// While Closing the manager just waits for the fill.
func (m *Manager) OnBar(bar types.OHLCV, now time.Time) *types.CloseOrderIntent {
	if m.position == nil || m.position.Status != types.StatusOpen {
		return nil
	}

	m.ratchetTrailingStop(bar)

	reason, ok := m.evaluator.EvaluateExit(m.position, bar, now)
	if !ok {
		return nil
	}

	return m.beginClose(reason, now)
}

// ForceClose begins an immediate liquidation regardless of exit rules,
// used by the risk governor's force-liquidation path. No-op unless Open.
func (m *Manager) ForceClose(now time.Time) *types.CloseOrderIntent {
	if m.position == nil || m.position.Status != types.StatusOpen {
		return nil
	}
	return m.beginClose(types.ExitForceLiquidation, now)
}

// CloseEndOfData unwinds a position still working when the data stream
// ends, so a backtest never finishes with unrealized exposure. The
// reason is reporting-only and never competes with the exit rules.
func (m *Manager) CloseEndOfData(now time.Time) *types.CloseOrderIntent {
	if m.position == nil || m.position.Status != types.StatusOpen {
		return nil
	}
	return m.beginClose(types.ExitEndOfData, now)
}

// OnFill reconciles an asynchronous execution report. An entry fill
// re-anchors the entry price (and the derived stop and target) to the
// actual fill; an exit fill completes the round trip, reports it, and
// returns the manager to flat.
func (m *Manager) OnFill(fill types.Fill) {
	if m.position == nil {
		return
	}

	if !fill.IsClose {
		if m.position.Status != types.StatusOpen {
			return
		}
		m.position.EntryPrice = fill.Price
		stop := fill.Price * (1 - m.exitCfg.StopLossPercent)
		if stop > m.position.StopPrice {
			m.position.StopPrice = stop
		}
		m.position.InitialStopPrice = stop
		m.position.TakeProfitPrice = fill.Price * (1 + m.exitCfg.TakeProfitPercent)
		return
	}

	if m.position.Status != types.StatusClosing {
		return
	}

	m.position.Status = types.StatusClosed

	trade := ClosedTrade{
		Symbol:     m.symbol,
		EntryTime:  m.position.EntryTime,
		ExitTime:   fill.Timestamp,
		EntryPrice: m.position.EntryPrice,
		ExitPrice:  fill.Price,
		Size:       m.position.Size,
		ReturnPct:  (fill.Price - m.position.EntryPrice) / m.position.EntryPrice,
		Reason:     fill.Reason,
	}
	m.archive = append(m.archive, trade)

	if m.onTradeClosed != nil {
		m.onTradeClosed(trade)
	}

	// Archived: back to flat
	m.position = nil
}

// ratchetTrailingStop lifts the stop toward bar.High * (1 - trailPercent).
// The stop never moves downward.
func (m *Manager) ratchetTrailingStop(bar types.OHLCV) {
	if !m.position.TrailingEnabled {
		return
	}

	if bar.High > m.position.TrailAnchor {
		m.position.TrailAnchor = bar.High
	}

	candidate := m.position.TrailAnchor * (1 - m.exitCfg.TrailPercent)
	if candidate > m.position.StopPrice {
		m.position.StopPrice = candidate
	}
}

// beginClose transitions Open -> Closing and builds the close intent
func (m *Manager) beginClose(reason types.ExitReason, now time.Time) *types.CloseOrderIntent {
	m.position.Status = types.StatusClosing
	return &types.CloseOrderIntent{
		Symbol:    m.symbol,
		Reason:    reason,
		Timestamp: now,
	}
}
