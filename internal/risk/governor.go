package risk

import (
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// State is the trading permission state. Halted is terminal for the rest
// of the session; only a session boundary re-arms the breaker.
type State int

const (
	StateActive State = iota
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateHalted:
		return "HALTED"
	default:
		return "UNKNOWN"
	}
}

// HaltReason identifies which circuit breaker tripped
type HaltReason string

const (
	HaltReasonNone         HaltReason = ""
	HaltReasonDailyLoss    HaltReason = "DAILY_LOSS_LIMIT"
	HaltReasonLossStreak   HaltReason = "CONSECUTIVE_LOSSES"
	HaltReasonDrawdown     HaltReason = "MAX_DRAWDOWN"
)

// ClosedTrade is one realized trade outcome reported to the governor
type ClosedTrade struct {
	PnL       float64 // absolute currency amount
	ReturnPct float64 // fractional return on the position
	Reason    types.ExitReason
	ClosedAt  time.Time
}

// PortfolioState is the equity accounting the governor owns. No other
// component writes it; it moves only on trade-close notifications.
type PortfolioState struct {
	Equity             float64
	PeakEquity         float64
	SessionStartEquity float64
	DailyPnL           float64
	ConsecutiveLosses  int
	ClosedTrades       []ClosedTrade
}

// Drawdown returns the fractional decline of equity from its running peak
func (p PortfolioState) Drawdown() float64 {
	if p.PeakEquity <= 0 {
		return 0
	}
	return 1 - p.Equity/p.PeakEquity
}

// DailyLoss returns today's loss as a fraction of session-start equity;
// zero while the day is flat or profitable.
func (p PortfolioState) DailyLoss() float64 {
	if p.DailyPnL >= 0 || p.SessionStartEquity <= 0 {
		return 0
	}
	return -p.DailyPnL / p.SessionStartEquity
}

// Governor is the portfolio-level circuit breaker. It tracks drawdown,
// daily P&L and loss streaks, vetoes new entries once a limit is breached,
// and flags force liquidation at its own, higher, drawdown trigger.
type Governor struct {
	limits config.RiskConfig

	state      State
	haltReason HaltReason
	portfolio  PortfolioState

	onHalt func(reason HaltReason)
}

// NewGovernor creates a governor in the Active state with the given
// starting equity
func NewGovernor(limits config.RiskConfig, initialEquity float64) *Governor {
	return &Governor{
		limits: limits,
		state:  StateActive,
		portfolio: PortfolioState{
			Equity:             initialEquity,
			PeakEquity:         initialEquity,
			SessionStartEquity: initialEquity,
		},
	}
}

// SetHaltCallback registers a callback fired on the Active -> Halted
// transition, used for operator reporting
func (g *Governor) SetHaltCallback(fn func(reason HaltReason)) {
	g.onHalt = fn
}

// PermitsEntry reports whether new entries are allowed
func (g *Governor) PermitsEntry() bool {
	return g.state == StateActive
}

// State returns the current permission state
func (g *Governor) State() State {
	return g.state
}

// HaltedBecause returns the breaker that tripped, if any
func (g *Governor) HaltedBecause() HaltReason {
	return g.haltReason
}

// Portfolio returns a copy of the portfolio state. The closed-trade slice
// is shared read-only history; callers must not mutate it.
func (g *Governor) Portfolio() PortfolioState {
	return g.portfolio
}

// OnTradeClosed applies one realized trade to the portfolio accounting and
// evaluates every circuit breaker. A win resets the loss streak; a loss
// extends it. Peak equity only ever increases.
func (g *Governor) OnTradeClosed(trade ClosedTrade) {
	g.portfolio.Equity += trade.PnL
	g.portfolio.DailyPnL += trade.PnL
	if g.portfolio.Equity > g.portfolio.PeakEquity {
		g.portfolio.PeakEquity = g.portfolio.Equity
	}

	if trade.PnL > 0 {
		g.portfolio.ConsecutiveLosses = 0
	} else {
		g.portfolio.ConsecutiveLosses++
	}

	g.portfolio.ClosedTrades = append(g.portfolio.ClosedTrades, trade)

	g.evaluateBreakers()
}

// ShouldForceLiquidate reports whether drawdown has reached the force
// liquidation trigger. This is independent of the halt state: an open
// position must be unwindable even while Halted.
func (g *Governor) ShouldForceLiquidate() bool {
	return g.portfolio.Drawdown() >= g.limits.ForceLiquidationDrawdown
}

// ResetSession re-arms the circuit breaker at a session boundary: daily
// P&L clears and the permission state returns to Active. Peak equity and
// trade history survive the reset.
func (g *Governor) ResetSession() {
	g.portfolio.DailyPnL = 0
	g.portfolio.SessionStartEquity = g.portfolio.Equity
	g.state = StateActive
	g.haltReason = HaltReasonNone
}

// Snapshot is the persistable portion of the governor, captured for
// session recovery
type Snapshot struct {
	State      State
	HaltReason HaltReason
	Portfolio  PortfolioState
}

// Snapshot captures the current governor state
func (g *Governor) Snapshot() Snapshot {
	return Snapshot{
		State:      g.state,
		HaltReason: g.haltReason,
		Portfolio:  g.portfolio,
	}
}

// Restore replaces the governor state with a previously captured
// snapshot. The halt callback does not fire on restore.
func (g *Governor) Restore(snap Snapshot) {
	g.state = snap.State
	g.haltReason = snap.HaltReason
	g.portfolio = snap.Portfolio
}

// evaluateBreakers transitions Active -> Halted when any limit is breached
func (g *Governor) evaluateBreakers() {
	if g.state == StateHalted {
		return
	}

	reason := HaltReasonNone
	switch {
	case g.portfolio.DailyLoss() >= g.limits.DailyLossLimitPercent:
		reason = HaltReasonDailyLoss
	case g.portfolio.ConsecutiveLosses >= g.limits.MaxConsecutiveLosses:
		reason = HaltReasonLossStreak
	case g.portfolio.Drawdown() >= g.limits.MaxDrawdownPercent:
		reason = HaltReasonDrawdown
	}

	if reason == HaltReasonNone {
		return
	}

	g.state = StateHalted
	g.haltReason = reason
	if g.onHalt != nil {
		g.onHalt(reason)
	}
}
