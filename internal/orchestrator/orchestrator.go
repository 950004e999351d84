package orchestrator

import (
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	engerrors "github.com/ducminhle1904/btc-intraday-bot/internal/errors"
	"github.com/ducminhle1904/btc-intraday-bot/internal/execution"
	"github.com/ducminhle1904/btc-intraday-bot/internal/indicators"
	"github.com/ducminhle1904/btc-intraday-bot/internal/logger"
	"github.com/ducminhle1904/btc-intraday-bot/internal/position"
	"github.com/ducminhle1904/btc-intraday-bot/internal/risk"
	"github.com/ducminhle1904/btc-intraday-bot/internal/signal"
	"github.com/ducminhle1904/btc-intraday-bot/internal/sizing"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// BarResult reports what one bar produced, for the driver and reporting
type BarResult struct {
	Snapshot indicators.Snapshot

	OpenIntent  *types.OpenOrderIntent
	CloseIntent *types.CloseOrderIntent

	GovernorState risk.State
	Equity        float64

	// OrderErr carries a rejected submission; retryable, never fatal
	OrderErr error
}

// Orchestrator is the synchronous per-bar driver. It owns the component
// wiring and the session-boundary daily reset; one bar is in flight at a
// time and no component mutates shared state concurrently.
type Orchestrator struct {
	cfg *config.Config

	engine    *indicators.Engine
	generator *signal.Generator
	sizer     *sizing.Sizer
	governor  *risk.Governor
	lifecycle *position.Manager
	broker    execution.Broker

	log *logger.Logger // optional

	currentDay time.Time
	started    bool
}

// New assembles the decision engine from a validated configuration and an
// execution collaborator. The configuration must not change afterwards.
func New(cfg *config.Config, broker execution.Broker, log *logger.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, engerrors.NewConfigurationError("orchestrator", "New", err.Error())
	}

	engine := indicators.NewEngine(indicators.EngineConfig{
		EMAPeriod:    cfg.Indicators.EMAPeriod,
		RSIPeriod:    cfg.Indicators.RSIPeriod,
		UseOBV:       cfg.Indicators.UseOBV,
		UseBollinger: cfg.Indicators.UseBollinger,
		BBPeriod:     cfg.Indicators.BBPeriod,
		BBStdDev:     cfg.Indicators.BBStdDev,
		UseMACD:      cfg.Indicators.UseMACD,
		MACDFast:     cfg.Indicators.MACDFast,
		MACDSlow:     cfg.Indicators.MACDSlow,
		MACDSignal:   cfg.Indicators.MACDSignal,
	})

	generator := signal.NewGenerator(cfg.Entry, cfg.Indicators.RSIOversold,
		time.Duration(cfg.Exit.MaxHoldMinutes)*time.Minute)

	sizer, err := sizing.NewSizer(cfg.Sizing, cfg.Exit.StopLossPercent)
	if err != nil {
		return nil, engerrors.NewConfigurationError("orchestrator", "New", err.Error())
	}

	governor := risk.NewGovernor(cfg.Risk, cfg.InitialBalance)
	lifecycle := position.NewManager(cfg.Symbol, cfg.Exit, generator)

	o := &Orchestrator{
		cfg:       cfg,
		engine:    engine,
		generator: generator,
		sizer:     sizer,
		governor:  governor,
		lifecycle: lifecycle,
		broker:    broker,
		log:       log,
	}

	// Exit fills flow into the portfolio accounting
	lifecycle.SetTradeClosedCallback(o.onTradeClosed)
	governor.SetHaltCallback(o.onHalt)

	return o, nil
}

// Governor exposes the risk governor for reporting
func (o *Orchestrator) Governor() *risk.Governor {
	return o.governor
}

// Lifecycle exposes the position lifecycle manager for reporting
func (o *Orchestrator) Lifecycle() *position.Manager {
	return o.lifecycle
}

// Engine exposes the indicator engine, mainly for warmup introspection
func (o *Orchestrator) Engine() *indicators.Engine {
	return o.engine
}

// RestoreSession resumes a prior session: the governor state is restored
// and the session day is seeded from the last processed bar, so a halt
// survives a restart within the same UTC day and re-arms on the next.
// Indicators are not restored; the caller must replay warmup bars.
func (o *Orchestrator) RestoreSession(snap risk.Snapshot, lastBar time.Time) {
	o.governor.Restore(snap)
	if !lastBar.IsZero() {
		o.currentDay = lastBar.UTC().Truncate(24 * time.Hour)
		o.started = true
	}
}

// ProcessBar runs one bar through the whole decision chain:
// drain fills -> session reset -> indicators -> force liquidation ->
// exit check (always) or entry path (only while Active and flat).
// A non-nil error is a contract violation and processing must stop.
func (o *Orchestrator) ProcessBar(bar types.OHLCV) (BarResult, error) {
	// Fills from the previous bar reconcile before any new decision
	for _, fill := range o.broker.DrainFills() {
		o.lifecycle.OnFill(fill)
	}

	o.maybeResetSession(bar.Timestamp)

	snap, err := o.engine.Update(bar)
	if err != nil {
		return BarResult{}, err
	}

	o.sizer.OnBar(bar)

	result := BarResult{Snapshot: snap}
	now := bar.Timestamp

	// Existing risk is always unwindable: the exit path runs even while
	// the governor is Halted.
	if o.lifecycle.HasPosition() {
		var intent *types.CloseOrderIntent
		if o.governor.ShouldForceLiquidate() {
			intent = o.lifecycle.ForceClose(now)
		} else {
			intent = o.lifecycle.OnBar(bar, now)
		}

		if intent != nil {
			result.CloseIntent = intent
			if err := o.broker.SubmitClose(*intent); err != nil {
				// Position stays Closing until the execution layer
				// resolves it; the engine does not retry.
				result.OrderErr = engerrors.NewOrderError("orchestrator", "SubmitClose", err)
			} else if o.log != nil {
				o.log.Trade("Close intent submitted: %s at bar %s", intent.Reason, now.Format(time.RFC3339))
			}
		}
	} else if o.governor.PermitsEntry() && o.generator.EvaluateEntry(snap, bar) {
		size := o.sizer.ComputeSize(o.governor.Portfolio())
		if size > 0 {
			openIntent, err := o.lifecycle.Open(bar, size, now)
			if err != nil {
				return result, err
			}

			if submitErr := o.broker.SubmitOpen(openIntent); submitErr != nil {
				o.lifecycle.AbortOpen()
				result.OrderErr = engerrors.NewOrderError("orchestrator", "SubmitOpen", submitErr)
			} else {
				result.OpenIntent = &openIntent
				if o.log != nil {
					o.log.LogEntry(bar.Close, size, snap.EMA, snap.RSI)
				}
			}
		}
	}

	result.GovernorState = o.governor.State()
	result.Equity = o.governor.Portfolio().Equity
	return result, nil
}

// onTradeClosed converts a completed round trip into the governor's
// currency accounting and logs it
func (o *Orchestrator) onTradeClosed(trade position.ClosedTrade) {
	equity := o.governor.Portfolio().Equity
	pnl := equity * trade.Size * trade.ReturnPct

	o.governor.OnTradeClosed(risk.ClosedTrade{
		PnL:       pnl,
		ReturnPct: trade.ReturnPct,
		Reason:    trade.Reason,
		ClosedAt:  trade.ExitTime,
	})

	if o.log != nil {
		o.log.LogExit(trade.Reason, trade.EntryPrice, trade.ExitPrice,
			trade.ReturnPct, trade.ExitTime.Sub(trade.EntryTime))
	}
}

// onHalt reports the circuit breaker transition to the operator log
func (o *Orchestrator) onHalt(reason risk.HaltReason) {
	if o.log == nil {
		return
	}
	p := o.governor.Portfolio()
	o.log.LogHalt(string(reason), p.Equity, p.Drawdown())
}

// maybeResetSession re-arms the circuit breaker when the bar crosses a
// UTC date boundary
func (o *Orchestrator) maybeResetSession(ts time.Time) {
	day := ts.UTC().Truncate(24 * time.Hour)
	if !o.started {
		o.currentDay = day
		o.started = true
		return
	}
	if day.After(o.currentDay) {
		o.currentDay = day
		o.governor.ResetSession()
		if o.log != nil {
			o.log.Info("Session boundary %s: daily limits reset", day.Format("2006-01-02"))
		}
	}
}
