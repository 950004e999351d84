package backtest

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/internal/execution"
	"github.com/ducminhle1904/btc-intraday-bot/internal/orchestrator"
	"github.com/ducminhle1904/btc-intraday-bot/internal/risk"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Engine replays historical bars through the decision chain against a
// simulated broker and collects the results.
type Engine struct {
	cfg        *config.Config
	slippage   float64
	commission float64
}

// Trade is one completed round trip with both its price path and its
// currency impact, ready for reporting
type Trade struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	ReturnPct  float64
	PnL        float64
	Reason     types.ExitReason
}

// EquityPoint is one sample of the realized equity curve
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

// Results holds everything a backtest run produced
type Results struct {
	StartBalance float64
	EndBalance   float64
	TotalReturn  float64

	MaxDrawdown      float64
	SharpeRatio      float64
	SortinoRatio     float64
	ProfitFactor     float64
	WinRate          float64
	AnnualizedReturn float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int

	HaltCount  int
	WarmupBars int

	ExitCounts  map[types.ExitReason]int
	Trades      []Trade
	EquityCurve []EquityPoint
}

// NewEngine creates a backtest engine. Slippage and commission are
// fractional and applied per side by the simulated broker.
func NewEngine(cfg *config.Config, slippage, commission float64) *Engine {
	return &Engine{
		cfg:        cfg,
		slippage:   slippage,
		commission: commission,
	}
}

// Run replays the bars in order and returns the collected results. Bars
// must be chronological; an out-of-order bar aborts the run.
func (e *Engine) Run(bars []types.OHLCV) (*Results, error) {
	results := &Results{
		StartBalance: e.cfg.InitialBalance,
		EndBalance:   e.cfg.InitialBalance,
		ExitCounts:   make(map[types.ExitReason]int),
	}
	if len(bars) == 0 {
		return results, nil
	}

	broker := execution.NewSimulatedBroker(e.slippage, e.commission)
	orch, err := orchestrator.New(e.cfg, broker, nil)
	if err != nil {
		return nil, err
	}
	results.WarmupBars = orch.Engine().WarmupBars()

	prevState := risk.StateActive
	for _, bar := range bars {
		broker.OnBar(bar)

		barResult, err := orch.ProcessBar(bar)
		if err != nil {
			return nil, fmt.Errorf("backtest aborted at bar %s: %w",
				bar.Timestamp.Format(time.RFC3339), err)
		}

		results.EquityCurve = append(results.EquityCurve, EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    barResult.Equity,
		})

		if prevState == risk.StateActive && barResult.GovernorState == risk.StateHalted {
			results.HaltCount++
		}
		prevState = barResult.GovernorState
	}

	e.settle(orch, broker, bars[len(bars)-1])

	// Lifecycle archive and governor history run in lockstep: same
	// trades, same order. Zip them into the reporting rows.
	archive := orch.Lifecycle().Archive()
	governorTrades := orch.Governor().Portfolio().ClosedTrades
	for i, tr := range archive {
		trade := Trade{
			Symbol:     tr.Symbol,
			EntryTime:  tr.EntryTime,
			ExitTime:   tr.ExitTime,
			EntryPrice: tr.EntryPrice,
			ExitPrice:  tr.ExitPrice,
			Size:       tr.Size,
			ReturnPct:  tr.ReturnPct,
			Reason:     tr.Reason,
		}
		if i < len(governorTrades) {
			trade.PnL = governorTrades[i].PnL
		}
		results.Trades = append(results.Trades, trade)
		results.ExitCounts[tr.Reason]++
	}

	results.EndBalance = orch.Governor().Portfolio().Equity
	results.TotalReturn = (results.EndBalance - results.StartBalance) / results.StartBalance
	results.UpdateMetrics()

	return results, nil
}

// settle drains any fill still in flight after the last bar and unwinds
// a position the data ran out on, so the end balance is fully realized
func (e *Engine) settle(orch *orchestrator.Orchestrator, broker *execution.SimulatedBroker, last types.OHLCV) {
	for _, fill := range broker.DrainFills() {
		orch.Lifecycle().OnFill(fill)
	}

	if !orch.Lifecycle().HasPosition() {
		return
	}

	intent := orch.Lifecycle().CloseEndOfData(last.Timestamp)
	if intent == nil {
		return
	}
	if err := broker.SubmitClose(*intent); err != nil {
		return
	}
	for _, fill := range broker.DrainFills() {
		orch.Lifecycle().OnFill(fill)
	}
}
