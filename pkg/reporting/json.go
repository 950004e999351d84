package reporting

import (
	"encoding/json"
	"math"
	"os"

	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
)

// resultsJSON is the serialized shape of a backtest run. Trades and the
// equity curve are omitted; they go to their own files.
type resultsJSON struct {
	StartBalance     float64        `json:"start_balance"`
	EndBalance       float64        `json:"end_balance"`
	TotalReturn      float64        `json:"total_return"`
	AnnualizedReturn float64        `json:"annualized_return"`
	MaxDrawdown      float64        `json:"max_drawdown"`
	SharpeRatio      float64        `json:"sharpe_ratio"`
	SortinoRatio     float64        `json:"sortino_ratio"`
	ProfitFactor     float64        `json:"profit_factor"`
	WinRate          float64        `json:"win_rate"`
	TotalTrades      int            `json:"total_trades"`
	WinningTrades    int            `json:"winning_trades"`
	LosingTrades     int            `json:"losing_trades"`
	HaltCount        int            `json:"halt_count"`
	AvgHoldMinutes   float64        `json:"avg_hold_minutes"`
	ExitCounts       map[string]int `json:"exit_counts"`
}

// WriteResultsJSON writes the summary metrics as indented JSON
func (r *DefaultFileReporter) WriteResultsJSON(results *backtest.Results, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	exitCounts := make(map[string]int, len(results.ExitCounts))
	for reason, count := range results.ExitCounts {
		exitCounts[reason.String()] = count
	}

	pf := results.ProfitFactor
	if math.IsNaN(pf) || math.IsInf(pf, 0) { // does not serialize
		pf = 0
	}

	out := resultsJSON{
		StartBalance:     results.StartBalance,
		EndBalance:       results.EndBalance,
		TotalReturn:      results.TotalReturn,
		AnnualizedReturn: results.AnnualizedReturn,
		MaxDrawdown:      results.MaxDrawdown,
		SharpeRatio:      results.SharpeRatio,
		SortinoRatio:     results.SortinoRatio,
		ProfitFactor:     pf,
		WinRate:          results.WinRate,
		TotalTrades:      results.TotalTrades,
		WinningTrades:    results.WinningTrades,
		LosingTrades:     results.LosingTrades,
		HaltCount:        results.HaltCount,
		AvgHoldMinutes:   results.AverageHoldTime().Minutes(),
		ExitCounts:       exitCounts,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
