package reporting

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
	"github.com/ducminhle1904/btc-intraday-bot/internal/config"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// DefaultConsoleReporter renders backtest results as console tables
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// OutputResults prints the backtest summary to the console
func (r *DefaultConsoleReporter) OutputResults(results *backtest.Results) {
	r.OutputResultsWithContext(results, "", "")
}

// OutputResultsWithContext prints the backtest summary with the symbol
// and interval in the title
func (r *DefaultConsoleReporter) OutputResultsWithContext(results *backtest.Results, symbol, interval string) {
	title := "BACKTEST RESULTS"
	if symbol != "" {
		title = fmt.Sprintf("BACKTEST RESULTS — %s %s", symbol, interval)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"💰 Initial Balance", fmt.Sprintf("$%.2f", results.StartBalance)},
		{"💰 Final Balance", fmt.Sprintf("$%.2f", results.EndBalance)},
		{"📈 Total Return", fmt.Sprintf("%.2f%%", results.TotalReturn*100)},
		{"📈 Annualized Return", fmt.Sprintf("%.2f%%", results.AnnualizedReturn*100)},
		{"📉 Max Drawdown", fmt.Sprintf("%.2f%%", results.MaxDrawdown*100)},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📊 Sharpe Ratio", fmt.Sprintf("%.2f", results.SharpeRatio)},
		{"📊 Sortino Ratio", fmt.Sprintf("%.2f", results.SortinoRatio)},
		{"💹 Profit Factor", formatProfitFactor(results.ProfitFactor)},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🔄 Total Trades", fmt.Sprintf("%d", results.TotalTrades)},
		{"✅ Winning Trades", fmt.Sprintf("%d (%.1f%%)", results.WinningTrades, results.WinRate)},
		{"❌ Losing Trades", fmt.Sprintf("%d", results.LosingTrades)},
		{"⏱️ Avg Hold Time", formatDuration(results.AverageHoldTime())},
		{"🚨 Circuit Breaker Halts", fmt.Sprintf("%d", results.HaltCount)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 24, WidthMax: 24, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 30, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()

	r.printExitBreakdown(results)
}

// printExitBreakdown prints the per-reason exit counts
func (r *DefaultConsoleReporter) printExitBreakdown(results *backtest.Results) {
	if len(results.ExitCounts) == 0 {
		return
	}

	reasons := make([]types.ExitReason, 0, len(results.ExitCounts))
	for reason := range results.ExitCounts {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("EXIT BREAKDOWN")
	t.SetStyle(table.StyleRounded)

	for _, reason := range reasons {
		count := results.ExitCounts[reason]
		share := float64(count) / float64(results.TotalTrades) * 100
		t.AppendRow(table.Row{reason.String(), fmt.Sprintf("%d (%.1f%%)", count, share)})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 24, WidthMax: 24, Align: text.AlignLeft},
		{Number: 2, WidthMin: 14, WidthMax: 20, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintConfig prints the engine configuration before a run
func (r *DefaultConsoleReporter) PrintConfig(cfg *config.Config) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("ENGINE CONFIGURATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Symbol", cfg.Symbol},
		{"⏰ Interval", cfg.Interval},
		{"💰 Initial Balance", fmt.Sprintf("$%.2f", cfg.InitialBalance)},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📊 EMA Period", fmt.Sprintf("%d", cfg.Indicators.EMAPeriod)},
		{"📊 RSI Period", fmt.Sprintf("%d (oversold < %.0f)", cfg.Indicators.RSIPeriod, cfg.Indicators.RSIOversold)},
		{"📊 OBV Enabled", fmt.Sprintf("%t", cfg.Indicators.UseOBV)},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🛑 Stop Loss", fmt.Sprintf("%.2f%%", cfg.Exit.StopLossPercent*100)},
		{"🎯 Take Profit", fmt.Sprintf("%.2f%%", cfg.Exit.TakeProfitPercent*100)},
		{"🪜 Trailing Stop", formatTrailing(cfg.Exit)},
		{"⏱️ Max Hold", fmt.Sprintf("%d min", cfg.Exit.MaxHoldMinutes)},
		{"⚖️ Sizing Method", cfg.Sizing.Method},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🚨 Daily Loss Limit", fmt.Sprintf("%.2f%%", cfg.Risk.DailyLossLimitPercent*100)},
		{"🚨 Max Loss Streak", fmt.Sprintf("%d", cfg.Risk.MaxConsecutiveLosses)},
		{"🚨 Max Drawdown", fmt.Sprintf("%.2f%%", cfg.Risk.MaxDrawdownPercent*100)},
		{"🚨 Force Liquidation", fmt.Sprintf("%.2f%%", cfg.Risk.ForceLiquidationDrawdown*100)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 30, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

func formatTrailing(exit config.ExitConfig) string {
	if !exit.TrailingEnabled {
		return "disabled"
	}
	return fmt.Sprintf("%.2f%%", exit.TrailPercent*100)
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", pf)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Minute).String()
}
