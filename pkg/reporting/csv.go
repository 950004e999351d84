package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
)

// DefaultFileReporter writes backtest results to CSV, XLSX and JSON files
type DefaultFileReporter struct{}

// NewDefaultFileReporter creates a new file reporter
func NewDefaultFileReporter() *DefaultFileReporter {
	return &DefaultFileReporter{}
}

// WriteTrades writes the closed trades to the given path. An .xlsx
// extension selects the Excel writer, anything else gets CSV.
func (r *DefaultFileReporter) WriteTrades(results *backtest.Results, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return r.WriteTradesXLSX(results, path)
	}
	return r.writeTradesCSV(results, path)
}

func (r *DefaultFileReporter) writeTradesCSV(results *backtest.Results, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"Trade",
		"Entry_Time",
		"Exit_Time",
		"Entry_Price",
		"Exit_Price",
		"Size_Fraction",
		"Return_%",
		"PnL_$",
		"Exit_Reason",
		"Hold_Minutes",
	}); err != nil {
		return err
	}

	for i, trade := range results.Trades {
		row := []string{
			fmt.Sprintf("%d", i+1),
			trade.EntryTime.Format(time.RFC3339),
			trade.ExitTime.Format(time.RFC3339),
			fmt.Sprintf("%.4f", trade.EntryPrice),
			fmt.Sprintf("%.4f", trade.ExitPrice),
			fmt.Sprintf("%.4f", trade.Size),
			fmt.Sprintf("%.4f", trade.ReturnPct*100),
			fmt.Sprintf("%.2f", trade.PnL),
			trade.Reason.String(),
			fmt.Sprintf("%.0f", trade.ExitTime.Sub(trade.EntryTime).Minutes()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// WriteEquityCurveCSV writes the per-bar realized equity series
func (r *DefaultFileReporter) WriteEquityCurveCSV(results *backtest.Results, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Timestamp", "Equity"}); err != nil {
		return err
	}
	for _, point := range results.EquityCurve {
		if err := w.Write([]string{
			point.Timestamp.Format(time.RFC3339),
			fmt.Sprintf("%.2f", point.Equity),
		}); err != nil {
			return err
		}
	}

	return nil
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
