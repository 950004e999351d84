package reporting

import (
	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
)

// Package reporting renders backtest results to the console and to files.

// ConsoleReporter defines the console output surface
type ConsoleReporter interface {
	OutputResults(results *backtest.Results)
	OutputResultsWithContext(results *backtest.Results, symbol, interval string)
}

// FileReporter defines the file output surface. WriteTrades dispatches on
// the file extension.
type FileReporter interface {
	WriteTrades(results *backtest.Results, path string) error
	WriteResultsJSON(results *backtest.Results, path string) error
}

// ExcelStyles holds the style handles used by the Excel writer
type ExcelStyles struct {
	HeaderStyle       int
	CurrencyStyle     int
	PercentStyle      int
	BaseStyle         int
	RedPercentStyle   int
	GreenPercentStyle int
	SummaryStyle      int
}
