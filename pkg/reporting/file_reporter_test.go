package reporting

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

func sampleResults() *backtest.Results {
	entry := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	results := &backtest.Results{
		StartBalance: 1000,
		EndBalance:   1015,
		ExitCounts:   make(map[types.ExitReason]int),
		Trades: []backtest.Trade{
			{
				Symbol:     "BTCUSD",
				EntryTime:  entry,
				ExitTime:   entry.Add(25 * time.Minute),
				EntryPrice: 100,
				ExitPrice:  101,
				Size:       0.5,
				ReturnPct:  0.01,
				PnL:        5,
				Reason:     types.ExitTakeProfit,
			},
			{
				Symbol:     "BTCUSD",
				EntryTime:  entry.Add(time.Hour),
				ExitTime:   entry.Add(90 * time.Minute),
				EntryPrice: 101,
				ExitPrice:  100.5,
				Size:       0.5,
				ReturnPct:  -0.00495,
				PnL:        -2.5,
				Reason:     types.ExitStopLoss,
			},
		},
		EquityCurve: []backtest.EquityPoint{
			{Timestamp: entry, Equity: 1000},
			{Timestamp: entry.Add(25 * time.Minute), Equity: 1005},
		},
	}
	results.TotalReturn = (results.EndBalance - results.StartBalance) / results.StartBalance
	for _, trade := range results.Trades {
		results.ExitCounts[trade.Reason]++
	}
	results.UpdateMetrics()
	return results
}

func TestWriteTradesCSV(t *testing.T) {
	reporter := NewDefaultFileReporter()
	path := filepath.Join(t.TempDir(), "out", "trades.csv")

	require.NoError(t, reporter.WriteTrades(sampleResults(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 trades

	assert.Equal(t, "Exit_Reason", rows[0][8])
	assert.Equal(t, "TAKE_PROFIT", rows[1][8])
	assert.Equal(t, "STOP_LOSS", rows[2][8])
	assert.Equal(t, "25", rows[1][9])
}

func TestWriteTradesXLSX(t *testing.T) {
	reporter := NewDefaultFileReporter()
	path := filepath.Join(t.TempDir(), "trades.xlsx")

	require.NoError(t, reporter.WriteTrades(sampleResults(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteResultsJSON(t *testing.T) {
	reporter := NewDefaultFileReporter()
	path := filepath.Join(t.TempDir(), "results.json")

	require.NoError(t, reporter.WriteResultsJSON(sampleResults(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 1000.0, decoded["start_balance"])
	assert.Equal(t, 2.0, decoded["total_trades"].(float64))

	exits := decoded["exit_counts"].(map[string]interface{})
	assert.Equal(t, 1.0, exits["TAKE_PROFIT"])
}

func TestWriteEquityCurveCSV(t *testing.T) {
	reporter := NewDefaultFileReporter()
	path := filepath.Join(t.TempDir(), "equity.csv")

	require.NoError(t, reporter.WriteEquityCurveCSV(sampleResults(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Timestamp", "Equity"}, rows[0])
	assert.Equal(t, "1005.00", rows[2][1])
}