// Package validation provides out-of-sample evaluation of the decision
// engine: the same configuration is replayed over separate train and
// test windows and the performance degradation between them is measured.
package validation

import (
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Runner executes one backtest over a bar window
type Runner func(bars []types.OHLCV) (*backtest.Results, error)

// DataSplitter splits a bar series into train/test sets
type DataSplitter interface {
	SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV)
	CreateRollingFolds(data []types.OHLCV, trainDays, testDays, rollDays int) []WalkForwardFold
}

// WalkForwardConfig selects the validation mode and window sizes
type WalkForwardConfig struct {
	Enable     bool
	Rolling    bool
	SplitRatio float64
	TrainDays  int
	TestDays   int
	RollDays   int
}

// WalkForwardFold is a single train/test window pair
type WalkForwardFold struct {
	Train      []types.OHLCV
	Test       []types.OHLCV
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// FoldResults holds the paired results for one fold
type FoldResults struct {
	TrainResults *backtest.Results
	TestResults  *backtest.Results
	Fold         int
}

// Summary aggregates all folds
type Summary struct {
	Results              []FoldResults
	AverageTrainReturn   float64
	AverageTestReturn    float64
	AverageTrainDrawdown float64
	AverageTestDrawdown  float64
	ReturnDegradation    float64
	IsRobust             bool
	OverfittingRisk      string
}
