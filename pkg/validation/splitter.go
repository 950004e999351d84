package validation

import (
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Minimum fold sizes; folds below these are discarded
const (
	minTrainBars = 50
	minTestBars  = 10
)

// DefaultDataSplitter implements DataSplitter
type DefaultDataSplitter struct{}

// NewDefaultDataSplitter creates a new data splitter
func NewDefaultDataSplitter() *DefaultDataSplitter {
	return &DefaultDataSplitter{}
}

// SplitByRatio splits the series into a leading train slice and a
// trailing test slice. An unusable ratio returns everything as train.
func (s *DefaultDataSplitter) SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV) {
	if ratio <= 0 || ratio >= 1 {
		return data, nil
	}

	n := int(float64(len(data)) * ratio)
	if n < 1 || n >= len(data) {
		return data, nil
	}

	return data[:n], data[n:]
}

// CreateRollingFolds builds rolling walk-forward folds: each fold trains
// on trainDays of bars, tests on the following testDays, then the window
// rolls forward by rollDays.
func (s *DefaultDataSplitter) CreateRollingFolds(data []types.OHLCV, trainDays, testDays, rollDays int) []WalkForwardFold {
	var folds []WalkForwardFold

	trainDur := time.Duration(trainDays) * 24 * time.Hour
	testDur := time.Duration(testDays) * 24 * time.Hour
	rollDur := time.Duration(rollDays) * 24 * time.Hour

	if len(data) < minTrainBars+minTestBars {
		return folds
	}

	start := 0
	for {
		trainEndTs := data[start].Timestamp.Add(trainDur)
		trainEnd := start
		for trainEnd < len(data) && data[trainEnd].Timestamp.Before(trainEndTs) {
			trainEnd++
		}

		testEndTs := trainEndTs.Add(testDur)
		testEnd := trainEnd
		for testEnd < len(data) && data[testEnd].Timestamp.Before(testEndTs) {
			testEnd++
		}

		if trainEnd-start < minTrainBars || testEnd-trainEnd < minTestBars {
			break
		}

		folds = append(folds, WalkForwardFold{
			Train:      data[start:trainEnd],
			Test:       data[trainEnd:testEnd],
			TrainStart: data[start].Timestamp,
			TrainEnd:   data[trainEnd-1].Timestamp,
			TestStart:  data[trainEnd].Timestamp,
			TestEnd:    data[testEnd-1].Timestamp,
		})

		// Roll the window forward
		nextStartTs := data[start].Timestamp.Add(rollDur)
		nextStart := start
		for nextStart < len(data) && data[nextStart].Timestamp.Before(nextStartTs) {
			nextStart++
		}
		if nextStart == start {
			break
		}
		start = nextStart
	}

	return folds
}
