package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// hourlyBars builds n bars spaced one hour apart starting at a fixed time.
func hourlyBars(n int) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, n)
	for i := range bars {
		bars[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    10,
		}
	}
	return bars
}

func TestSplitByRatio(t *testing.T) {
	s := NewDefaultDataSplitter()
	data := hourlyBars(100)

	train, test := s.SplitByRatio(data, 0.7)
	assert.Len(t, train, 70)
	assert.Len(t, test, 30)
	assert.Equal(t, data[69].Timestamp, train[69].Timestamp)
	assert.Equal(t, data[70].Timestamp, test[0].Timestamp)
}

func TestSplitByRatioUnusable(t *testing.T) {
	s := NewDefaultDataSplitter()
	data := hourlyBars(100)

	for _, ratio := range []float64{0, 1, -0.5, 1.5} {
		train, test := s.SplitByRatio(data, ratio)
		assert.Len(t, train, 100, "ratio %v", ratio)
		assert.Nil(t, test, "ratio %v", ratio)
	}
}

func TestCreateRollingFolds(t *testing.T) {
	s := NewDefaultDataSplitter()
	// 20 days of hourly bars
	data := hourlyBars(20 * 24)

	folds := s.CreateRollingFolds(data, 5, 2, 2)
	require.NotEmpty(t, folds)

	for i, fold := range folds {
		assert.Len(t, fold.Train, 5*24, "fold %d", i)
		assert.GreaterOrEqual(t, len(fold.Test), minTestBars, "fold %d", i)
		assert.True(t, fold.TrainEnd.Before(fold.TestStart), "fold %d train must precede test", i)
		if i > 0 {
			rolled := fold.TrainStart.Sub(folds[i-1].TrainStart)
			assert.Equal(t, 2*24*time.Hour, rolled, "fold %d roll step", i)
		}
	}

	// Starts at days 0,2,...,14; the last fold's test window is cut
	// short by the end of the series but still clears the minimum.
	assert.Len(t, folds, 8)
	assert.Len(t, folds[0].Test, 2*24)
	assert.Len(t, folds[7].Test, 24)
}

func TestCreateRollingFoldsTooLittleData(t *testing.T) {
	s := NewDefaultDataSplitter()
	folds := s.CreateRollingFolds(hourlyBars(30), 5, 2, 2)
	assert.Empty(t, folds)
}
