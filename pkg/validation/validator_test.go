package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// stubRunner returns canned results keyed by the first bar of each window.
func stubRunner(results map[int64]*backtest.Results) Runner {
	return func(bars []types.OHLCV) (*backtest.Results, error) {
		r, ok := results[bars[0].Timestamp.Unix()]
		if !ok {
			return nil, fmt.Errorf("no stub result for window starting %s", bars[0].Timestamp)
		}
		return r, nil
	}
}

func TestValidateHoldout(t *testing.T) {
	data := hourlyBars(100)
	runner := stubRunner(map[int64]*backtest.Results{
		data[0].Timestamp.Unix():  {TotalReturn: 0.10, MaxDrawdown: 0.05},
		data[70].Timestamp.Unix(): {TotalReturn: 0.08, MaxDrawdown: 0.06},
	})

	v := NewWalkForwardValidator(runner)
	summary, err := v.Validate(data, WalkForwardConfig{SplitRatio: 0.7})
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.InDelta(t, 0.10, summary.AverageTrainReturn, 1e-12)
	assert.InDelta(t, 0.08, summary.AverageTestReturn, 1e-12)
	assert.InDelta(t, 0.2, summary.ReturnDegradation, 1e-12)
	assert.True(t, summary.IsRobust)
	assert.Equal(t, "LOW", summary.OverfittingRisk)
}

func TestValidateHoldoutTooLittleTestData(t *testing.T) {
	v := NewWalkForwardValidator(stubRunner(nil))
	_, err := v.Validate(hourlyBars(20), WalkForwardConfig{SplitRatio: 0.7})
	assert.Error(t, err)
}

func TestValidateRolling(t *testing.T) {
	data := hourlyBars(20 * 24)

	// Train performance holds up out of sample in every fold.
	results := make(map[int64]*backtest.Results)
	folds := NewDefaultDataSplitter().CreateRollingFolds(data, 5, 2, 2)
	require.NotEmpty(t, folds)
	for _, fold := range folds {
		results[fold.Train[0].Timestamp.Unix()] = &backtest.Results{TotalReturn: 0.04, MaxDrawdown: 0.03}
		results[fold.Test[0].Timestamp.Unix()] = &backtest.Results{TotalReturn: 0.03, MaxDrawdown: 0.04}
	}

	v := NewWalkForwardValidator(stubRunner(results))
	summary, err := v.Validate(data, WalkForwardConfig{
		Rolling:   true,
		TrainDays: 5,
		TestDays:  2,
		RollDays:  2,
	})
	require.NoError(t, err)

	assert.Len(t, summary.Results, len(folds))
	assert.InDelta(t, 0.04, summary.AverageTrainReturn, 1e-12)
	assert.InDelta(t, 0.03, summary.AverageTestReturn, 1e-12)
	assert.InDelta(t, 0.25, summary.ReturnDegradation, 1e-12)
	assert.True(t, summary.IsRobust)
}

func TestValidateRollingTooLittleData(t *testing.T) {
	v := NewWalkForwardValidator(stubRunner(nil))
	_, err := v.Validate(hourlyBars(30), WalkForwardConfig{
		Rolling:   true,
		TrainDays: 5,
		TestDays:  2,
		RollDays:  2,
	})
	assert.Error(t, err)
}

func TestCalculateSummaryRiskGrades(t *testing.T) {
	v := NewWalkForwardValidator(stubRunner(nil))

	cases := []struct {
		name     string
		train    float64
		test     float64
		risk     string
		isRobust bool
	}{
		{"test beats train", 0.05, 0.07, "LOW", true},
		{"moderate decay", 0.10, 0.05, "MODERATE", false},
		{"collapses out of sample", 0.10, -0.02, "HIGH", false},
		{"flat train", 0.0, 0.0, "LOW", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := v.calculateSummary([]FoldResults{{
				TrainResults: &backtest.Results{TotalReturn: tc.train},
				TestResults:  &backtest.Results{TotalReturn: tc.test},
				Fold:         1,
			}})
			assert.Equal(t, tc.risk, summary.OverfittingRisk)
			assert.Equal(t, tc.isRobust, summary.IsRobust)
		})
	}
}
