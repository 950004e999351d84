package validation

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// Degradation thresholds for the robustness verdict
const (
	robustDegradation   = 0.3
	moderateDegradation = 0.6
)

// WalkForwardValidator replays the engine over train/test windows and
// measures how much performance degrades out of sample
type WalkForwardValidator struct {
	splitter DataSplitter
	runner   Runner
}

// NewWalkForwardValidator creates a validator around a backtest runner
func NewWalkForwardValidator(runner Runner) *WalkForwardValidator {
	return &WalkForwardValidator{
		splitter: NewDefaultDataSplitter(),
		runner:   runner,
	}
}

// Validate runs the configured validation mode. Bars must already be
// validated and chronological.
func (v *WalkForwardValidator) Validate(data []types.OHLCV, wfConfig WalkForwardConfig) (*Summary, error) {
	fmt.Println("\n🔄 ================ WALK-FORWARD VALIDATION ================")

	if wfConfig.Rolling {
		return v.validateRolling(data, wfConfig)
	}
	return v.validateHoldout(data, wfConfig)
}

func (v *WalkForwardValidator) validateRolling(data []types.OHLCV, wfConfig WalkForwardConfig) (*Summary, error) {
	fmt.Printf("Mode: Rolling Walk-Forward\n")
	fmt.Printf("Train: %d days, Test: %d days, Roll: %d days\n",
		wfConfig.TrainDays, wfConfig.TestDays, wfConfig.RollDays)

	folds := v.splitter.CreateRollingFolds(data, wfConfig.TrainDays, wfConfig.TestDays, wfConfig.RollDays)
	if len(folds) == 0 {
		return nil, fmt.Errorf("not enough data for rolling walk-forward validation")
	}
	fmt.Printf("Created %d folds\n\n", len(folds))

	var allResults []FoldResults
	for i, fold := range folds {
		fmt.Printf("📊 Fold %d/%d: Train %s → %s, Test %s → %s\n",
			i+1, len(folds),
			fold.TrainStart.Format("2006-01-02"),
			fold.TrainEnd.Format("2006-01-02"),
			fold.TestStart.Format("2006-01-02"),
			fold.TestEnd.Format("2006-01-02"))

		result, err := v.runFold(fold, i+1)
		if err != nil {
			return nil, err
		}
		allResults = append(allResults, result)

		fmt.Printf("  Train: %.2f%% return, %.2f%% drawdown\n",
			result.TrainResults.TotalReturn*100, result.TrainResults.MaxDrawdown*100)
		fmt.Printf("  Test:  %.2f%% return, %.2f%% drawdown\n\n",
			result.TestResults.TotalReturn*100, result.TestResults.MaxDrawdown*100)
	}

	summary := v.calculateSummary(allResults)
	v.printSummary(summary)
	return summary, nil
}

func (v *WalkForwardValidator) validateHoldout(data []types.OHLCV, wfConfig WalkForwardConfig) (*Summary, error) {
	fmt.Printf("Mode: Simple Holdout\n")
	fmt.Printf("Split: %.0f%% train, %.0f%% test\n", wfConfig.SplitRatio*100, (1-wfConfig.SplitRatio)*100)

	trainData, testData := v.splitter.SplitByRatio(data, wfConfig.SplitRatio)
	if len(testData) < minTestBars {
		return nil, fmt.Errorf("not enough test data for validation")
	}

	fmt.Printf("Train: %d candles (%s → %s)\n",
		len(trainData),
		trainData[0].Timestamp.Format("2006-01-02"),
		trainData[len(trainData)-1].Timestamp.Format("2006-01-02"))
	fmt.Printf("Test:  %d candles (%s → %s)\n\n",
		len(testData),
		testData[0].Timestamp.Format("2006-01-02"),
		testData[len(testData)-1].Timestamp.Format("2006-01-02"))

	fold := WalkForwardFold{
		Train:      trainData,
		Test:       testData,
		TrainStart: trainData[0].Timestamp,
		TrainEnd:   trainData[len(trainData)-1].Timestamp,
		TestStart:  testData[0].Timestamp,
		TestEnd:    testData[len(testData)-1].Timestamp,
	}
	result, err := v.runFold(fold, 1)
	if err != nil {
		return nil, err
	}

	summary := v.calculateSummary([]FoldResults{result})
	v.printSummary(summary)
	return summary, nil
}

func (v *WalkForwardValidator) runFold(fold WalkForwardFold, n int) (FoldResults, error) {
	trainResults, err := v.runner(fold.Train)
	if err != nil {
		return FoldResults{}, fmt.Errorf("train run failed for fold %d: %w", n, err)
	}
	testResults, err := v.runner(fold.Test)
	if err != nil {
		return FoldResults{}, fmt.Errorf("test run failed for fold %d: %w", n, err)
	}
	return FoldResults{
		TrainResults: trainResults,
		TestResults:  testResults,
		Fold:         n,
	}, nil
}

// calculateSummary aggregates the folds and grades the out-of-sample
// degradation
func (v *WalkForwardValidator) calculateSummary(results []FoldResults) *Summary {
	summary := &Summary{Results: results}
	if len(results) == 0 {
		return summary
	}

	for _, r := range results {
		summary.AverageTrainReturn += r.TrainResults.TotalReturn
		summary.AverageTestReturn += r.TestResults.TotalReturn
		summary.AverageTrainDrawdown += r.TrainResults.MaxDrawdown
		summary.AverageTestDrawdown += r.TestResults.MaxDrawdown
	}
	n := float64(len(results))
	summary.AverageTrainReturn /= n
	summary.AverageTestReturn /= n
	summary.AverageTrainDrawdown /= n
	summary.AverageTestDrawdown /= n

	// Degradation: how much of the in-sample return survives out of
	// sample. Nothing to degrade when the train return is ~zero.
	if math.Abs(summary.AverageTrainReturn) > 1e-9 {
		summary.ReturnDegradation = (summary.AverageTrainReturn - summary.AverageTestReturn) /
			math.Abs(summary.AverageTrainReturn)
	}

	switch {
	case summary.ReturnDegradation <= robustDegradation:
		summary.IsRobust = true
		summary.OverfittingRisk = "LOW"
	case summary.ReturnDegradation <= moderateDegradation:
		summary.OverfittingRisk = "MODERATE"
	default:
		summary.OverfittingRisk = "HIGH"
	}

	return summary
}

func (v *WalkForwardValidator) printSummary(summary *Summary) {
	fmt.Println("📊 ================ WALK-FORWARD SUMMARY ================")
	fmt.Printf("Folds:              %d\n", len(summary.Results))
	fmt.Printf("Avg Train Return:   %.2f%%\n", summary.AverageTrainReturn*100)
	fmt.Printf("Avg Test Return:    %.2f%%\n", summary.AverageTestReturn*100)
	fmt.Printf("Avg Train Drawdown: %.2f%%\n", summary.AverageTrainDrawdown*100)
	fmt.Printf("Avg Test Drawdown:  %.2f%%\n", summary.AverageTestDrawdown*100)
	fmt.Printf("Degradation:        %.1f%%\n", summary.ReturnDegradation*100)
	fmt.Printf("Overfitting Risk:   %s\n\n", summary.OverfittingRisk)
}
