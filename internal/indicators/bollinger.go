package indicators

import (
	"math"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// BollingerBands represents the Bollinger Bands indicator over a rolling
// window of closes (SMA middle band, +/- stdDevMultiple standard deviations).
type BollingerBands struct {
	period         int
	stdDevMultiple float64
	window         []float64
}

// NewBollingerBands creates a new BollingerBands instance with the given period and standard deviation multiplier
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:         period,
		stdDevMultiple: stdDev,
		window:         make([]float64, 0, period),
	}
}

// UpdateBar advances the rolling close window with the latest bar
func (bb *BollingerBands) UpdateBar(bar types.OHLCV) {
	bb.window = append(bb.window, bar.Close)
	if len(bb.window) > bb.period {
		bb.window = bb.window[1:]
	}
}

// Ready returns whether a full window has been accumulated
func (bb *BollingerBands) Ready() bool {
	return len(bb.window) >= bb.period
}

// Bands returns the upper, middle, and lower Bollinger Bands
func (bb *BollingerBands) Bands() (upper, middle, lower float64) {
	if !bb.Ready() {
		return 0, 0, 0
	}

	middle = bb.sma(bb.window)
	stdDev := bb.standardDeviation(bb.window, middle)

	upper = middle + (bb.stdDevMultiple * stdDev)
	lower = middle - (bb.stdDevMultiple * stdDev)
	return upper, middle, lower
}

// GetName returns the indicator name
func (bb *BollingerBands) GetName() string {
	return "BollingerBands"
}

// GetRequiredPeriods returns the minimum number of bars needed
func (bb *BollingerBands) GetRequiredPeriods() int {
	return bb.period
}

// ResetState resets the rolling window for new data periods
func (bb *BollingerBands) ResetState() {
	bb.window = bb.window[:0]
}

// sma computes the Simple Moving Average of the given values
func (bb *BollingerBands) sma(values []float64) float64 {
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}

// standardDeviation computes the population standard deviation around mean
func (bb *BollingerBands) standardDeviation(values []float64, mean float64) float64 {
	variance := 0.0
	for _, value := range values {
		variance += math.Pow(value-mean, 2)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
