package indicators

import (
	"math"

	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// RSI calculates the Relative Strength Index with Wilder smoothing.
// The first 'period' price changes seed the average gain/loss with their
// simple average; subsequent bars apply the Wilder recursive update.
type RSI struct {
	period    int
	avgGain   float64
	avgLoss   float64
	prevClose float64
	changes   int
	hasPrev   bool
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	return &RSI{
		period: period,
	}
}

// UpdateBar advances the RSI with the latest close price
func (r *RSI) UpdateBar(bar types.OHLCV) {
	if !r.hasPrev {
		r.prevClose = bar.Close
		r.hasPrev = true
		return
	}

	change := bar.Close - r.prevClose
	r.prevClose = bar.Close

	gain := 0.0
	loss := 0.0
	if change > 0 {
		gain = change
	} else {
		loss = math.Abs(change)
	}

	if r.changes < r.period {
		// Seed phase: accumulate a simple average over the first period
		r.avgGain += gain
		r.avgLoss += loss
		r.changes++
		if r.changes == r.period {
			r.avgGain /= float64(r.period)
			r.avgLoss /= float64(r.period)
		}
		return
	}

	// Wilder smoothing: avg = (prevAvg*(period-1) + latest) / period
	r.avgGain = (r.avgGain*float64(r.period-1) + gain) / float64(r.period)
	r.avgLoss = (r.avgLoss*float64(r.period-1) + loss) / float64(r.period)
	r.changes++
}

// Ready returns whether the RSI has consumed a full seed period of changes
func (r *RSI) Ready() bool {
	return r.changes >= r.period
}

// GetLastValue returns the current RSI value.
// When the average loss is zero the RSI is 100 by definition.
func (r *RSI) GetLastValue() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}

	rs := r.avgGain / r.avgLoss
	return 100 - (100 / (1 + rs))
}

// GetName returns the indicator name
func (r *RSI) GetName() string {
	return "RSI"
}

// GetRequiredPeriods returns the minimum number of bars needed
func (r *RSI) GetRequiredPeriods() int {
	return r.period + 1 // period changes need period+1 closes
}

// ResetState resets the RSI internal state for new data periods
func (r *RSI) ResetState() {
	r.avgGain = 0.0
	r.avgLoss = 0.0
	r.prevClose = 0.0
	r.changes = 0
	r.hasPrev = false
}
