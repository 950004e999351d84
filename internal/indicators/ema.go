package indicators

import (
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// EMA represents the Exponential Moving Average technical indicator,
// updated incrementally bar by bar.
type EMA struct {
	period      int
	alpha       float64
	lastValue   float64
	seedSum     float64
	seedCount   int
	initialized bool
}

// NewEMA creates a new EMA indicator
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1), // Standard EMA alpha calculation
	}
}

// UpdateBar advances the EMA with the latest close price.
// The first 'period' bars seed the EMA with their simple average; after
// that the recursive form EMA = Close*Alpha + PrevEMA*(1-Alpha) applies.
func (e *EMA) UpdateBar(bar types.OHLCV) {
	if !e.initialized {
		e.seedSum += bar.Close
		e.seedCount++
		if e.seedCount >= e.period {
			e.lastValue = e.seedSum / float64(e.period)
			e.initialized = true
		}
		return
	}

	e.lastValue = (bar.Close * e.alpha) + (e.lastValue * (1 - e.alpha))
}

// Ready returns whether the EMA has completed its seed period
func (e *EMA) Ready() bool {
	return e.initialized
}

// GetLastValue returns the last calculated EMA value
func (e *EMA) GetLastValue() float64 {
	return e.lastValue
}

// GetName returns the indicator name
func (e *EMA) GetName() string {
	return "EMA"
}

// GetRequiredPeriods returns the minimum number of bars needed
func (e *EMA) GetRequiredPeriods() int {
	return e.period
}

// ResetState resets the EMA internal state for new data periods
func (e *EMA) ResetState() {
	e.lastValue = 0.0
	e.seedSum = 0.0
	e.seedCount = 0
	e.initialized = false
}
