package indicators

import (
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// OBV represents the On-Balance Volume technical indicator.
// OBV is a cumulative volume-flow indicator:
//   - If Close[i] > Close[i-1], OBV[i] = OBV[i-1] + Volume[i]
//   - If Close[i] = Close[i-1], OBV[i] = OBV[i-1]
//   - If Close[i] < Close[i-1], OBV[i] = OBV[i-1] - Volume[i]
type OBV struct {
	lastValue   float64
	prevValue   float64
	lastClose   float64
	barsSeen    int
	initialized bool
}

// NewOBV creates a new OBV indicator
func NewOBV() *OBV {
	return &OBV{}
}

// UpdateBar advances the OBV with the latest bar
func (o *OBV) UpdateBar(bar types.OHLCV) {
	o.barsSeen++

	if !o.initialized {
		o.lastClose = bar.Close
		o.initialized = true
		return
	}

	o.prevValue = o.lastValue
	if bar.Close > o.lastClose {
		o.lastValue += bar.Volume
	} else if bar.Close < o.lastClose {
		o.lastValue -= bar.Volume
	}
	// If price unchanged, OBV remains the same

	o.lastClose = bar.Close
}

// Ready returns whether the OBV has a previous value to compare against
func (o *OBV) Ready() bool {
	return o.barsSeen >= o.GetRequiredPeriods()
}

// GetLastValue returns the last calculated OBV value
func (o *OBV) GetLastValue() float64 {
	return o.lastValue
}

// GetPrevValue returns the OBV value of the previous bar
func (o *OBV) GetPrevValue() float64 {
	return o.prevValue
}

// Rising returns true when this bar's OBV strictly exceeds the previous
// bar's OBV. Equality is not rising; no epsilon is applied.
func (o *OBV) Rising() bool {
	return o.lastValue > o.prevValue
}

// GetName returns the indicator name
func (o *OBV) GetName() string {
	return "OBV"
}

// GetRequiredPeriods returns the minimum number of bars needed.
// Two bars establish the cumulative value, a third gives Rising a
// bar-over-bar comparison.
func (o *OBV) GetRequiredPeriods() int {
	return 3
}

// ResetState resets the OBV internal state for new data periods
func (o *OBV) ResetState() {
	o.lastValue = 0.0
	o.prevValue = 0.0
	o.lastClose = 0.0
	o.barsSeen = 0
	o.initialized = false
}
