package indicators

import (
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

// StreamingIndicator is an indicator fed one bar at a time. State advances
// exactly once per bar, in bar-arrival order, and is never rolled back.
type StreamingIndicator interface {
	// UpdateBar advances the indicator state with one new bar
	UpdateBar(bar types.OHLCV)

	// Ready returns true once the indicator has consumed its warmup period
	Ready() bool

	// GetName returns the indicator name
	GetName() string

	// GetRequiredPeriods returns the number of bars needed before Ready
	GetRequiredPeriods() int

	// ResetState resets the indicator for a new data period
	ResetState()
}
